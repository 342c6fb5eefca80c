package annuaire

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNear_PaginatesAndParses(t *testing.T) {
	pages := map[string]string{
		"1": `{
			"total_pages": 2,
			"results": [{
				"nom_complet": "BOULANGERIE MARTIN",
				"siren": "123456789",
				"dirigeants": [{"nom": "Martin", "prenoms": "Paul"}],
				"siege": {
					"siret": "12345678900012",
					"activite_principale": "10.71C",
					"latitude": "48.8532",
					"longitude": "2.3491",
					"adresse": "12 RUE DE LA PAIX 75002 PARIS"
				}
			}]
		}`,
		"2": `{
			"total_pages": 2,
			"results": [{
				"nom_complet": "GARAGE DUPONT",
				"siren": "987654321",
				"siege": {
					"siret": "98765432100011",
					"activite_principale": "45.20A",
					"latitude": "",
					"longitude": ""
				}
			}]
		}`,
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/near_point", r.URL.Path)
		assert.Equal(t, "48.8566", r.URL.Query().Get("lat"))
		assert.Equal(t, "1.5", r.URL.Query().Get("radius"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, pages[r.URL.Query().Get("page")])
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithRateLimit(100))

	companies, err := c.Near(context.Background(), 48.8566, 2.3522, 1.5)
	require.NoError(t, err)
	require.Len(t, companies, 2)

	assert.Equal(t, "BOULANGERIE MARTIN", companies[0].Name)
	assert.Equal(t, "123456789", companies[0].SIREN)
	assert.Equal(t, "12345678900012", companies[0].SIRET)
	assert.Equal(t, "10.71C", companies[0].IndustryCode)
	assert.Equal(t, []string{"Paul Martin"}, companies[0].Officers)
	assert.InDelta(t, 48.8532, companies[0].Latitude, 0.0001)

	// Missing coordinates stay zero.
	assert.Equal(t, "GARAGE DUPONT", companies[1].Name)
	assert.Zero(t, companies[1].Latitude)
	assert.Zero(t, companies[1].Longitude)
}

func TestSearch_ByName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "boulangerie martin", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"total_pages": 1, "results": []}`)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithRateLimit(100))

	companies, err := c.Search(context.Background(), "boulangerie martin")
	require.NoError(t, err)
	assert.Empty(t, companies)
}

func TestNear_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithRateLimit(100))

	_, err := c.Near(context.Background(), 48.8566, 2.3522, 1.5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}
