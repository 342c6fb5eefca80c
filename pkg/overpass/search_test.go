package overpass

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_ParsesNodesAndWays(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		query := r.Form.Get("data")
		assert.Contains(t, query, `node["name"]["shop"](48.840000,2.330000,48.870000,2.370000)`)
		assert.True(t, strings.Contains(query, "out center"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"elements": [
				{
					"id": 101,
					"lat": 48.8532,
					"lon": 2.3491,
					"tags": {
						"name": "Boulangerie Martin",
						"shop": "bakery",
						"phone": "+33 1 42 00 00 00",
						"addr:housenumber": "12",
						"addr:street": "Rue de la Paix",
						"addr:postcode": "75002",
						"addr:city": "Paris"
					}
				},
				{
					"id": 202,
					"center": {"lat": 48.8541, "lon": 2.3502},
					"tags": {
						"name": "Garage Dupont",
						"amenity": "car_repair",
						"contact:website": "https://garage-dupont.example"
					}
				},
				{
					"id": 303,
					"lat": 48.8550,
					"lon": 2.3510,
					"tags": {"amenity": "bench"}
				}
			]
		}`)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithRateLimit(100))

	pois, err := c.Search(context.Background(), BBox{South: 48.84, West: 2.33, North: 48.87, East: 2.37})
	require.NoError(t, err)
	require.Len(t, pois, 2) // the unnamed bench is dropped

	assert.Equal(t, "Boulangerie Martin", pois[0].Name)
	assert.Equal(t, "bakery", pois[0].Category)
	assert.Equal(t, "+33 1 42 00 00 00", pois[0].Phone)
	assert.Equal(t, "12", pois[0].HouseNumber)
	assert.InDelta(t, 48.8532, pois[0].Latitude, 0.0001)

	// The way uses its centroid and contact:-prefixed tags.
	assert.Equal(t, "Garage Dupont", pois[1].Name)
	assert.Equal(t, "car_repair", pois[1].Category)
	assert.Equal(t, "https://garage-dupont.example", pois[1].Website)
	assert.InDelta(t, 48.8541, pois[1].Latitude, 0.0001)
	assert.InDelta(t, 2.3502, pois[1].Longitude, 0.0001)
}

func TestSearch_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithRateLimit(100))

	_, err := c.Search(context.Background(), BBox{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}
