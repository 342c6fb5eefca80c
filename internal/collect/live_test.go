package collect

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leadscope/prospect-cli/internal/model"
	"github.com/leadscope/prospect-cli/pkg/annuaire"
	"github.com/leadscope/prospect-cli/pkg/ban"
	"github.com/leadscope/prospect-cli/pkg/overpass"
)

type fakeOverpass struct {
	pois []overpass.POI
	box  overpass.BBox
}

func (f *fakeOverpass) Search(_ context.Context, box overpass.BBox) ([]overpass.POI, error) {
	f.box = box
	return f.pois, nil
}

type fakeRegistry struct {
	companies []annuaire.Company
	radiusKm  float64
}

func (f *fakeRegistry) Near(_ context.Context, _, _, radiusKm float64) ([]annuaire.Company, error) {
	f.radiusKm = radiusKm
	return f.companies, nil
}

func (f *fakeRegistry) Search(context.Context, string) ([]annuaire.Company, error) {
	return nil, nil
}

type fakeGeocoder struct {
	results map[string]*ban.Result
	queries []string
}

func (f *fakeGeocoder) Search(_ context.Context, query string, _ *ban.Point) (*ban.Result, error) {
	f.queries = append(f.queries, query)
	if r, ok := f.results[query]; ok {
		return r, nil
	}
	return &ban.Result{Matched: false}, nil
}

func (f *fakeGeocoder) Reverse(context.Context, float64, float64) (*ban.Result, error) {
	return &ban.Result{Matched: false}, nil
}

func TestLivePOI_UnionsProviders(t *testing.T) {
	osm := &fakeOverpass{pois: []overpass.POI{
		{Name: "Boulangerie Martin", Category: "bakery", Phone: "0142000000",
			HouseNumber: "12", Street: "Rue de la Paix", Latitude: 48.8532, Longitude: 2.3491},
	}}
	registry := &fakeRegistry{companies: []annuaire.Company{
		{Name: "BOULANGERIE MARTIN", SIREN: "123456789", SIRET: "12345678900012",
			IndustryCode: "10.71C", Officers: []string{"Paul Martin"},
			Latitude: 48.8532, Longitude: 2.3491},
		{Name: "SCI SANS ADRESSE", SIREN: "111222333"},
	}}

	center := model.Coordinates{Lat: 48.8566, Lng: 2.3522}
	source := LivePOI(osm, registry, center, 1500)

	records, err := source(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "Boulangerie Martin", records[0].Name)
	assert.Equal(t, []string{"0142000000"}, records[0].Phones)
	assert.Equal(t, "12 Rue de la Paix", records[0].Address)
	require.NotNil(t, records[0].Coordinates)

	assert.Equal(t, "123456789", records[1].CompanyID)
	assert.Equal(t, "12345678900012", records[1].EstablishmentID)
	require.NotNil(t, records[1].Coordinates)

	// A registry entry with no coordinates keeps a nil pointer, never (0,0).
	assert.Nil(t, records[2].Coordinates)

	// Radius passes through in kilometers and the bbox encloses the center.
	assert.InDelta(t, 1.5, registry.radiusKm, 0.001)
	assert.Less(t, osm.box.South, center.Lat)
	assert.Greater(t, osm.box.North, center.Lat)
}

func TestGeocodeDirectory_FillsMissingOnly(t *testing.T) {
	existing := &model.Coordinates{Lat: 48.85, Lng: 2.35}
	records := []model.DirectoryRecord{
		{StreetNumber: "12", StreetName: "rue de la Paix", PostalCode: "75002", City: "Paris"},
		{StreetNumber: "3", StreetName: "avenue Foch", Geocode: existing},
		{StreetNumber: "7"}, // no street name, nothing to query
		{StreetNumber: "99", StreetName: "rue Imaginaire"},
	}

	geocoder := &fakeGeocoder{results: map[string]*ban.Result{
		"12 rue de la Paix 75002 Paris": {Latitude: 48.8687, Longitude: 2.3312, Matched: true},
	}}

	center := model.Coordinates{Lat: 48.8566, Lng: 2.3522}
	require.NoError(t, GeocodeDirectory(context.Background(), geocoder, records, center))

	require.NotNil(t, records[0].Geocode)
	assert.InDelta(t, 48.8687, records[0].Geocode.Lat, 0.0001)

	// Already-geocoded records are untouched, not re-queried.
	assert.Same(t, existing, records[1].Geocode)

	// Unresolvable records stay nil.
	assert.Nil(t, records[2].Geocode)
	assert.Nil(t, records[3].Geocode)

	assert.Equal(t, []string{"12 rue de la Paix 75002 Paris", "99 rue Imaginaire"}, geocoder.queries)
}
