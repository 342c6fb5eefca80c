package export

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/leadscope/prospect-cli/internal/model"
)

// WriteGeoJSON writes accepted records as a GeoJSON FeatureCollection of
// points. Records without coordinates are skipped; the map output can only
// show what it can place.
func WriteGeoJSON(w io.Writer, records []model.FusedRecord) error {
	fc := geojson.FeatureCollection{Features: []*geojson.Feature{}}

	for _, rec := range records {
		if rec.Coordinates == nil {
			continue
		}

		point := geom.NewPointFlat(geom.XY, []float64{rec.Coordinates.Lng, rec.Coordinates.Lat})
		props := map[string]any{
			"label":         rec.Label(),
			"street_number": rec.StreetNumber,
			"street_name":   rec.StreetName,
			"score":         rec.Score,
		}
		if rec.Name != "" {
			props["name"] = rec.Name
		}
		if rec.Title != "" {
			props["title"] = rec.Title
		}
		if rec.Category != "" {
			props["category"] = rec.Category
		}
		if rec.Phone != "" {
			props["phone"] = rec.Phone
		}
		if rec.CompanyID != "" {
			props["company_id"] = rec.CompanyID
		}

		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry:   point,
			Properties: props,
		})
	}

	data, err := json.Marshal(&fc)
	if err != nil {
		return eris.Wrap(err, "export: marshal geojson")
	}
	if _, err := w.Write(data); err != nil {
		return eris.Wrap(err, "export: write geojson")
	}
	return nil
}
