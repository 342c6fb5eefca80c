package collect

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/leadscope/prospect-cli/internal/geo"
	"github.com/leadscope/prospect-cli/internal/model"
	"github.com/leadscope/prospect-cli/pkg/annuaire"
	"github.com/leadscope/prospect-cli/pkg/ban"
	"github.com/leadscope/prospect-cli/pkg/overpass"
)

// LivePOI returns a source that unions OSM points of interest with company
// registry establishments around the center. Registry entries carry the
// company identity fields the map side lacks; the fuser downstream resolves
// the overlap between the two providers the same way it resolves the
// directory/POI overlap.
func LivePOI(osm overpass.Client, registry annuaire.Client, center model.Coordinates, radiusM float64) POISource {
	return func(ctx context.Context) ([]model.POIRecord, error) {
		box := geo.BoundingBox(center, radiusM)
		pois, err := osm.Search(ctx, overpass.BBox{
			South: box.MinLat,
			West:  box.MinLng,
			North: box.MaxLat,
			East:  box.MaxLng,
		})
		if err != nil {
			return nil, err
		}

		records := make([]model.POIRecord, 0, len(pois))
		for _, p := range pois {
			rec := model.POIRecord{
				Name:         p.Name,
				Category:     p.Category,
				Coordinates:  &model.Coordinates{Lat: p.Latitude, Lng: p.Longitude},
				StreetNumber: p.HouseNumber,
				StreetName:   p.Street,
			}
			if p.Phone != "" {
				rec.Phones = []string{p.Phone}
			}
			if p.Email != "" {
				rec.Emails = []string{p.Email}
			}
			if p.Website != "" {
				rec.Websites = []string{p.Website}
			}
			if p.HouseNumber != "" || p.Street != "" {
				rec.Address = strings.TrimSpace(p.HouseNumber + " " + p.Street)
			}
			records = append(records, rec)
		}

		companies, err := registry.Near(ctx, center.Lat, center.Lng, radiusM/1000)
		if err != nil {
			return nil, err
		}
		for _, c := range companies {
			rec := model.POIRecord{
				Name:            c.Name,
				CompanyID:       c.SIREN,
				EstablishmentID: c.SIRET,
				IndustryCode:    c.IndustryCode,
				Officers:        c.Officers,
				Address:         c.Address,
			}
			if c.Latitude != 0 || c.Longitude != 0 {
				rec.Coordinates = &model.Coordinates{Lat: c.Latitude, Lng: c.Longitude}
			}
			records = append(records, rec)
		}

		zap.L().Debug("collect: live poi collection",
			zap.Int("osm", len(pois)),
			zap.Int("registry", len(companies)))
		return records, nil
	}
}

// LiveDirectory returns a source that loads the directory collection from a
// JSON file and fills missing geocodes through the address base. Directory
// listings arrive address-only; records whose address cannot be resolved
// keep a nil geocode and are handled downstream by the zone filter.
func LiveDirectory(path string, geocoder ban.Client, center model.Coordinates) DirectorySource {
	return func(ctx context.Context) ([]model.DirectoryRecord, error) {
		records, err := LoadDirectory(path)
		if err != nil {
			return nil, err
		}
		if err := GeocodeDirectory(ctx, geocoder, records, center); err != nil {
			return nil, err
		}
		return records, nil
	}
}

// GeocodeDirectory resolves coordinates for records lacking one, in place.
// Lookup failures on individual records are logged and skipped; only
// transport-level errors abort the pass.
func GeocodeDirectory(ctx context.Context, geocoder ban.Client, records []model.DirectoryRecord, center model.Coordinates) error {
	bias := &ban.Point{Lat: center.Lat, Lng: center.Lng}

	resolved := 0
	for i := range records {
		if records[i].Geocode != nil {
			continue
		}
		query := directoryQuery(records[i])
		if query == "" {
			continue
		}

		result, err := geocoder.Search(ctx, query, bias)
		if err != nil {
			return err
		}
		if !result.Matched {
			zap.L().Debug("collect: address not geocodable", zap.String("query", query))
			continue
		}
		records[i].Geocode = &model.Coordinates{Lat: result.Latitude, Lng: result.Longitude}
		resolved++
	}

	zap.L().Info("collect: directory geocoding pass",
		zap.Int("records", len(records)),
		zap.Int("resolved", resolved))
	return nil
}

func directoryQuery(r model.DirectoryRecord) string {
	if r.StreetName == "" {
		return ""
	}
	parts := []string{}
	if r.StreetNumber != "" {
		parts = append(parts, r.StreetNumber)
	}
	parts = append(parts, r.StreetName)
	if r.PostalCode != "" {
		parts = append(parts, r.PostalCode)
	}
	if r.City != "" {
		parts = append(parts, r.City)
	}
	return strings.Join(parts, " ")
}
