// Package export writes fusion output as CSV, XLSX and GeoJSON.
package export

import (
	"io"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/leadscope/prospect-cli/internal/model"
)

// row flattens a FusedRecord for tabular output. Multi-valued fields join
// with "; ".
type row struct {
	StreetNumber     string  `csv:"street_number"`
	StreetName       string  `csv:"street_name"`
	PostalCode       string  `csv:"postal_code"`
	City             string  `csv:"city"`
	Name             string  `csv:"name"`
	Title            string  `csv:"title"`
	Category         string  `csv:"category"`
	Phone            string  `csv:"phone"`
	Phones           string  `csv:"phones"`
	Emails           string  `csv:"emails"`
	Websites         string  `csv:"websites"`
	CompanyID        string  `csv:"company_id"`
	EstablishmentID  string  `csv:"establishment_id"`
	IndustryCode     string  `csv:"industry_code"`
	Officers         string  `csv:"officers"`
	ConstructionYear int     `csv:"construction_year,omitempty"`
	BuildingYear     int     `csv:"building_year,omitempty"`
	EnergyClass      string  `csv:"energy_class"`
	RoofAreaM2       float64 `csv:"roof_area_m2,omitempty"`
	ParkingAreaM2    float64 `csv:"parking_area_m2,omitempty"`
	Lat              float64 `csv:"lat,omitempty"`
	Lng              float64 `csv:"lng,omitempty"`
	Sources          string  `csv:"sources"`
	Score            int     `csv:"score"`
}

func toRow(r model.FusedRecord) row {
	out := row{
		StreetNumber:     r.StreetNumber,
		StreetName:       r.StreetName,
		PostalCode:       r.PostalCode,
		City:             r.City,
		Name:             r.Name,
		Title:            r.Title,
		Category:         r.Category,
		Phone:            r.Phone,
		Phones:           strings.Join(r.Phones, "; "),
		Emails:           strings.Join(r.Emails, "; "),
		Websites:         strings.Join(r.Websites, "; "),
		CompanyID:        r.CompanyID,
		EstablishmentID:  r.EstablishmentID,
		IndustryCode:     r.IndustryCode,
		Officers:         strings.Join(r.Officers, "; "),
		ConstructionYear: r.ConstructionYear,
		BuildingYear:     r.BuildingYear,
		EnergyClass:      r.EnergyClass,
		RoofAreaM2:       r.RoofAreaM2,
		ParkingAreaM2:    r.ParkingAreaM2,
		Score:            r.Score,
	}
	if r.Coordinates != nil {
		out.Lat = r.Coordinates.Lat
		out.Lng = r.Coordinates.Lng
	}
	sources := make([]string, len(r.Sources))
	for i, s := range r.Sources {
		sources[i] = string(s)
	}
	out.Sources = strings.Join(sources, "; ")
	return out
}

// WriteCSV writes accepted records as CSV with a header row.
func WriteCSV(w io.Writer, records []model.FusedRecord) error {
	rows := make([]row, len(records))
	for i, r := range records {
		rows[i] = toRow(r)
	}

	data, err := csvutil.Marshal(rows)
	if err != nil {
		return eris.Wrap(err, "export: marshal csv")
	}
	if _, err := w.Write(data); err != nil {
		return eris.Wrap(err, "export: write csv")
	}
	return nil
}

// rejectionRow flattens a Rejection for the side-channel CSV.
type rejectionRow struct {
	StreetNumber string  `csv:"street_number"`
	StreetName   string  `csv:"street_name"`
	Name         string  `csv:"name"`
	Reason       string  `csv:"reason"`
	Score        int     `csv:"score"`
	DistanceM    float64 `csv:"distance_m,omitempty"`
}

// WriteRejectionsCSV writes the rejection side-channel as CSV.
func WriteRejectionsCSV(w io.Writer, rejections []model.Rejection) error {
	rows := make([]rejectionRow, len(rejections))
	for i, r := range rejections {
		rows[i] = rejectionRow{
			StreetNumber: r.StreetNumber,
			StreetName:   r.StreetName,
			Name:         r.Name,
			Reason:       string(r.Reason),
			Score:        r.Score,
			DistanceM:    r.DistanceM,
		}
	}

	data, err := csvutil.Marshal(rows)
	if err != nil {
		return eris.Wrap(err, "export: marshal rejections csv")
	}
	if _, err := w.Write(data); err != nil {
		return eris.Wrap(err, "export: write rejections csv")
	}
	return nil
}
