package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/leadscope/prospect-cli/internal/model"
)

var xlsxHeader = []string{
	"street_number", "street_name", "postal_code", "city",
	"name", "title", "category",
	"phone", "phones", "emails", "websites",
	"company_id", "establishment_id", "industry_code", "officers",
	"construction_year", "building_year", "energy_class",
	"roof_area_m2", "parking_area_m2", "lat", "lng",
	"sources", "score",
}

// WriteXLSX writes accepted records and the rejection side-channel as a
// two-sheet workbook.
func WriteXLSX(path string, records []model.FusedRecord, rejections []model.Rejection) error {
	f := xlsx.NewFile()

	sheet, err := f.AddSheet("fused")
	if err != nil {
		return eris.Wrap(err, "export: add fused sheet")
	}
	headerRow := sheet.AddRow()
	for _, h := range xlsxHeader {
		headerRow.AddCell().SetString(h)
	}
	for _, rec := range records {
		addRecordRow(sheet, toRow(rec))
	}

	rejSheet, err := f.AddSheet("rejections")
	if err != nil {
		return eris.Wrap(err, "export: add rejections sheet")
	}
	rejHeader := rejSheet.AddRow()
	for _, h := range []string{"street_number", "street_name", "name", "reason", "score", "distance_m"} {
		rejHeader.AddCell().SetString(h)
	}
	for _, rej := range rejections {
		r := rejSheet.AddRow()
		r.AddCell().SetString(rej.StreetNumber)
		r.AddCell().SetString(rej.StreetName)
		r.AddCell().SetString(rej.Name)
		r.AddCell().SetString(string(rej.Reason))
		r.AddCell().SetInt(rej.Score)
		r.AddCell().SetFloat(rej.DistanceM)
	}

	return eris.Wrap(f.Save(path), "export: save workbook")
}

func addRecordRow(sheet *xlsx.Sheet, row row) {
	r := sheet.AddRow()
	r.AddCell().SetString(row.StreetNumber)
	r.AddCell().SetString(row.StreetName)
	r.AddCell().SetString(row.PostalCode)
	r.AddCell().SetString(row.City)
	r.AddCell().SetString(row.Name)
	r.AddCell().SetString(row.Title)
	r.AddCell().SetString(row.Category)
	r.AddCell().SetString(row.Phone)
	r.AddCell().SetString(row.Phones)
	r.AddCell().SetString(row.Emails)
	r.AddCell().SetString(row.Websites)
	r.AddCell().SetString(row.CompanyID)
	r.AddCell().SetString(row.EstablishmentID)
	r.AddCell().SetString(row.IndustryCode)
	r.AddCell().SetString(row.Officers)
	r.AddCell().SetInt(row.ConstructionYear)
	r.AddCell().SetInt(row.BuildingYear)
	r.AddCell().SetString(row.EnergyClass)
	r.AddCell().SetFloat(row.RoofAreaM2)
	r.AddCell().SetFloat(row.ParkingAreaM2)
	r.AddCell().SetFloat(row.Lat)
	r.AddCell().SetFloat(row.Lng)
	r.AddCell().SetString(row.Sources)
	r.AddCell().SetInt(row.Score)
}
