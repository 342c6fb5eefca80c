package fuser

import "github.com/leadscope/prospect-cli/internal/model"

// merge combines a matched pair into one fused record. Directory fields own
// the identity and building side; POI fields own the company side. Each
// criterion appears once: nothing here may double-populate a field from both
// sources.
func merge(dir *model.DirectoryRecord, poi *model.POIRecord) model.FusedRecord {
	r := fromDirectory(dir)
	r.Sources = append(r.Sources, model.SourcePOI)

	r.Name = poi.Name
	r.Category = poi.Category
	r.Phones = poi.Phones
	r.Emails = poi.Emails
	r.Websites = poi.Websites
	r.CompanyID = poi.CompanyID
	r.EstablishmentID = poi.EstablishmentID
	r.IndustryCode = poi.IndustryCode
	r.Officers = poi.Officers
	r.RoofAreaM2 = poi.RoofAreaM2
	r.ParkingAreaM2 = poi.ParkingAreaM2
	r.BuildingYear = poi.BuildingYear

	// POI coordinates are authoritative when present; the directory geocode
	// fills in otherwise.
	if poi.Coordinates != nil {
		r.Coordinates = clone(poi.Coordinates)
	}

	return r
}

// fromDirectory builds a partial fused record carrying only directory fields.
func fromDirectory(dir *model.DirectoryRecord) model.FusedRecord {
	return model.FusedRecord{
		StreetNumber:     dir.StreetNumber,
		StreetName:       dir.StreetName,
		PostalCode:       dir.PostalCode,
		City:             dir.City,
		Phone:            dir.Phone,
		Title:            dir.Title,
		ConstructionYear: dir.ConstructionYear,
		EnergyClass:      dir.EnergyClass,
		Coordinates:      clone(dir.Geocode),
		Sources:          []model.Source{model.SourceDirectory},
	}
}

// fromPOI builds a partial fused record carrying only POI fields. Identity
// fields come from the POI's own parsed address when the source provided one.
func fromPOI(poi *model.POIRecord) model.FusedRecord {
	return model.FusedRecord{
		StreetNumber:    poi.StreetNumber,
		StreetName:      poi.StreetName,
		Name:            poi.Name,
		Category:        poi.Category,
		Phones:          poi.Phones,
		Emails:          poi.Emails,
		Websites:        poi.Websites,
		CompanyID:       poi.CompanyID,
		EstablishmentID: poi.EstablishmentID,
		IndustryCode:    poi.IndustryCode,
		Officers:        poi.Officers,
		RoofAreaM2:      poi.RoofAreaM2,
		ParkingAreaM2:   poi.ParkingAreaM2,
		BuildingYear:    poi.BuildingYear,
		Coordinates:     clone(poi.Coordinates),
		Sources:         []model.Source{model.SourcePOI},
	}
}

// clone copies optional coordinates so fused records never alias input
// records (inputs are immutable snapshots).
func clone(c *model.Coordinates) *model.Coordinates {
	if c == nil {
		return nil
	}
	cc := *c
	return &cc
}
