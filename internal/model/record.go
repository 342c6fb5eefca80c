// Package model defines the source and fused record entities shared by the
// fusion pipeline and its collaborators.
package model

import "strings"

// Coordinates is a WGS84 lat/lng pair. Optional coordinates are carried as
// *Coordinates; a nil pointer means "no geocode available", never (0, 0).
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DirectoryRecord is a candidate gathered from the directory/building source
// (directory listing scrape enriched with building-stock data). Its identity
// key is the normalized street number + street name; coordinates are only
// present when the upstream geocoding collaborator resolved the address.
type DirectoryRecord struct {
	StreetNumber     string       `json:"street_number"`
	StreetName       string       `json:"street_name"`
	PostalCode       string       `json:"postal_code,omitempty"`
	City             string       `json:"city,omitempty"`
	Phone            string       `json:"phone,omitempty"`
	Title            string       `json:"title,omitempty"`
	ConstructionYear int          `json:"construction_year,omitempty"`
	EnergyClass      string       `json:"energy_class,omitempty"`
	Geocode          *Coordinates `json:"geocode,omitempty"`
}

// POIRecord is a candidate gathered from the map/points-of-interest source
// enriched with company-registry data. Coordinates are required by the
// upstream contract; Address is the raw one-line address when the source
// provided one, used only for identity derivation.
type POIRecord struct {
	Name            string       `json:"name"`
	Category        string       `json:"category,omitempty"`
	Phones          []string     `json:"phones,omitempty"`
	Emails          []string     `json:"emails,omitempty"`
	Websites        []string     `json:"websites,omitempty"`
	CompanyID       string       `json:"company_id,omitempty"`
	EstablishmentID string       `json:"establishment_id,omitempty"`
	IndustryCode    string       `json:"industry_code,omitempty"`
	Officers        []string     `json:"officers,omitempty"`
	Coordinates     *Coordinates `json:"coordinates"`
	RoofAreaM2      float64      `json:"roof_area_m2,omitempty"`
	ParkingAreaM2   float64      `json:"parking_area_m2,omitempty"`
	BuildingYear    int          `json:"building_year,omitempty"`
	Address         string       `json:"address,omitempty"`
	StreetNumber    string       `json:"street_number,omitempty"`
	StreetName      string       `json:"street_name,omitempty"`
}

// Source tags record provenance on a FusedRecord.
type Source string

const (
	SourceDirectory Source = "directory"
	SourcePOI       Source = "poi"
)

// FusedRecord is the unified per-establishment entity. Identity fields are
// always present when derivable; every source-specific field is independently
// optional. Created exactly once by the fuser and never mutated downstream.
type FusedRecord struct {
	StreetNumber string `json:"street_number"`
	StreetName   string `json:"street_name"`
	PostalCode   string `json:"postal_code,omitempty"`
	City         string `json:"city,omitempty"`

	// Directory-side fields.
	Phone            string `json:"phone,omitempty"`
	Title            string `json:"title,omitempty"`
	ConstructionYear int    `json:"construction_year,omitempty"`
	EnergyClass      string `json:"energy_class,omitempty"`

	// POI/registry-side fields.
	Name            string   `json:"name,omitempty"`
	Category        string   `json:"category,omitempty"`
	Phones          []string `json:"phones,omitempty"`
	Emails          []string `json:"emails,omitempty"`
	Websites        []string `json:"websites,omitempty"`
	CompanyID       string   `json:"company_id,omitempty"`
	EstablishmentID string   `json:"establishment_id,omitempty"`
	IndustryCode    string   `json:"industry_code,omitempty"`
	Officers        []string `json:"officers,omitempty"`
	RoofAreaM2      float64  `json:"roof_area_m2,omitempty"`
	ParkingAreaM2   float64  `json:"parking_area_m2,omitempty"`
	BuildingYear    int      `json:"building_year,omitempty"`

	Coordinates *Coordinates `json:"coordinates,omitempty"`
	Sources     []Source     `json:"sources"`

	// Score is filled in by the pipeline after scoring. Zero until then.
	Score int `json:"score"`
}

// HasSource reports whether the record carries fields from the given source.
func (r *FusedRecord) HasSource(s Source) bool {
	for _, src := range r.Sources {
		if src == s {
			return true
		}
	}
	return false
}

// HasIdentity reports whether the record carries at least one identity field.
func (r *FusedRecord) HasIdentity() bool {
	return strings.TrimSpace(r.StreetNumber) != "" || strings.TrimSpace(r.StreetName) != ""
}

// Label returns the best human-readable handle for the record, used in
// rejection entries and logs.
func (r *FusedRecord) Label() string {
	if r.Name != "" {
		return r.Name
	}
	if r.Title != "" {
		return r.Title
	}
	return strings.TrimSpace(r.StreetNumber + " " + r.StreetName)
}
