// Package scorer assigns each fused record an information-density score
// against a fixed rubric. Records below the configured minimum are dropped by
// the pipeline's quality filter.
package scorer

import (
	"strings"

	"github.com/leadscope/prospect-cli/internal/model"
)

// MaxScore is the rubric ceiling.
const MaxScore = 15

// DefaultMinScore is the default admission threshold.
const DefaultMinScore = 3

// Rubric point values. Each criterion contributes once, even when both
// sources satisfy it.
const (
	pointsPhone        = 2
	pointsEmail        = 1
	pointsWebsite      = 2
	pointsCompanyID    = 3
	pointsIndustryCode = 1
	pointsOfficer      = 1
	pointsBuildingYear = 1
	pointsEnergyClass  = 1
	pointsSurfaceArea  = 1
	pointsStreetNumber = 1
	pointsCityPostal   = 1
)

// Score computes the quality score of a fused record. Pure and total: every
// record yields exactly one integer in [0, MaxScore].
func Score(r *model.FusedRecord) int {
	score := 0

	// Contact information (5 points max).
	if r.Phone != "" || len(r.Phones) > 0 {
		score += pointsPhone
	}
	if len(r.Emails) > 0 {
		score += pointsEmail
	}
	if len(r.Websites) > 0 {
		score += pointsWebsite
	}

	// Company registry information (5 points max).
	if r.CompanyID != "" || r.EstablishmentID != "" {
		score += pointsCompanyID
	}
	if r.IndustryCode != "" {
		score += pointsIndustryCode
	}
	if len(r.Officers) > 0 {
		score += pointsOfficer
	}

	// Building information (3 points max).
	if r.ConstructionYear != 0 || r.BuildingYear != 0 {
		score += pointsBuildingYear
	}
	if r.EnergyClass != "" {
		score += pointsEnergyClass
	}
	if r.RoofAreaM2 > 0 || r.ParkingAreaM2 > 0 {
		score += pointsSurfaceArea
	}

	// Address information (2 points max).
	if strings.TrimSpace(r.StreetNumber) != "" {
		score += pointsStreetNumber
	}
	if r.City != "" && r.PostalCode != "" {
		score += pointsCityPostal
	}

	return score
}
