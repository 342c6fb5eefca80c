package model

import (
	"fmt"
	"time"
)

// RunStatus represents the current stage of a fusion run.
type RunStatus string

const (
	RunStatusCollecting       RunStatus = "collecting"
	RunStatusFusing           RunStatus = "fusing"
	RunStatusScoring          RunStatus = "scoring"
	RunStatusZoneFiltering    RunStatus = "zone_filtering"
	RunStatusQualityFiltering RunStatus = "quality_filtering"
	RunStatusComplete         RunStatus = "complete"
	RunStatusFailed           RunStatus = "failed"
)

// RunParams are the per-run inputs the pipeline is constructed with.
type RunParams struct {
	Center            Coordinates `json:"center"`
	RadiusM           float64     `json:"radius_m"`
	MinQualityScore   int         `json:"min_quality_score"`
	ProximityM        float64     `json:"proximity_m"`
	NameSimilarity    float64     `json:"name_similarity"`
	ZoneTolerance     float64     `json:"zone_tolerance"`
	AllowGeoOnlyMatch bool        `json:"allow_geo_only_match"`
}

// Run represents a single fusion run.
type Run struct {
	ID        string     `json:"id"`
	Params    RunParams  `json:"params"`
	Status    RunStatus  `json:"status"`
	Result    *RunResult `json:"result,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RunResult holds the final counts of a completed run.
type RunResult struct {
	DirectoryIn  int `json:"directory_in"`
	POIIn        int `json:"poi_in"`
	MatchedPairs int `json:"matched_pairs"`
	Fused        int `json:"fused"`
	Accepted     int `json:"accepted"`
	OutOfZone    int `json:"out_of_zone"`
	LowQuality   int `json:"low_quality"`
}

// RejectionReason tags why a fused record was excluded from the output set.
type RejectionReason string

const (
	// ReasonOutOfZone marks records outside the tolerated search area, or
	// records whose zone membership could not be verified (no coordinates).
	ReasonOutOfZone RejectionReason = "out_of_zone"

	// reasonLowQualityPrefix prefixes the score-carrying low quality reason.
	reasonLowQualityPrefix = "low_quality"
)

// LowQualityReason builds the reason tag for a record rejected on score.
func LowQualityReason(score int) RejectionReason {
	return RejectionReason(fmt.Sprintf("%s:%d", reasonLowQualityPrefix, score))
}

// IsLowQuality reports whether the reason is a low-quality rejection.
func (r RejectionReason) IsLowQuality() bool {
	return len(r) > len(reasonLowQualityPrefix) && r[:len(reasonLowQualityPrefix)] == reasonLowQualityPrefix
}

// Rejection is a side-channel entry describing a record dropped by the
// pipeline's filtering stages, intended for the observability collaborator.
type Rejection struct {
	StreetNumber string          `json:"street_number"`
	StreetName   string          `json:"street_name"`
	Name         string          `json:"name,omitempty"`
	Reason       RejectionReason `json:"reason"`
	Score        int             `json:"score"`
	DistanceM    float64         `json:"distance_m,omitempty"`
}
