// Package zone decides whether fused records fall within a run's search area.
package zone

import (
	"github.com/leadscope/prospect-cli/internal/geo"
	"github.com/leadscope/prospect-cli/internal/model"
)

// DefaultTolerance is the allowed overshoot beyond the nominal radius,
// absorbing geocoding imprecision near the boundary.
const DefaultTolerance = 1.10

// Filter accepts records whose coordinates fall within radius × tolerance of
// the search center. Records without coordinates are rejected: zone
// membership cannot be verified, and absence of proof is treated as
// exclusion.
type Filter struct {
	center model.Coordinates
	maxM   float64
}

// New creates a Filter for the given center and radius in meters. A
// tolerance of 0 falls back to DefaultTolerance.
func New(center model.Coordinates, radiusM, tolerance float64) *Filter {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &Filter{center: center, maxM: radiusM * tolerance}
}

// Accept reports whether the record is inside the tolerated zone, along with
// the measured distance from the center (0 when no coordinates are present).
func (f *Filter) Accept(r *model.FusedRecord) (ok bool, distanceM float64) {
	d, hasDistance := geo.DistanceBetween(&f.center, r.Coordinates)
	if !hasDistance {
		return false, 0
	}
	return d <= f.maxM, d
}
