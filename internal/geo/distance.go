// Package geo provides great-circle distance and bounding-box math for
// proximity matching and zone filtering.
package geo

import (
	"math"

	"github.com/leadscope/prospect-cli/internal/model"
)

// earthRadiusM is the WGS84 mean earth radius in meters.
const earthRadiusM = 6371008.8

// Distance returns the great-circle distance in meters between two points.
// Symmetric and deterministic; accurate to well under a meter at urban scale.
func Distance(a, b model.Coordinates) float64 {
	latA := a.Lat * math.Pi / 180
	latB := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(latA)*math.Cos(latB)*math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * earthRadiusM * math.Asin(math.Min(1, math.Sqrt(h)))
}

// DistanceBetween returns the distance between two optional points. When
// either side has no coordinates it reports ok=false; callers must treat that
// as "geographic signal unavailable", never as zero or infinite distance.
func DistanceBetween(a, b *model.Coordinates) (meters float64, ok bool) {
	if a == nil || b == nil {
		return 0, false
	}
	return Distance(*a, *b), true
}

// BBox is a geographic bounding box.
type BBox struct {
	MinLat float64 `json:"min_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLat float64 `json:"max_lat"`
	MaxLng float64 `json:"max_lng"`
}

// BoundingBox returns the box enclosing a circle of radiusM meters around
// center. Used by the upstream collection clients to scope area queries; the
// admission logic itself always goes through Distance.
func BoundingBox(center model.Coordinates, radiusM float64) BBox {
	// One degree of latitude is ~111.32 km everywhere; longitude shrinks
	// with the cosine of the latitude.
	latOffset := radiusM / 111320.0
	lngOffset := radiusM / (111320.0 * math.Cos(center.Lat*math.Pi/180))

	return BBox{
		MinLat: center.Lat - latOffset,
		MinLng: center.Lng - lngOffset,
		MaxLat: center.Lat + latOffset,
		MaxLng: center.Lng + lngOffset,
	}
}
