// Package fuser pairs up directory and POI records that describe the same
// physical establishment and merges them into fused records.
package fuser

import (
	"strings"

	"go.uber.org/zap"

	"github.com/leadscope/prospect-cli/internal/geo"
	"github.com/leadscope/prospect-cli/internal/model"
	"github.com/leadscope/prospect-cli/internal/namematch"
)

// DefaultProximityM is the distance under which two candidates are treated
// as a strong geographic match signal.
const DefaultProximityM = 50.0

// Config holds the matching thresholds.
type Config struct {
	// ProximityM is the maximum distance in meters for a geographic match
	// signal. Defaults to DefaultProximityM when zero.
	ProximityM float64

	// NameThreshold is the similarity above which names corroborate a match.
	// Defaults to namematch.DefaultThreshold when zero.
	NameThreshold float64

	// AllowGeoOnly permits matching on proximity alone when neither an exact
	// address match nor a name corroboration is possible (e.g. the directory
	// record has no listing title). Off by default: proximity alone cannot
	// distinguish unrelated businesses sharing one building.
	AllowGeoOnly bool
}

// Fuser merges two source collections into one fused collection.
type Fuser struct {
	proximityM float64
	names      *namematch.Matcher
	geoOnly    bool
}

// New creates a Fuser from the given config.
func New(cfg Config) *Fuser {
	if cfg.ProximityM <= 0 {
		cfg.ProximityM = DefaultProximityM
	}
	return &Fuser{
		proximityM: cfg.ProximityM,
		names:      namematch.NewMatcher(cfg.NameThreshold),
		geoOnly:    cfg.AllowGeoOnly,
	}
}

// Result carries the fused collection plus match accounting.
type Result struct {
	Records      []model.FusedRecord
	MatchedPairs int
}

// candidate is one qualifying POI record for a directory record.
type candidate struct {
	index       int
	distanceM   float64
	hasDistance bool
	nameSim     float64
}

// Fuse pairs directory and POI records and emits one fused record per matched
// pair plus one per unmatched input. Pure: inputs are never mutated, and the
// output is deterministic for identical inputs.
//
// Matching is greedy one-to-one in collection order: for each directory
// record, every unconsumed POI record is evaluated; of the qualifying
// candidates the geographically nearest wins, ties broken by higher name
// similarity, then by input order.
func (f *Fuser) Fuse(dirs []model.DirectoryRecord, pois []model.POIRecord) Result {
	consumed := make([]bool, len(pois))
	records := make([]model.FusedRecord, 0, len(dirs)+len(pois))
	matched := 0

	for i := range dirs {
		dir := &dirs[i]

		if !hasIdentity(dir) {
			// Malformed input: excluded from matching, retained as a
			// partial record for the filtering stages to judge.
			records = append(records, fromDirectory(dir))
			continue
		}

		best := f.pickCandidate(dir, pois, consumed)
		if best == nil {
			records = append(records, fromDirectory(dir))
			continue
		}

		consumed[best.index] = true
		matched++
		records = append(records, merge(dir, &pois[best.index]))

		zap.L().Debug("fuser: matched pair",
			zap.String("street", dir.StreetNumber+" "+dir.StreetName),
			zap.String("poi", pois[best.index].Name),
			zap.Float64("distance_m", best.distanceM),
			zap.Float64("name_similarity", best.nameSim),
		)
	}

	for j := range pois {
		if !consumed[j] {
			records = append(records, fromPOI(&pois[j]))
		}
	}

	return Result{Records: records, MatchedPairs: matched}
}

// pickCandidate returns the best qualifying POI for the directory record, or
// nil when none qualifies.
func (f *Fuser) pickCandidate(dir *model.DirectoryRecord, pois []model.POIRecord, consumed []bool) *candidate {
	var best *candidate

	for j := range pois {
		if consumed[j] {
			continue
		}
		c, ok := f.qualify(dir, &pois[j])
		if !ok {
			continue
		}
		c.index = j
		if best == nil || closer(&c, best) {
			cc := c
			best = &cc
		}
	}

	return best
}

// qualify decides whether a (directory, POI) pair may be considered the same
// establishment: exact normalized address match, OR distance under the
// proximity threshold corroborated by name similarity (or alone, when the
// geo-only policy is enabled).
func (f *Fuser) qualify(dir *model.DirectoryRecord, poi *model.POIRecord) (candidate, bool) {
	c := candidate{}
	c.distanceM, c.hasDistance = geo.DistanceBetween(dir.Geocode, poi.Coordinates)

	dirName := dir.Title
	if dirName != "" && poi.Name != "" {
		c.nameSim = namematch.Similarity(dirName, poi.Name)
	}

	if addressExact(dir, poi) {
		return c, true
	}

	if c.hasDistance && c.distanceM < f.proximityM {
		if c.nameSim >= f.names.Threshold() {
			return c, true
		}
		if f.geoOnly && dirName == "" {
			return c, true
		}
	}

	return c, false
}

// closer orders candidates per the tie-break policy: smallest distance first
// (candidates without a distance sort after any with one), then highest name
// similarity, then first encountered.
func closer(a, b *candidate) bool {
	switch {
	case a.hasDistance && !b.hasDistance:
		return true
	case !a.hasDistance && b.hasDistance:
		return false
	case a.hasDistance && b.hasDistance && a.distanceM != b.distanceM:
		return a.distanceM < b.distanceM
	}
	return a.nameSim > b.nameSim
}

// addressExact compares the normalized street number + street name identity
// keys of the two sides.
func addressExact(dir *model.DirectoryRecord, poi *model.POIRecord) bool {
	if poi.StreetName == "" {
		return false
	}
	return normalizeNumber(dir.StreetNumber) == normalizeNumber(poi.StreetNumber) &&
		namematch.Normalize(dir.StreetName) == namematch.Normalize(poi.StreetName) &&
		namematch.Normalize(dir.StreetName) != ""
}

// normalizeNumber keeps the leading digits of a street number so "12 bis"
// and "12" compare equal, but "12" and "14" do not.
func normalizeNumber(n string) string {
	n = strings.TrimSpace(n)
	end := 0
	for end < len(n) && n[end] >= '0' && n[end] <= '9' {
		end++
	}
	return n[:end]
}

func hasIdentity(dir *model.DirectoryRecord) bool {
	return strings.TrimSpace(dir.StreetNumber) != "" || strings.TrimSpace(dir.StreetName) != ""
}
