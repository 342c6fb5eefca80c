package namematch

import (
	"strings"

	"github.com/agext/levenshtein"
)

// DefaultThreshold is the similarity above which two labels are treated as a
// probable name match.
const DefaultThreshold = 0.55

// Matcher scores label similarity against a configured threshold.
type Matcher struct {
	threshold float64
}

// NewMatcher creates a Matcher. A threshold of 0 falls back to the default.
func NewMatcher(threshold float64) *Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Matcher{threshold: threshold}
}

// Threshold returns the configured probable-match threshold.
func (m *Matcher) Threshold() float64 { return m.threshold }

// Similarity scores two labels in [0, 1]. Symmetric; 1.0 for labels that
// normalize identically; 0.0 only when the normalized token sets are fully
// disjoint. The score is the max of an edit-distance similarity (catches
// typos and light rewording) and token Jaccard overlap (catches reordering
// and partial names).
func Similarity(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}

	edit := levenshtein.Similarity(na, nb, nil)
	jaccard := tokenJaccard(strings.Fields(na), strings.Fields(nb))
	if jaccard > edit {
		return jaccard
	}
	return edit
}

// ProbableMatch reports whether the two labels clear the threshold.
func (m *Matcher) ProbableMatch(a, b string) bool {
	return Similarity(a, b) >= m.threshold
}

func tokenJaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, t := range a {
		set[t] = struct{}{}
	}
	union := make(map[string]struct{}, len(a)+len(b))
	for _, t := range a {
		union[t] = struct{}{}
	}
	shared := 0
	for _, t := range b {
		if _, ok := set[t]; ok {
			shared++
			delete(set, t) // count each shared token once
		}
		union[t] = struct{}{}
	}
	return float64(shared) / float64(len(union))
}
