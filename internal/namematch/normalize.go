// Package namematch compares free-text business and street labels gathered
// from loosely structured sources. Comparison is case-insensitive and
// accent/punctuation-normalized, with street-type abbreviations expanded from
// an embedded dictionary.
package namematch

import (
	_ "embed"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

//go:embed abbreviations.yaml
var abbreviationsYAML []byte

// dictionary is the normalization dictionary shipped with the binary.
type dictionary struct {
	// Abbreviations maps a canonical token to its abbreviated spellings.
	Abbreviations map[string][]string `yaml:"abbreviations"`
	// StopWords are tokens dropped before comparison.
	StopWords []string `yaml:"stop_words"`
}

var (
	expansions map[string]string
	stopWords  map[string]struct{}

	// accentStripper removes combining marks after NFD decomposition, so
	// "allée" and "allee" normalize identically.
	accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

func init() {
	var dict dictionary
	if err := yaml.Unmarshal(abbreviationsYAML, &dict); err != nil {
		panic("namematch: bad embedded dictionary: " + err.Error())
	}

	expansions = make(map[string]string)
	for canonical, abbrs := range dict.Abbreviations {
		for _, a := range abbrs {
			expansions[a] = canonical
		}
	}

	stopWords = make(map[string]struct{}, len(dict.StopWords))
	for _, w := range dict.StopWords {
		stopWords[w] = struct{}{}
	}
}

// Normalize lowercases, strips accents and punctuation, expands street-type
// abbreviations, drops stop words, and collapses whitespace. Two labels that
// normalize to the same string are considered identical by the matcher.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	if folded, _, err := transform.String(accentStripper, s); err == nil {
		s = folded
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}

	var out []string
	for _, tok := range strings.Fields(b.String()) {
		if canonical, ok := expansions[tok]; ok {
			tok = canonical
		}
		if _, skip := stopWords[tok]; skip {
			continue
		}
		out = append(out, tok)
	}

	return strings.Join(out, " ")
}

// Tokens returns the normalized token set of a label.
func Tokens(s string) []string {
	n := Normalize(s)
	if n == "" {
		return nil
	}
	return strings.Fields(n)
}
