// Package scoring implements the deterministic multi-factor company scoring
// engine: text normalization, signal calibration, keyword expansion,
// industry-relevance adjustment, and the weighted company scorer and ranker.
package scoring

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonAlnumRe = regexp.MustCompile(`[^a-z0-9\s]+`)
	spaceRe    = regexp.MustCompile(`\s+`)

	// aliasReplacer collapses known spelling variants after punctuation
	// stripping so that equivalent locations compare equal.
	aliasReplacer = strings.NewReplacer(
		"gurgaon", "gurugram",
		"delhi ncr", "new delhi",
		"bengaluru", "bangalore",
		"bombay", "mumbai",
	)

	// foldMarks strips combining diacritical marks (NFD decompose, drop
	// marks, recompose) so accented enrichment text matches ASCII input.
	foldMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Normalize canonicalizes free text for comparison: diacritic folding,
// lower-casing, "&" expansion, stripping of non-alphanumerics, whitespace
// collapsing, and alias substitution. It never fails; empty input yields "".
func Normalize(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	if folded, _, err := transform.String(foldMarks, text); err == nil {
		text = folded
	}
	text = strings.ToLower(text)
	text = strings.ReplaceAll(text, "&", " and ")
	text = nonAlnumRe.ReplaceAllString(text, " ")
	text = spaceRe.ReplaceAllString(text, " ")
	text = aliasReplacer.Replace(text)
	return strings.TrimSpace(text)
}

// NormalizeAll normalizes each element, dropping entries that normalize to "".
func NormalizeAll(texts []string) []string {
	out := make([]string, 0, len(texts))
	for _, t := range texts {
		if n := Normalize(t); n != "" {
			out = append(out, n)
		}
	}
	return out
}
