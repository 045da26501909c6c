package scoring

import (
	"regexp"
	"strconv"
	"strings"
)

var digitRunRe = regexp.MustCompile(`\d+`)

// nonValues are employee-count strings that mean "size unknown".
var nonValues = map[string]struct{}{
	"": {}, "unknown": {}, "n/a": {}, "na": {}, "-": {}, "none": {},
}

// ParseEmployees converts a free-text employee count ("1001-5000", "500+",
// "2.5k", "Unknown") into a single integer estimate. Ranges collapse to
// their midpoint; k/m suffixes multiply; anything unparseable yields 0,
// which the scorer treats as "size unknown". Never fails.
func ParseEmployees(raw string) int {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	if _, skip := nonValues[s]; skip {
		return 0
	}

	if lo, hi, isRange := strings.Cut(s, "-"); isRange {
		loVal, loOK := parseCount(lo)
		hiVal, hiOK := parseCount(hi)
		if loOK && hiOK && loVal > 0 && hiVal > 0 {
			return (loVal + hiVal) / 2
		}
	}

	if v, ok := parseCount(s); ok && v > 0 {
		return v
	}

	if m := digitRunRe.FindString(s); m != "" {
		if v, err := strconv.Atoi(m); err == nil {
			return v
		}
	}
	return 0
}

// parseCount parses one bound: optional trailing "+", optional k/m suffix.
func parseCount(s string) (int, bool) {
	s = strings.TrimSuffix(s, "+")
	mult := 1.0
	switch {
	case strings.HasSuffix(s, "k"):
		mult = 1_000
		s = strings.TrimSuffix(s, "k")
	case strings.HasSuffix(s, "m"):
		mult = 1_000_000
		s = strings.TrimSuffix(s, "m")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int(f * mult), true
}
