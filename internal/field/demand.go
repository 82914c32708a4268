// Package field normalizes the free-text cells of the value sheet into typed values.
package field

import (
	"math"
	"strconv"
	"strings"
)

// placeholders are cell contents that mean "no data".
var placeholders = map[string]struct{}{
	"":    {},
	"-":   {},
	"—":   {},
	"na":  {},
	"n/a": {},
}

// IsPlaceholder reports whether raw is empty or a "no data" token.
func IsPlaceholder(raw string) bool {
	_, ok := placeholders[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}

// ParseDemand parses a demand cell. It accepts a plain number ("8") or a
// rating written as "A/B", in which case the numerator A is returned as the
// demand score. The denominator only has to be a non-zero number.
// ok is false for placeholders and anything that does not parse.
func ParseDemand(raw string) (demand float64, ok bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if _, skip := placeholders[s]; skip {
		return 0, false
	}

	if strings.Contains(s, "/") {
		parts := strings.Split(s, "/")
		if len(parts) != 2 {
			return 0, false
		}
		num, ok := parseFloat(parts[0])
		if !ok {
			return 0, false
		}
		denom, ok := parseFloat(parts[1])
		if !ok || denom == 0 {
			return 0, false
		}
		return num, true
	}

	return parseFloat(s)
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
