package field

import (
	"math"
	"strconv"
	"strings"
)

var thousandsSep = strings.NewReplacer(",", "", "_", "")

// ParseValue converts a Value cell to an integer. Thousands separators are
// dropped and decimal input ("100.0", common in sheet exports) is truncated
// toward zero. ok is false for placeholders and non-numeric text.
func ParseValue(raw string) (value int64, ok bool) {
	if IsPlaceholder(raw) {
		return 0, false
	}
	s := thousandsSep.Replace(strings.TrimSpace(raw))

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}

	f, ok := parseFloat(s)
	if !ok || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}
