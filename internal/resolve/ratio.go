package resolve

import (
	"math"
	"unicode/utf8"

	"github.com/agext/levenshtein"
)

// indel prices a substitution as a deletion plus an insertion, which turns
// the Levenshtein distance into the insert/delete (Indel) distance.
var indel = levenshtein.NewParams().SubCost(2)

// Similarity returns the normalized Indel similarity of a and b on a 0-100
// scale, comparing normalized names. Identical names score exactly 100.
func Similarity(a, b string) float64 {
	a, b = Normalize(a), Normalize(b)
	if a == b {
		return 100
	}
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	dist := levenshtein.Distance(a, b, indel)
	return float64(100*(total-dist)) / float64(total)
}

// Ratio is Similarity truncated to an integer percentage.
func Ratio(a, b string) int {
	return int(math.Floor(Similarity(a, b)))
}
