// Package resolve maps free-text item names onto rows of the value sheet.
package resolve

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var multiSpaceRe = regexp.MustCompile(`\s{2,}`)

// Normalize prepares a name for comparison by:
//  1. Trimming whitespace
//  2. Lower-casing (Unicode aware)
//  3. Collapsing runs of whitespace into single spaces
func Normalize(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	// Casers carry state and are not safe to share between goroutines.
	name = cases.Lower(language.Und).String(name)
	return multiSpaceRe.ReplaceAllString(name, " ")
}
