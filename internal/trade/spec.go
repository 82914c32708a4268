// Package trade evaluates whether an offer of items is fair for a target item.
package trade

import (
	"strings"

	"github.com/sells-group/value-bot/internal/model"
)

// Separator splits the offered side from the target in a trade request.
const Separator = " for "

// Spec is a parsed trade request: "<item> [+ <item> ...] for <target>".
type Spec struct {
	Offered []string
	Target  string
}

// ParseSpec parses a trade request. The text must contain exactly one
// " for "; the left side is split on "+". Every name is trimmed and must be
// non-empty.
func ParseSpec(text string) (Spec, error) {
	parts := strings.Split(text, Separator)
	if len(parts) != 2 {
		return Spec{}, model.FormatError("trade must contain exactly one \" for \"")
	}

	target := strings.TrimSpace(parts[1])
	if target == "" {
		return Spec{}, model.FormatError("trade target is empty")
	}

	var offered []string
	for _, tok := range strings.Split(strings.TrimSpace(parts[0]), "+") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			return Spec{}, model.FormatError("trade offer contains an empty item")
		}
		offered = append(offered, tok)
	}

	return Spec{Offered: offered, Target: target}, nil
}
