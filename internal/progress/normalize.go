package progress

import (
	"strings"

	"golang.org/x/text/cases"
)

// Normalize prepares an answer string for comparison: surrounding whitespace
// is trimmed, then the result is Unicode case-folded. "  A " and "a" compare
// equal.
func Normalize(s string) string {
	// Casers are stateful; build one per call.
	return cases.Fold().String(strings.TrimSpace(s))
}
