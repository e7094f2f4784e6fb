// Package geo resolves human-entered place names to coordinates and BMKG
// regional codes.
package geo

import (
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeName produces the canonical comparison and storage key for a place
// name: trimmed, lowercased, with internal whitespace runs collapsed.
func NormalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return whitespaceRun.ReplaceAllString(s, " ")
}
