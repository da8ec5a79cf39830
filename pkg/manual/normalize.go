package manual

import (
	"regexp"
	"strings"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// NormalizeText collapses every maximal run of whitespace (spaces, tabs,
// newlines) into a single space and trims the ends. Idempotent.
//
// Further cleanup rules (header/footer stripping, hyphenation repair) would
// slot in here.
func NormalizeText(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
