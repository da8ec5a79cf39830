package manual

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

var nameSuffixRe = regexp.MustCompile(`(?i)[_-]?(manual|rulebook|rules|rule)$`)

// CleanGameName derives a display title from a manual's filename:
// "settlers_of_catan_manual.pdf" becomes "Settlers Of Catan". The extension
// and a trailing manual/rule/rules/rulebook suffix are stripped case-
// insensitively, separators become spaces, and the result is title-cased.
func CleanGameName(filename string) string {
	name := filepath.Base(filename)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = nameSuffixRe.ReplaceAllString(name, "")
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	return TitleCase(name)
}

// TitleCase upper-cases the first letter of each space-separated word and
// lower-cases the rest. Ingestion and the search-time game filter both go
// through this one function so their notions of a game name can never
// drift apart.
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
