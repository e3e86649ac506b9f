package usecase

import (
	"regexp"
	"strings"
)

// Multiple spaces cleanup
var multiSpacePattern = regexp.MustCompile(`\s+`)

// NormalizeQuery trims the search text and collapses inner whitespace runs, so
// "fog  linen " and "fog linen" address the same session and cache entries.
// Case is preserved; the catalog matches case-insensitively on its own.
func NormalizeQuery(text string) string {
	return strings.TrimSpace(multiSpacePattern.ReplaceAllString(text, " "))
}

// NoResultsMessage is shown when every page of a session came back empty
func NoResultsMessage(query string) string {
	return "No products found with the name " + query
}
