package resolve

import (
	"html"
	"strings"

	"golang.org/x/text/cases"
)

// invertedArticles is the closed set of articles recognized after the last comma.
var invertedArticles = map[string]bool{
	"The": true,
	"A":   true,
	"An":  true,
}

// NormalizeTitle makes a catalog title comparable with titles from other sources:
//  1. HTML character references are decoded
//  2. An article trailing the last comma ("Matrix, The") is moved to the front
//
// Only the last comma is considered, so "Rocky, Part II" is left alone.
func NormalizeTitle(raw string) string {
	title := html.UnescapeString(raw)

	idx := strings.LastIndex(title, ",")
	if idx < 0 {
		return title
	}

	lead := strings.TrimSpace(title[:idx])
	article := strings.TrimSpace(title[idx+1:])
	if !invertedArticles[article] {
		return title
	}
	return article + " " + lead
}

// TitlesMatch reports whether the primary title equals the normalized
// secondary title under Unicode case folding.
func TitlesMatch(primary, secondary string) bool {
	fold := cases.Fold()
	return fold.String(primary) == fold.String(NormalizeTitle(secondary))
}
