package extract

import (
	"regexp"
	"strings"

	"github.com/ppiankov/filmwiki/internal/geo"
)

var (
	// plotSection spans from the Plot heading to the next "==" marker
	plotSection = regexp.MustCompile(`(?s)==\s?Plot\s?==.*?==`)
	yearToken   = regexp.MustCompile(`\b[12][0-9]{3}\b`)
)

const categoryMarker = "Category:"

// Plot returns the plot section including its heading and the opening
// marker of the following heading, and false if the page has none
func Plot(wikitext string) (string, bool) {
	loc := plotSection.FindStringIndex(wikitext)
	if loc == nil {
		return "", false
	}
	return wikitext[loc[0]:loc[1]], true
}

// Time returns the first year-like token (1000-2999) in the plot, or ""
func Time(wikitext string) string {
	plot, ok := Plot(wikitext)
	if !ok {
		return ""
	}
	return yearToken.FindString(plot)
}

// Location returns the country mentioned most often in the plot, or "" if
// there is no plot, no recognizer, or no country mention
func Location(wikitext string, recognizer geo.Recognizer) string {
	plot, ok := Plot(wikitext)
	if !ok || recognizer == nil {
		return ""
	}
	top, ok := recognizer.CountryMentions(plot).Top()
	if !ok {
		return ""
	}
	return top.Country
}

// Categories returns the category names linked from the page in line
// order. Only the text between the first and second colon is used and
// its last two characters (the closing "]]") are dropped, so a line like
// [[Category:Films shot in multiple languages]] yields
// "Films shot in multiple languages".
func Categories(wikitext string) []string {
	categories := []string{}
	for _, line := range strings.Split(wikitext, "\n") {
		if !strings.Contains(line, categoryMarker) {
			continue
		}
		segment := strings.Split(line, ":")[1]
		categories = append(categories, dropLastRunes(segment, 2))
	}
	return categories
}

func dropLastRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return ""
	}
	return string(r[:len(r)-n])
}

// Text returns the article body with reference blocks, tags, square
// brackets and {{cite web}} templates removed
func Text(wikitext string) string {
	return TextRules.Apply(wikitext)
}
