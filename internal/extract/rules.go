package extract

import "regexp"

// Rule is a single regex rewrite step. Rule lists are applied in slice
// order, so earlier rules see the text before later rules touch it.
type Rule struct {
	Name        string
	Pattern     *regexp.Regexp
	Replacement string
}

// Apply rewrites every match of the rule in s
func (r Rule) Apply(s string) string {
	return r.Pattern.ReplaceAllLiteralString(s, r.Replacement)
}

// Rules is an ordered list of rewrite steps
type Rules []Rule

// Apply runs every rule in order over s
func (rs Rules) Apply(s string) string {
	for _, r := range rs {
		s = r.Apply(s)
	}
	return s
}

// With returns a copy of rs with extra inserted before the rule named before.
// If no rule has that name extra is appended.
func (rs Rules) With(before string, extra Rule) Rules {
	out := make(Rules, 0, len(rs)+1)
	inserted := false
	for _, r := range rs {
		if !inserted && r.Name == before {
			out = append(out, extra)
			inserted = true
		}
		out = append(out, r)
	}
	if !inserted {
		out = append(out, extra)
	}
	return out
}

const separator = "\t"

var (
	// ruleLineBreak turns <br>, <br/> and <br /> into separators
	ruleLineBreak = Rule{Name: "line-break", Pattern: regexp.MustCompile(`<br\s?/?>`), Replacement: separator}
	ruleNewline   = Rule{Name: "newline", Pattern: regexp.MustCompile(`\n`), Replacement: separator}
	ruleBullet    = Rule{Name: "bullet", Pattern: regexp.MustCompile(`\*`), Replacement: separator}
	ruleBrackets  = Rule{Name: "brackets", Pattern: regexp.MustCompile(`[\[\]{}]`), Replacement: separator}
	ruleSlash     = Rule{Name: "slash", Pattern: regexp.MustCompile(`/`), Replacement: separator}
	rulePlainList = Rule{Name: "plain-list", Pattern: regexp.MustCompile(`[pP]lain\s?[lL]ist`), Replacement: separator}
)

// ListMarkerRules split an infobox list value (director, starring) into
// tab separated pieces
var ListMarkerRules = Rules{
	ruleLineBreak,
	ruleNewline,
	ruleBullet,
	ruleBrackets,
	rulePlainList,
}

// PlaceListMarkerRules is ListMarkerRules plus "/" as a separator, used by
// country and language. The slash rule runs after line breaks so <br/>
// is still recognized as a whole.
var PlaceListMarkerRules = ListMarkerRules.With("plain-list", ruleSlash)

// TextRules clean an article body. Reference blocks must go first, before
// the generic tag rule strips their delimiters and leaves the contents.
// Citation templates go before tags so that deleting one cannot splice
// the halves of a tag back together.
var TextRules = Rules{
	{Name: "ref-block", Pattern: regexp.MustCompile(`(?s)<ref.*?>.*?</ref>`), Replacement: " "},
	{Name: "cite-web", Pattern: regexp.MustCompile(`(?s)\{\{cite web.*?\}\}`), Replacement: ""},
	{Name: "tag", Pattern: regexp.MustCompile(`<[a-zA-Z/][^>]*>`), Replacement: ""},
	{Name: "square-bracket", Pattern: regexp.MustCompile(`[\[\]]`), Replacement: ""},
}
