package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Infobox keys read by the list and runtime extractors
const (
	KeyDirector = "director"
	KeyStarring = "starring"
	KeyRuntime  = "runtime"
	KeyCountry  = "country"
	KeyLanguage = "language"
)

// minNameLength is the shortest piece kept by list normalization. Shorter
// pieces are markup leftovers such as "ubl" or "al".
const minNameLength = 4

// Director returns the director names from the infobox
func Director(infobox map[string]string) []string {
	return listField(infobox, KeyDirector, ListMarkerRules, nil)
}

// Starring returns the cast names from the infobox
func Starring(infobox map[string]string) []string {
	return listField(infobox, KeyStarring, ListMarkerRules, nil)
}

// Country returns the production countries from the infobox. Only title
// case pieces survive, which drops leftovers like "usa" or "flagcountry".
func Country(infobox map[string]string) []string {
	return listField(infobox, KeyCountry, PlaceListMarkerRules, IsTitle)
}

// Language returns the film languages from the infobox. Unlike Country no
// title case filter is applied.
func Language(infobox map[string]string) []string {
	return listField(infobox, KeyLanguage, PlaceListMarkerRules, nil)
}

// NormalizeList splits a raw infobox value into names. Markers become
// separators, each piece keeps only the link target before "|", and
// pieces shorter than four characters are dropped.
func NormalizeList(raw string, rules Rules, keep func(string) bool) []string {
	names := []string{}
	for _, piece := range strings.Split(rules.Apply(raw), separator) {
		name := linkTarget(piece)
		if utf8.RuneCountInString(name) < minNameLength {
			continue
		}
		if keep != nil && !keep(name) {
			continue
		}
		names = append(names, name)
	}
	return names
}

func listField(infobox map[string]string, key string, rules Rules, keep func(string) bool) []string {
	raw, ok := infobox[key]
	if !ok {
		return []string{}
	}
	return NormalizeList(raw, rules, keep)
}

// linkTarget keeps the text before the first pipe, so [[Target|Shown]]
// yields the canonical Target
func linkTarget(piece string) string {
	if i := strings.IndexByte(piece, '|'); i >= 0 {
		piece = piece[:i]
	}
	return strings.TrimSpace(piece)
}

// IsTitle reports whether s is title cased: it has at least one cased
// letter, every uppercase letter follows an uncased character and every
// lowercase letter follows a cased one
func IsTitle(s string) bool {
	cased := false
	prevCased := false
	for _, r := range s {
		switch {
		case unicode.IsUpper(r) || unicode.IsTitle(r):
			if prevCased {
				return false
			}
			prevCased = true
			cased = true
		case unicode.IsLower(r):
			if !prevCased {
				return false
			}
			prevCased = true
		default:
			prevCased = false
		}
	}
	return cased
}

var digitRun = regexp.MustCompile(`[0-9]+`)

// maxSingleUnitHours is the largest leading number read as hours when a
// second number follows it
const maxSingleUnitHours = 10

// RunningTime returns the runtime in minutes as a zero or one element slice.
//
//	"100 minutes"       -> [100]
//	"1 hr 59 min"       -> [119]
//	"118 min (cut: 95)" -> [118]
func RunningTime(infobox map[string]string) []int {
	raw, ok := infobox[KeyRuntime]
	if !ok {
		return []int{}
	}
	nums := digitRuns(raw)
	switch {
	case len(nums) < 2:
		return nums
	case nums[0] > maxSingleUnitHours:
		return nums[:1]
	default:
		return []int{nums[0]*60 + nums[1]}
	}
}

// digitRuns parses every maximal digit run in s. Runs too long for an int
// are skipped.
func digitRuns(s string) []int {
	nums := []int{}
	for _, m := range digitRun.FindAllString(s, -1) {
		n, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		nums = append(nums, n)
	}
	return nums
}
