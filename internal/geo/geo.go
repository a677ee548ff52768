// Package geo finds country mentions in free text. Recognizers are
// pluggable; the default is a small embedded gazetteer.
package geo

import "sort"

// Mention is the number of times a country is referenced in a text,
// directly or through one of its cities
type Mention struct {
	Country string `json:"country"`
	Code    string `json:"code,omitempty"`
	Count   int    `json:"count"`

	first int // offset of the first reference, used to break ties
}

// Mentions is a country to count mapping ordered by descending count,
// ties broken by which country was referenced first
type Mentions []Mention

// Top returns the most mentioned country
func (m Mentions) Top() (Mention, bool) {
	if len(m) == 0 {
		return Mention{}, false
	}
	return m[0], true
}

// Counts returns the mentions as a plain map
func (m Mentions) Counts() map[string]int {
	out := make(map[string]int, len(m))
	for _, mention := range m {
		out[mention.Country] = mention.Count
	}
	return out
}

// Recognizer reports the countries referenced in a text
type Recognizer interface {
	CountryMentions(text string) Mentions
}

// RecognizerFunc adapts a function to Recognizer
type RecognizerFunc func(text string) Mentions

// CountryMentions calls f
func (f RecognizerFunc) CountryMentions(text string) Mentions {
	return f(text)
}

// Tally accumulates country references and produces ordered Mentions
type Tally struct {
	byCode map[string]*Mention
	next   int
}

// NewTally creates an empty tally
func NewTally() *Tally {
	return &Tally{byCode: make(map[string]*Mention)}
}

// Add records count references to a country. Key identifies the country
// (an ISO code or the name itself); the first Add for a key fixes its
// tie-break position.
func (t *Tally) Add(key, name string, count int) {
	if count <= 0 {
		return
	}
	if m, ok := t.byCode[key]; ok {
		m.Count += count
		return
	}
	t.byCode[key] = &Mention{Country: name, Code: key, Count: count, first: t.next}
	t.next++
}

// Mentions returns the tally ordered by count, then first reference
func (t *Tally) Mentions() Mentions {
	out := make(Mentions, 0, len(t.byCode))
	for _, m := range t.byCode {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].first < out[j].first
	})
	return out
}
