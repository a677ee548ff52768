package geo

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

//go:embed gazetteer.yaml
var defaultGazetteerYAML []byte

// Country is a gazetteer country entry
type Country struct {
	Name    string   `yaml:"name"`
	Code    string   `yaml:"code"`
	Aliases []string `yaml:"aliases,omitempty"`
}

// City is a gazetteer city entry. Country holds the ISO code.
type City struct {
	Name    string `yaml:"name"`
	Country string `yaml:"country"`
}

type gazetteerFile struct {
	Countries []Country `yaml:"countries"`
	Cities    []City    `yaml:"cities"`
}

// maxPhraseWords bounds the longest place name tried at each position
const maxPhraseWords = 4

// word matches a run of letters, allowing inner apostrophes, periods and
// hyphens ("Guinea-Bissau", "Côte d'Ivoire")
var word = regexp.MustCompile(`\p{L}+(?:['’.\-]\p{L}+)*`)

// Gazetteer recognizes country and city names by longest match over
// capitalized word runs. A city counts as a mention of its country.
type Gazetteer struct {
	names  map[string]string // lowercase phrase -> country code
	byCode map[string]string // country code -> display name
}

// LoadGazetteer reads a gazetteer from YAML
func LoadGazetteer(r io.Reader) (*Gazetteer, error) {
	var file gazetteerFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode gazetteer: %w", err)
	}
	return NewGazetteer(file.Countries, file.Cities)
}

// NewGazetteer builds a gazetteer from entries. Country names win over
// city names that spell the same.
func NewGazetteer(countries []Country, cities []City) (*Gazetteer, error) {
	g := &Gazetteer{
		names:  make(map[string]string),
		byCode: make(map[string]string),
	}
	for _, c := range countries {
		if c.Name == "" || c.Code == "" {
			return nil, fmt.Errorf("country entry %q: name and code are required", c.Name)
		}
		g.byCode[c.Code] = c.Name
		g.names[phraseKey(c.Name)] = c.Code
		for _, alias := range c.Aliases {
			g.names[phraseKey(alias)] = c.Code
		}
	}
	for _, city := range cities {
		if _, ok := g.byCode[city.Country]; !ok {
			return nil, fmt.Errorf("city %q: unknown country code %q", city.Name, city.Country)
		}
		key := phraseKey(city.Name)
		if _, taken := g.names[key]; taken {
			continue
		}
		g.names[key] = city.Country
	}
	return g, nil
}

var defaultGazetteer = sync.OnceValues(func() (*Gazetteer, error) {
	return LoadGazetteer(bytes.NewReader(defaultGazetteerYAML))
})

// DefaultGazetteer returns the embedded gazetteer
func DefaultGazetteer() *Gazetteer {
	g, err := defaultGazetteer()
	if err != nil {
		panic(fmt.Sprintf("embedded gazetteer: %v", err))
	}
	return g
}

// Len returns the number of recognized names
func (g *Gazetteer) Len() int {
	return len(g.names)
}

// CountryMentions implements Recognizer
func (g *Gazetteer) CountryMentions(text string) Mentions {
	tally := NewTally()
	words := word.FindAllStringIndex(text, -1)

	for i := 0; i < len(words); {
		if !startsUpper(text[words[i][0]:words[i][1]]) {
			i++
			continue
		}
		n, code := g.longestMatch(text, words[i:])
		if n == 0 {
			i++
			continue
		}
		tally.Add(code, g.byCode[code], 1)
		i += n
	}
	return tally.Mentions()
}

// longestMatch tries the longest phrase first and returns how many words
// it spans
func (g *Gazetteer) longestMatch(text string, words [][]int) (int, string) {
	// phrases only extend across plain spaces
	limit := 1
	for limit < maxPhraseWords && limit < len(words) {
		gap := text[words[limit-1][1]:words[limit][0]]
		if strings.Trim(gap, " ") != "" {
			break
		}
		limit++
	}

	for n := limit; n > 0; n-- {
		phrase := text[words[0][0]:words[n-1][1]]
		if code, ok := g.names[phraseKey(phrase)]; ok {
			return n, code
		}
	}
	return 0, ""
}

func phraseKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}
