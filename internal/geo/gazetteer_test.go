package geo

import (
	"strings"
	"testing"
)

func TestDefaultGazetteer_Loads(t *testing.T) {
	g := DefaultGazetteer()
	if g.Len() < 300 {
		t.Errorf("expected a few hundred names, got %d", g.Len())
	}
}

func TestGazetteer_CityCountsForCountry(t *testing.T) {
	g := DefaultGazetteer()

	mentions := g.CountryMentions("==Plot==\nSet in 2005 in [[Paris]].==")
	top, ok := mentions.Top()
	if !ok {
		t.Fatal("expected a mention for Paris")
	}
	if top.Country != "France" || top.Code != "FR" || top.Count != 1 {
		t.Errorf("unexpected top mention: %+v", top)
	}
}

func TestGazetteer_MostMentionedWins(t *testing.T) {
	g := DefaultGazetteer()

	text := "Anna leaves Tokyo for London. In London she meets a man from Manchester, then returns to Japan."
	mentions := g.CountryMentions(text)

	counts := mentions.Counts()
	if counts["United Kingdom"] != 3 {
		t.Errorf("expected 3 UK mentions, got %d", counts["United Kingdom"])
	}
	if counts["Japan"] != 2 {
		t.Errorf("expected 2 Japan mentions, got %d", counts["Japan"])
	}
	if top, _ := mentions.Top(); top.Country != "United Kingdom" {
		t.Errorf("expected United Kingdom on top, got %s", top.Country)
	}
}

func TestGazetteer_TieBrokenByFirstMention(t *testing.T) {
	g := DefaultGazetteer()

	mentions := g.CountryMentions("They fly from Berlin to Rome.")
	if len(mentions) != 2 {
		t.Fatalf("expected 2 countries, got %d: %+v", len(mentions), mentions)
	}
	if mentions[0].Country != "Germany" || mentions[1].Country != "Italy" {
		t.Errorf("expected Germany before Italy, got %+v", mentions)
	}
}

func TestGazetteer_LongestMatch(t *testing.T) {
	g := DefaultGazetteer()

	tests := []struct {
		text    string
		country string
	}{
		{"The family moves to New York City in winter.", "United States"},
		{"A heist in Rio de Janeiro goes wrong.", "Brazil"},
		{"Refugees cross into Papua New Guinea.", "Papua New Guinea"},
		{"He returns to Bosnia and Herzegovina after the war.", "Bosnia and Herzegovina"},
		{"She was born in South Korea.", "South Korea"},
	}

	for _, tt := range tests {
		t.Run(tt.country, func(t *testing.T) {
			top, ok := g.CountryMentions(tt.text).Top()
			if !ok {
				t.Fatalf("no mention found in %q", tt.text)
			}
			if top.Country != tt.country {
				t.Errorf("expected %s, got %s", tt.country, top.Country)
			}
		})
	}
}

func TestGazetteer_PunctuationBreaksPhrase(t *testing.T) {
	g := DefaultGazetteer()

	counts := g.CountryMentions("Paris, France").Counts()
	if counts["France"] != 2 {
		t.Errorf("expected Paris and France as separate mentions, got %v", counts)
	}
}

func TestGazetteer_LowercaseIgnored(t *testing.T) {
	g := DefaultGazetteer()

	mentions := g.CountryMentions("she serves turkey on fine china")
	if len(mentions) != 0 {
		t.Errorf("expected no mentions for lowercase words, got %+v", mentions)
	}
}

func TestGazetteer_NoPlaces(t *testing.T) {
	g := DefaultGazetteer()

	if _, ok := g.CountryMentions("Nothing happens here.").Top(); ok {
		t.Error("expected no top mention")
	}
	if _, ok := g.CountryMentions("").Top(); ok {
		t.Error("expected no top mention for empty text")
	}
}

func TestLoadGazetteer_Custom(t *testing.T) {
	data := `
countries:
  - name: "Freedonia"
    code: "FD"
    aliases: ["Fredonia"]
cities:
  - {name: "Marxburg", country: "FD"}
`
	g, err := LoadGazetteer(strings.NewReader(data))
	if err != nil {
		t.Fatalf("LoadGazetteer failed: %v", err)
	}

	counts := g.CountryMentions("From Marxburg to Fredonia.").Counts()
	if counts["Freedonia"] != 2 {
		t.Errorf("expected 2 mentions, got %v", counts)
	}
}

func TestLoadGazetteer_UnknownCityCountry(t *testing.T) {
	data := `
countries:
  - {name: "Freedonia", code: "FD"}
cities:
  - {name: "Sylvania City", country: "SY"}
`
	if _, err := LoadGazetteer(strings.NewReader(data)); err == nil {
		t.Error("expected error for city with unknown country")
	}
}

func TestLoadGazetteer_InvalidYAML(t *testing.T) {
	if _, err := LoadGazetteer(strings.NewReader("countries: [")); err == nil {
		t.Error("expected decode error")
	}
}

func TestRecognizerFunc(t *testing.T) {
	var r Recognizer = RecognizerFunc(func(text string) Mentions {
		tally := NewTally()
		tally.Add("XX", "Testland", 2)
		tally.Add("YY", "Otherland", 3)
		tally.Add("XX", "Testland", 2)
		return tally.Mentions()
	})

	mentions := r.CountryMentions("anything")
	if len(mentions) != 2 {
		t.Fatalf("expected 2 mentions, got %d", len(mentions))
	}
	if mentions[0].Country != "Testland" || mentions[0].Count != 4 {
		t.Errorf("unexpected first mention: %+v", mentions[0])
	}
}
