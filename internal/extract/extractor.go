package extract

import (
	"github.com/ppiankov/filmwiki/internal/geo"
	"github.com/ppiankov/filmwiki/internal/model"
)

// Extractor turns fetched pages into records. It holds no per-page state;
// the recognizer is only consulted for Location.
type Extractor struct {
	recognizer geo.Recognizer
}

// NewExtractor creates an extractor that resolves locations with recognizer.
// A nil recognizer leaves Location empty.
func NewExtractor(recognizer geo.Recognizer) *Extractor {
	return &Extractor{recognizer: recognizer}
}

// Extract builds the record for one page. A nil infobox is read as empty.
func (e *Extractor) Extract(page model.PageInput) model.ExtractedRecord {
	infobox := page.Infobox
	if infobox == nil {
		infobox = map[string]string{}
	}

	record := model.ExtractedRecord{
		Title:       page.Title,
		Director:    Director(infobox),
		Starring:    Starring(infobox),
		RunningTime: RunningTime(infobox),
		Country:     Country(infobox),
		Language:    Language(infobox),
		Time:        Time(page.Wikitext),
		Location:    Location(page.Wikitext, e.recognizer),
		Categories:  Categories(page.Wikitext),
		Text:        Text(page.Wikitext),
	}
	return record.Normalize()
}

// ExtractAll extracts pages in order, one at a time
func (e *Extractor) ExtractAll(pages []model.PageInput) []model.ExtractedRecord {
	records := make([]model.ExtractedRecord, 0, len(pages))
	for _, page := range pages {
		records = append(records, e.Extract(page))
	}
	return records
}
