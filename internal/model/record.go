package model

// ExtractedRecord is the normalized metadata of one film page.
// Field names are part of the output contract and must not change.
type ExtractedRecord struct {
	Title       string   `json:"Title" bson:"Title"`
	Director    []string `json:"Director" bson:"Director"`
	Starring    []string `json:"Starring" bson:"Starring"`
	RunningTime []int    `json:"Running_time" bson:"Running_time"` // Minutes, at most one element
	Country     []string `json:"Country" bson:"Country"`
	Language    []string `json:"Language" bson:"Language"`
	Time        string   `json:"Time" bson:"Time"`         // Four-digit year from the plot, or ""
	Location    string   `json:"Location" bson:"Location"` // Most-mentioned country in the plot, or ""
	Categories  []string `json:"Categories" bson:"Categories"`
	Text        string   `json:"Text" bson:"Text"` // Wikitext with refs, tags and brackets removed
}

// Normalize replaces nil slices with empty ones so the record always
// serializes sequence fields as [] instead of null
func (r ExtractedRecord) Normalize() ExtractedRecord {
	if r.Director == nil {
		r.Director = []string{}
	}
	if r.Starring == nil {
		r.Starring = []string{}
	}
	if r.RunningTime == nil {
		r.RunningTime = []int{}
	}
	if r.Country == nil {
		r.Country = []string{}
	}
	if r.Language == nil {
		r.Language = []string{}
	}
	if r.Categories == nil {
		r.Categories = []string{}
	}
	return r
}
