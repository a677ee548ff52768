package model

// PageInput is one fetched wiki page handed to the field extractor
type PageInput struct {
	Title    string            `json:"title"`             // Page title as listed in the category
	Infobox  map[string]string `json:"infobox"`           // Infobox parameters (nil when the page has none)
	Wikitext string            `json:"wikitext"`          // Raw article markup
	PageID   int               `json:"page_id,omitempty"` // MediaWiki page id, informational only
}
