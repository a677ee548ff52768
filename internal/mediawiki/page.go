package mediawiki

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/ppiankov/filmwiki/internal/model"
)

type parseResponse struct {
	Parse struct {
		Title     string `json:"title"`
		PageID    int    `json:"pageid"`
		Wikitext  string `json:"wikitext"`
		ParseTree string `json:"parsetree"`
	} `json:"parse"`
}

// Page fetches a page's wikitext and infobox. Redirects are followed and
// the record carries the title the API resolved to. A page without an
// infobox has a nil Infobox.
func (c *Client) Page(ctx context.Context, title string) (model.PageInput, error) {
	params := url.Values{
		"action":    {"parse"},
		"page":      {title},
		"prop":      {"wikitext|parsetree"},
		"redirects": {"1"},
	}

	var resp parseResponse
	if err := c.call(ctx, params, &resp); err != nil {
		return model.PageInput{}, fmt.Errorf("parse %q: %w", title, err)
	}

	page := model.PageInput{
		Title:    resp.Parse.Title,
		PageID:   resp.Parse.PageID,
		Wikitext: resp.Parse.Wikitext,
	}
	if page.Title == "" {
		page.Title = title
	}

	infobox, err := ParseInfobox(resp.Parse.ParseTree)
	switch {
	case errors.Is(err, ErrNoInfobox):
		c.logger.Debug("page has no infobox", "title", page.Title)
	case err != nil:
		return model.PageInput{}, fmt.Errorf("infobox of %q: %w", title, err)
	default:
		page.Infobox = infobox
	}
	return page, nil
}
