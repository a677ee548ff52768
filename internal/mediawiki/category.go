package mediawiki

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

const categoryPrefix = "Category:"

type categoryMembersResponse struct {
	Continue map[string]string `json:"continue"`
	Query    struct {
		CategoryMembers []struct {
			PageID int    `json:"pageid"`
			NS     int    `json:"ns"`
			Title  string `json:"title"`
		} `json:"categorymembers"`
	} `json:"query"`
}

// CategoryMembers lists the titles in a category in API order, following
// continuation, then drops the configured number of trailing entries
// (the non-film pages that close the listing)
func (c *Client) CategoryMembers(ctx context.Context, category string) ([]string, error) {
	if !strings.HasPrefix(category, categoryPrefix) {
		category = categoryPrefix + category
	}

	params := url.Values{
		"action":  {"query"},
		"list":    {"categorymembers"},
		"cmtitle": {category},
		"cmprop":  {"ids|title"},
		"cmlimit": {"max"},
	}

	var titles []string
	for page := 1; ; page++ {
		var resp categoryMembersResponse
		if err := c.call(ctx, params, &resp); err != nil {
			return nil, fmt.Errorf("list %s (batch %d): %w", category, page, err)
		}
		for _, m := range resp.Query.CategoryMembers {
			titles = append(titles, m.Title)
		}

		if len(resp.Continue) == 0 {
			break
		}
		for k, v := range resp.Continue {
			params.Set(k, v)
		}
	}

	c.logger.Info("category listed", "category", category, "members", len(titles))
	return dropTrailing(titles, c.config.ExcludeTrailing), nil
}

func dropTrailing(titles []string, n int) []string {
	if n <= 0 {
		return titles
	}
	if n >= len(titles) {
		return []string{}
	}
	return titles[:len(titles)-n]
}
