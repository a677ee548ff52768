package mediawiki

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNoInfobox is returned by ParseInfobox when the page has no infobox
	// template with at least one named, non-empty parameter
	ErrNoInfobox = errors.New("no infobox")

	// ErrDisallowed is returned when robots.txt forbids the API endpoint
	ErrDisallowed = errors.New("disallowed by robots.txt")

	// ErrBodyTooLarge is returned when a response exceeds the configured cap
	ErrBodyTooLarge = errors.New("response body too large")
)

// APIError is an error payload returned by the MediaWiki API
// ({"error": {"code": ..., "info": ...}})
type APIError struct {
	Code string `json:"code"`
	Info string `json:"info"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mediawiki api error %s: %s", e.Code, e.Info)
}

// StatusError is a non-2xx HTTP response
type StatusError struct {
	StatusCode int
	Status     string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.StatusCode, e.Status)
}
