// Package mediawiki lists category members and fetches page wikitext and
// infoboxes through the MediaWiki action API.
package mediawiki

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/ppiankov/filmwiki/internal/cache"
	"github.com/ppiankov/filmwiki/internal/model"
	"github.com/ppiankov/filmwiki/internal/util"
	"github.com/ppiankov/filmwiki/internal/worker"
)

const (
	retryBaseDelay = 500 * time.Millisecond
	maxRetryDelay  = 30 * time.Second
)

// fetchSleepFunc is replaced in tests to skip backoff delays
var fetchSleepFunc = time.Sleep

// Config configures a Client
type Config struct {
	APIURL          string
	UserAgent       string
	Timeout         time.Duration
	MaxBodyBytes    int64
	MaxRetries      int
	ExcludeTrailing int
	RespectRobots   bool
	CacheTTL        time.Duration

	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// ConfigFromModel converts the category, HTTP and cache sections of model.Config
func ConfigFromModel(cfg *model.Config) Config {
	return Config{
		APIURL:          cfg.Category.APIURL,
		UserAgent:       cfg.HTTP.UserAgent,
		Timeout:         cfg.HTTP.Timeout,
		MaxBodyBytes:    cfg.HTTP.MaxBodyBytes,
		MaxRetries:      cfg.HTTP.MaxRetries,
		ExcludeTrailing: cfg.Category.ExcludeTrailing,
		RespectRobots:   cfg.HTTP.RespectRobots,
		CacheTTL:        cfg.Cache.DiskTTL,
		HTTPProxy:       cfg.HTTP.HTTPProxy,
		HTTPSProxy:      cfg.HTTP.HTTPSProxy,
		NoProxy:         cfg.HTTP.NoProxy,
	}
}

// Client talks to one MediaWiki api.php endpoint
type Client struct {
	config     Config
	httpClient *http.Client
	limiter    *worker.Limiter
	robots     *util.RobotsChecker
	responses  cache.Cache
	logger     *slog.Logger
}

// NewClient creates a client. A nil limiter disables pacing and a nil
// cache disables response caching.
func NewClient(config Config, limiter *worker.Limiter, responses cache.Cache, logger *slog.Logger) *Client {
	if config.MaxRetries <= 0 {
		config.MaxRetries = 1
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = 8 << 20
	}
	if responses == nil {
		responses = cache.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			Proxy:               util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
			MaxIdleConnsPerHost: 8,
			IdleConnTimeout:     90 * time.Second,
			DisableCompression:  true,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 3 {
				return fmt.Errorf("stopped after 3 redirects")
			}
			return nil
		},
	}

	c := &Client{
		config:     config,
		httpClient: httpClient,
		limiter:    limiter,
		responses:  responses,
		logger:     logger.With("component", "mediawiki"),
	}
	if config.RespectRobots {
		c.robots = util.NewRobotsChecker(httpClient, config.UserAgent, config.Timeout, logger)
	}
	return c
}

// call performs an API request and decodes the JSON reply into v. Replies
// carrying an API error are returned as *APIError and never cached.
func (c *Client) call(ctx context.Context, params url.Values, v any) error {
	query := url.Values{}
	for k, vs := range params {
		query[k] = vs
	}
	query.Set("format", "json")
	query.Set("formatversion", "2")
	rawURL := c.config.APIURL + "?" + query.Encode()

	key := cache.CacheKey(rawURL)
	body, cached := c.responses.Get(key)
	if !cached {
		var err error
		body, err = c.fetchWithRetry(ctx, rawURL)
		if err != nil {
			return err
		}
	}

	var envelope struct {
		Error *APIError `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if envelope.Error != nil {
		return envelope.Error
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if !cached {
		if err := c.responses.Set(key, body, c.config.CacheTTL); err != nil {
			c.logger.Warn("cache write failed", "error", err)
		}
	}
	c.logger.Debug("api call", "action", params.Get("action"), "cached", cached, "bytes", len(body))
	return nil
}

// fetchWithRetry fetches rawURL, retrying transient failures with
// exponential backoff
func (c *Client) fetchWithRetry(ctx context.Context, rawURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay << (attempt - 1)
			var statusErr *StatusError
			if errors.As(lastErr, &statusErr) && statusErr.RetryAfter > delay {
				delay = statusErr.RetryAfter
			}
			delay = min(delay, maxRetryDelay)
			c.logger.Debug("retrying request", "attempt", attempt+1, "delay", delay, "error", lastErr)
			fetchSleepFunc(delay)
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		body, err := c.fetch(ctx, rawURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !isRetryableFetchError(err) || ctx.Err() != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

// fetch performs one paced GET
func (c *Client) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if c.robots != nil {
		allowed, delay, err := c.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, ErrDisallowed
		}
		if delay > 0 && c.limiter != nil {
			if u, err := url.Parse(rawURL); err == nil {
				c.limiter.SetHostDelay(u.Host, delay)
			}
		}
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, rawURL); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip, br")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	reader, err := decompressReader(resp, resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}

	body, err := io.ReadAll(io.LimitReader(reader, c.config.MaxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > c.config.MaxBodyBytes {
		return nil, fmt.Errorf("read body: %w (limit %d bytes)", ErrBodyTooLarge, c.config.MaxBodyBytes)
	}
	return body, nil
}

// decompressReader wraps a reader with the decoder for the response's
// Content-Encoding
func decompressReader(resp *http.Response, reader io.Reader) (io.Reader, error) {
	switch strings.ToLower(resp.Header.Get("Content-Encoding")) {
	case "gzip":
		return gzip.NewReader(reader)
	case "br":
		return brotli.NewReader(reader), nil
	default:
		return reader, nil
	}
}

// isRetryableFetchError reports whether err is worth another attempt:
// 5xx and 429 responses, timeouts, refused or reset connections and
// truncated reads
func isRetryableFetchError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500 || statusErr.StatusCode == http.StatusTooManyRequests
	}

	if errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// parseRetryAfter reads a Retry-After header given in seconds or as an
// HTTP date
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if secs, err := strconv.Atoi(header); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
