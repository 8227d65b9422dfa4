// Package fetch implements the two-request upstream acquisition cycle:
// a conditional JSON XHR GET followed, when the payload changed, by an
// unconditional HTML page GET.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hazyhaar/courtwatch/horosafe"
)

// Config configures a Fetcher.
type Config struct {
	Timeout   time.Duration // per-request timeout. Default: 15s.
	MaxBytes  int64         // max response body size. Default: 10MB.
	UserAgent string        // sent with every request.
	// URLValidator validates URLs before fetch (SSRF prevention).
	// Default: horosafe.ValidateURL.
	URLValidator func(string) error
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = 10 * 1024 * 1024
	}
	if c.UserAgent == "" {
		c.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	}
	if c.URLValidator == nil {
		c.URLValidator = horosafe.ValidateURL
	}
}

// Fetcher performs the courthouse board's two-request cycle.
type Fetcher struct {
	client *http.Client
	config Config
}

// New creates a Fetcher with SSRF protection on redirects.
func New(cfg Config) *Fetcher {
	cfg.defaults()
	validate := cfg.URLValidator
	return &Fetcher{
		client: &http.Client{
			Timeout: cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("too many redirects (%d)", len(via))
				}
				if err := validate(req.URL.String()); err != nil {
					return fmt.Errorf("redirect blocked (SSRF): %w", err)
				}
				return nil
			},
		},
		config: cfg,
	}
}

// XHRResult is the outcome of the conditional JSON fetch.
type XHRResult struct {
	Skipped    bool // true on 304 — no page fetch should follow
	Rows       []json.RawMessage
	ETag       string
	LastMod    string
}

// FetchXHR performs the conditional `GET {XHR_URL}` leg. When etag/lastMod
// are non-empty they are sent as If-None-Match/If-Modified-Since. A 304
// response yields Skipped=true and no rows. Any status other than 200 or
// 304 is an error (spec §4.A: "any other status fails the tick").
func (f *Fetcher) FetchXHR(ctx context.Context, xhrURL, etag, lastMod string) (*XHRResult, error) {
	if err := f.config.URLValidator(xhrURL); err != nil {
		return nil, fmt.Errorf("fetch: xhr url blocked: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, xhrURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: new xhr request: %w", err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}
	if lastMod != "" {
		req.Header.Set("If-Modified-Since", lastMod)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: xhr do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		return &XHRResult{Skipped: true}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch: xhr unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBytes))
	if err != nil {
		return nil, fmt.Errorf("fetch: xhr read body: %w", err)
	}

	rows, err := decodeLeniently(body)
	if err != nil {
		return nil, fmt.Errorf("fetch: xhr decode: %w", err)
	}

	return &XHRResult{
		Rows:    rows,
		ETag:    resp.Header.Get("ETag"),
		LastMod: resp.Header.Get("Last-Modified"),
	}, nil
}

// FetchPage performs the unconditional `GET {BASE}` leg and returns the raw
// HTML body.
func (f *Fetcher) FetchPage(ctx context.Context, pageURL string) ([]byte, error) {
	if err := f.config.URLValidator(pageURL); err != nil {
		return nil, fmt.Errorf("fetch: page url blocked: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch: new page request: %w", err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: page do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch: page unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBytes))
	if err != nil {
		return nil, fmt.Errorf("fetch: page read body: %w", err)
	}
	return body, nil
}

// decodeLeniently accepts either a JSON array of rows or a raw JSON string
// that itself encodes a JSON array (some upstream XHR endpoints double-
// encode). An empty string decodes to an empty, non-error row set.
func decodeLeniently(body []byte) ([]json.RawMessage, error) {
	trimmed := trimSpaceASCII(body)
	if len(trimmed) == 0 {
		return nil, nil
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(trimmed, &rows); err == nil {
		return rows, nil
	}

	var asString string
	if err := json.Unmarshal(trimmed, &asString); err == nil {
		if asString == "" {
			return nil, nil
		}
		var inner []json.RawMessage
		if err := json.Unmarshal([]byte(asString), &inner); err != nil {
			return nil, fmt.Errorf("inner payload is not an array: %w", err)
		}
		return inner, nil
	}

	return nil, fmt.Errorf("payload is neither an array nor a JSON-encoded string")
}

func trimSpaceASCII(b []byte) []byte {
	start, end := 0, len(b)
	for start < end && isSpace(b[start]) {
		start++
	}
	for end > start && isSpace(b[end-1]) {
		end--
	}
	return b[start:end]
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
