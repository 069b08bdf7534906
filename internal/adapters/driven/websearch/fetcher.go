// Package websearch provides the bounded-time web research fetcher. It is
// deliberately dumb: one GET per query, a hard timeout, a truncated body,
// and no retries. The orchestrator treats every failure as "no context
// from that source".
package websearch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/nexus-cli/internal/core/ports/driven"
)

// Ensure Fetcher implements the interface.
var _ driven.WebSearcher = (*Fetcher)(nil)

// Default configuration values.
const (
	DefaultTimeout  = 10 * time.Second
	DefaultMaxRunes = 1500

	// requestsPerMinute throttles outbound requests so a fast chat
	// session cannot hammer the search endpoint.
	requestsPerMinute = 20
)

// Config holds configuration for the web search fetcher.
type Config struct {
	// BaseURL is the search endpoint. The query is appended to the path.
	BaseURL string

	// APIKey is the bearer credential. An empty key disables the fetcher.
	APIKey string

	// Timeout is the hard bound on one request (default: 10s).
	Timeout time.Duration

	// MaxRunes caps the returned body length (default: 1500).
	MaxRunes int
}

// Fetcher performs bounded-time web search requests. The endpoint and
// credential are swappable at runtime so a config reload takes effect
// without restart.
type Fetcher struct {
	client   *http.Client
	maxRunes int
	limiter  *rate.Limiter

	mu      sync.RWMutex
	baseURL string
	apiKey  string
}

// NewFetcher creates a web search fetcher.
func NewFetcher(cfg Config) *Fetcher {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRunes == 0 {
		cfg.MaxRunes = DefaultMaxRunes
	}

	return &Fetcher{
		client:   &http.Client{Timeout: cfg.Timeout},
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		maxRunes: cfg.MaxRunes,
		limiter:  rate.NewLimiter(rate.Every(time.Minute/requestsPerMinute), 3),
	}
}

// SetCredentials replaces the endpoint and bearer credential, e.g. after
// a config reload. An empty key disables the fetcher again.
func (f *Fetcher) SetCredentials(baseURL, apiKey string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.baseURL = strings.TrimRight(baseURL, "/")
	f.apiKey = apiKey
}

// Enabled reports whether a credential and endpoint are configured.
func (f *Fetcher) Enabled() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.apiKey != "" && f.baseURL != ""
}

// Fetch returns the raw response body for a query, truncated to the
// configured length. Errors exist for caller logging only.
func (f *Fetcher) Fetch(ctx context.Context, query string) (string, error) {
	f.mu.RLock()
	baseURL, apiKey := f.baseURL, f.apiKey
	f.mu.RUnlock()
	if apiKey == "" || baseURL == "" {
		return "", fmt.Errorf("web search not configured")
	}
	if err := f.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	endpoint := baseURL + "/" + url.PathEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("web search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("web search returned status %d", resp.StatusCode)
	}

	// Read at most a little over the cap; the endpoint may return far
	// more than we will ever feed to the model. HTML responses get a
	// larger read window because markup dominates their byte count.
	limit := int64(f.maxRunes) * 4
	isHTML := strings.Contains(resp.Header.Get("Content-Type"), "html")
	if isHTML {
		limit *= 16
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	text := string(body)
	if isHTML {
		text = stripHTML(text)
	}
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) > f.maxRunes {
		text = string(runes[:f.maxRunes])
	}
	return text, nil
}
