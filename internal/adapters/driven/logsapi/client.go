package logsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/chatlog-backfill/internal/core/domain"
	"github.com/custodia-labs/chatlog-backfill/internal/core/ports/driven"
	"github.com/custodia-labs/chatlog-backfill/internal/logger"
)

const (
	// DefaultBaseURL is the public logs API.
	DefaultBaseURL = "https://logs.ivr.fi"

	// DefaultUserAgent identifies the client to the API.
	DefaultUserAgent = "chatlog-backfill"

	// maxErrorBody bounds how much of an error response is kept.
	maxErrorBody = 512
)

// Ensure Client implements the interface.
var _ driven.LogFetcher = (*Client)(nil)

// Options configures a Client.
type Options struct {
	// BaseURL overrides DefaultBaseURL (mirrors, tests).
	BaseURL string

	// HTTPClient overrides the HTTP client. Its own timeout applies.
	HTTPClient *http.Client

	// Timeout bounds each request when HTTPClient is nil.
	// Zero leaves the transport defaults in place.
	Timeout time.Duration

	// RequestsPerSecond throttles requests. Zero or less disables throttling.
	RequestsPerSecond float64

	// UserAgent overrides DefaultUserAgent.
	UserAgent string
}

// Client fetches daily chat logs over HTTP.
type Client struct {
	baseURL   string
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
}

// NewClient creates a new logs API client.
func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return &Client{
		baseURL:   baseURL,
		http:      httpClient,
		limiter:   limiter,
		userAgent: userAgent,
	}
}

// URL returns the request URL for a channel and day.
func (c *Client) URL(channel string, day domain.Day) string {
	return fmt.Sprintf("%s/channel/%s/%s?json=true", c.baseURL, url.PathEscape(channel), day.Path())
}

// Fetch retrieves and parses one day of logs.
func (c *Client) Fetch(ctx context.Context, channel string, day domain.Day) (*domain.LogPayload, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limit wait: %w", domain.ErrFetch, err)
		}
	}

	u := c.URL(channel, day)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", domain.ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	logger.Debug("GET %s", u)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %w", domain.ErrFetch, ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("%w: %w", domain.ErrFetch, &StatusError{
			StatusCode: resp.StatusCode,
			URL:        u,
			Body:       strings.TrimSpace(string(excerpt)),
		})
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: read body: %w", domain.ErrFetch, ErrTransport, err)
	}

	var payload domain.LogPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %w: %w", domain.ErrFetch, ErrMalformedBody, err)
	}

	logger.Debug("Fetched %s/%s: %d messages, %d bytes", channel, day, len(payload.Messages), len(body))
	return &payload, nil
}
