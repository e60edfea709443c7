// Package tmdbapi is a minimal client for the TMDB REST API used by the API test cases.
package tmdbapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/networkteam/discover-e2e/collector"
	"github.com/networkteam/discover-e2e/config"
	"github.com/networkteam/discover-e2e/internal/errs"
)

// UserAgent is sent with every request. Some CDNs block the default Go user agent.
const UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"

// ErrUnreachable is returned when no attempt got a response.
var ErrUnreachable = errors.New("api unreachable")

// Client sends GET requests to the TMDB API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
	attempts   int
	recorder   *collector.Recorder
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. Default: client with a 10s timeout
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRecorder records every exchange of the client into recorder.
func WithRecorder(recorder *collector.Recorder) Option {
	return func(c *Client) {
		c.recorder = recorder
	}
}

// WithLogger sets the logger. Default: slog.Default()
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithAttempts sets how often a request is tried when the connection fails. Default: 3
func WithAttempts(attempts int) Option {
	return func(c *Client) {
		c.attempts = attempts
	}
}

// NewClient creates a client for cfg.APIBaseURL authenticated with cfg.APIKey if set.
func NewClient(cfg config.Config, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(cfg.APIBaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     slog.Default(),
		attempts:   3,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.recorder != nil {
		wrapped := *c.httpClient
		wrapped.Transport = c.recorder.Transport(c.httpClient.Transport)
		c.httpClient = &wrapped
	}
	if c.attempts < 1 {
		c.attempts = 1
	}
	return c
}

// Get requests path once.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	const op = "tmdbapi.get"

	u, err := url.Parse(c.baseURL + "/" + strings.TrimLeft(path, "/"))
	if err != nil {
		return nil, errs.Wrap(errs.InvalidConfig, op, "building request URL", err)
	}
	if c.apiKey != "" {
		q := u.Query()
		q.Set("api_key", c.apiKey)
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errs.Wrap(errs.InvalidConfig, op, "building request", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	c.logger.Info("API Response Status: "+resp.Status, "status", resp.StatusCode, "url", redact(u))
	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

// GetWithRetry requests path until a response arrives, at most the configured number of attempts.
// Only connection failures are retried, immediately and without backoff.
// If every attempt fails the error wraps ErrUnreachable.
func (c *Client) GetWithRetry(ctx context.Context, path string) (*Response, error) {
	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		resp, err := c.Get(ctx, path)
		if err == nil {
			return resp, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var urlErr *url.Error
		if errs.Is(err, errs.InvalidConfig) || !errors.As(err, &urlErr) {
			return nil, err
		}

		lastErr = err
		c.logger.Warn("Connection attempt failed", "attempt", attempt, "max", c.attempts, "error", err)
	}
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrUnreachable, c.attempts, lastErr)
}

// Popular requests the list of popular movies.
func (c *Client) Popular(ctx context.Context) (*Response, error) {
	return c.GetWithRetry(ctx, "/movie/popular")
}

// redact hides the API key in logged URLs.
func redact(u *url.URL) string {
	if !u.Query().Has("api_key") {
		return u.String()
	}
	r := *u
	q := r.Query()
	q.Set("api_key", "xxx")
	r.RawQuery = q.Encode()
	return r.String()
}
