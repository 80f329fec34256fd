// Package api is the HTTP client for the FlipFit REST backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"flipfit/internal/domain/backend"
)

// Observer is told about every call once it finishes. status is 0 when no response arrived.
type Observer func(method, path string, status int, d time.Duration)

// DefaultSlowCall is the slow backend call threshold when none is configured.
const DefaultSlowCall = 500 * time.Millisecond

// Client calls the backend relative to a base URL.
// It never retries and applies no timeout beyond the caller's context unless configured.
type Client struct {
	baseURL  *url.URL
	http     *http.Client
	observer Observer
	slow     time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds each call. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithObserver registers a callback invoked after each call.
func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

// WithSlowThreshold sets when a call is logged as slow_backend_call.
func WithSlowThreshold(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.slow = d
		}
	}
}

// New creates a client for the backend at baseURL, e.g. "http://localhost:8080".
// PRE: baseURL is an absolute http(s) URL
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("backend url %q must be absolute http(s)", baseURL)
	}
	c := &Client{baseURL: u, http: &http.Client{}, slow: DefaultSlowCall}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Do sends req. See Call.
func (c *Client) Do(ctx context.Context, req backend.Request) (backend.Result, error) {
	return c.Call(ctx, req.Method, req.Path, req.Body)
}

// Call sends one request and interprets the response.
// body, when non-nil, is sent as JSON. The Content-Type is always application/json.
// PRE: path starts with "/"
// POST: a 2xx response yields its parsed JSON, or the raw text when it is not JSON
// POST: any other status, or no response, yields a *backend.RequestError
func (c *Client) Call(ctx context.Context, method, path string, body any) (backend.Result, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return backend.Result{}, backend.NewInputError("cannot encode request: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return backend.Result{}, backend.NewInputError("cannot build request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json, text/plain")

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.finish(ctx, method, path, 0, start)
		return backend.Result{}, backend.NewTransportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	c.finish(ctx, method, path, resp.StatusCode, start)
	if err != nil {
		return backend.Result{}, backend.NewTransportError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return backend.Result{}, backend.NewStatusError(resp.StatusCode, string(raw))
	}
	res := backend.ParseResult(raw)
	res.Status = resp.StatusCode
	return res, nil
}

func (c *Client) finish(ctx context.Context, method, path string, status int, start time.Time) {
	elapsed := time.Since(start)
	if c.observer != nil {
		c.observer(method, path, status, elapsed)
	}
	level := slog.LevelDebug
	event := "backend_call"
	if elapsed >= c.slow {
		level = slog.LevelWarn
		event = "slow_backend_call"
	}
	slog.Log(ctx, level, event,
		"method", method,
		"path", path,
		"status", status,
		"duration_ms", float64(elapsed.Microseconds())/1000.0,
	)
}
