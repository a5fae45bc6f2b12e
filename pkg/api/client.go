// Package api is the data-access client injected into the store.
//
// The server builds an HTTPClient pointed at the upstream service; the
// browser-side store gets one pointed at the page origin's /api proxy, so
// effects issue the same resource paths on both sides.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Client fetches JSON resources by path.
type Client interface {
	Get(ctx context.Context, resourcePath string) (json.RawMessage, error)
}

// StatusError is returned when the upstream answers with a non-2xx status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api: GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// HTTPClientOption configures an HTTPClient.
type HTTPClientOption func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(c *http.Client) HTTPClientOption {
	return func(h *HTTPClient) { h.http = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) HTTPClientOption {
	return func(h *HTTPClient) { h.logger = l }
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) HTTPClientOption {
	return func(h *HTTPClient) { h.header.Set(key, value) }
}

// WithMaxBody caps the accepted response size in bytes.
func WithMaxBody(n int64) HTTPClientOption {
	return func(h *HTTPClient) { h.maxBody = n }
}

// HTTPClient is a Client backed by net/http. Safe for concurrent use.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	header  http.Header
	maxBody int64
	logger  *slog.Logger
}

// DefaultTimeout bounds a single upstream request.
const DefaultTimeout = 10 * time.Second

// DefaultMaxBody caps the size of an upstream response.
const DefaultMaxBody = 8 << 20

// ErrTooLarge is returned when a response exceeds the size cap.
var ErrTooLarge = errors.New("api: response too large")

// NewHTTPClient creates a client rooted at baseURL.
func NewHTTPClient(baseURL string, opts ...HTTPClientOption) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		header:  make(http.Header),
		maxBody: DefaultMaxBody,
		logger:  slog.Default().With("component", "api"),
	}
	c.header.Set("Accept", "application/json")
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the base URL the client resolves paths against.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// Get fetches baseURL+resourcePath and returns the body, which must be valid JSON.
func (c *HTTPClient) Get(ctx context.Context, resourcePath string) (json.RawMessage, error) {
	url := c.baseURL + "/" + strings.TrimLeft(resourcePath, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("api: build request: %w", err)
	}
	for k, v := range c.header {
		req.Header[k] = v
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api: GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("upstream request",
		"url", url,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("api: read %s: %w", url, err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("%w: GET %s exceeds %d bytes", ErrTooLarge, url, c.maxBody)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("api: GET %s: response is not valid JSON", url)
	}
	return json.RawMessage(body), nil
}

// Func adapts a function to the Client interface.
type Func func(ctx context.Context, resourcePath string) (json.RawMessage, error)

// Get calls f.
func (f Func) Get(ctx context.Context, resourcePath string) (json.RawMessage, error) {
	return f(ctx, resourcePath)
}
