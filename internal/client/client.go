package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/osa911/userconsole/internal/logging"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Config is everything a Client needs. It is built once per process (or per
// test) and handed to New; nothing is cached globally.
type Config struct {
	// BaseURL is prefixed to every request path, e.g. http://localhost:8000/api
	BaseURL string
	// Timeout bounds a whole call; zero keeps the transport defaults
	Timeout time.Duration
	// HTTPClient overrides the default otelhttp-instrumented client
	HTTPClient *http.Client
	Logger     *logging.Logger
	Metrics    *Metrics
	UserAgent  string
}

// Client sends JSON requests to the remote API. It never retries.
type Client struct {
	baseURL   string
	http      *http.Client
	logger    *logging.Logger
	metrics   *Metrics
	userAgent string
}

// New creates a client from cfg
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   cfg.Timeout,
		}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}

	return &Client{
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		http:      httpClient,
		logger:    logger,
		metrics:   cfg.Metrics,
		userAgent: cfg.UserAgent,
	}
}

// BaseURL returns the resolved API base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get sends a GET with optional query parameters and decodes the body into out
func (c *Client) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// Post sends body as JSON; a nil body sends no payload
func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

// Put sends body as JSON
func (c *Client) Put(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

// Patch sends body as JSON
func (c *Client) Patch(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPatch, path, nil, body, out)
}

// Delete sends a DELETE and discards the response body
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s %s body: %w", method, path, err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, payload)
	if err != nil {
		return fmt.Errorf("failed to build %s %s request: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if id := RequestIDFrom(ctx); id != "" {
		req.Header.Set(HeaderRequestID, id)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.observe(method, path, 0, time.Since(start))
		c.logger.Error("Network Error: %v", err)
		return networkError(method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	c.metrics.observe(method, path, resp.StatusCode, elapsed)
	if err != nil {
		c.logger.Error("Network Error: %v", err)
		return networkError(method, path, err)
	}

	c.logger.LogHTTPRequest(method, target, "api", resp.StatusCode, len(data), elapsed.String())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("API Error: %s %s -> %d %s", method, path, resp.StatusCode, strings.TrimSpace(string(data)))
		return responseError(method, path, resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}
