package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/devilmonastery/biniq/internal/pkg/idgen"
	"github.com/devilmonastery/biniq/internal/pkg/urlutil"
)

const (
	// DefaultBaseURL is the production BinIQ API
	DefaultBaseURL = "https://biniq.onrender.com"

	// DefaultTimeout bounds every request, including reading the response body
	DefaultTimeout = 120 * time.Second
)

// ErrInvalidJSON is returned when a successful response claims to be JSON but does not parse
var ErrInvalidJSON = errors.New("invalid JSON in response body")

// DefaultHeaders returns the headers sent with every request
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}
}

// Config holds the settings fixed at client construction
type Config struct {
	BaseURL        string
	Timeout        time.Duration
	DefaultHeaders map[string]string
	// Transport is the round tripper used for requests; nil means http.DefaultTransport
	Transport http.RoundTripper
	Logger    *slog.Logger
}

// RequestOptions describes a single request issued through Client.Request
type RequestOptions struct {
	Method  string
	Headers map[string]string
	// Body is an already-encoded JSON document, or nil for no body
	Body []byte
}

// Client is a thin HTTP client for the BinIQ REST API.
// It is safe for concurrent use; requests share nothing but the token manager.
type Client struct {
	baseURL        string
	timeout        time.Duration
	defaultHeaders map[string]string
	httpClient     *http.Client
	tokenManager   TokenManager
	logger         *slog.Logger
}

// NewClient creates a new API client.
// If tokenManager is nil the token is kept in memory for the lifetime of the client.
func NewClient(cfg Config, tokenManager TokenManager) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.DefaultHeaders == nil {
		cfg.DefaultHeaders = DefaultHeaders()
	}
	if cfg.Transport == nil {
		cfg.Transport = http.DefaultTransport
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if tokenManager == nil {
		tokenManager = NewMemoryTokenManager()
	}

	defaults := make(map[string]string, len(cfg.DefaultHeaders))
	for k, v := range cfg.DefaultHeaders {
		defaults[http.CanonicalHeaderKey(k)] = v
	}

	return &Client{
		baseURL:        cfg.BaseURL,
		timeout:        cfg.Timeout,
		defaultHeaders: defaults,
		// No http.Client timeout: the per-request context carries it so a timeout can be told apart
		httpClient:   &http.Client{Transport: cfg.Transport},
		tokenManager: tokenManager,
		logger:       cfg.Logger.With("component", "api-client"),
	}
}

// BaseURL returns the API base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Timeout returns the per-request timeout
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// TokenManager returns the token manager (useful for commands that inspect the token)
func (c *Client) TokenManager() TokenManager {
	return c.tokenManager
}

// BuildHeaders merges the default headers with custom ones (custom wins, keys compared
// case-insensitively) and adds a bearer Authorization header when a token is stored.
func (c *Client) BuildHeaders(custom map[string]string) map[string]string {
	headers := make(map[string]string, len(c.defaultHeaders)+len(custom)+1)
	for k, v := range c.defaultHeaders {
		headers[k] = v
	}
	for k, v := range custom {
		headers[http.CanonicalHeaderKey(k)] = v
	}
	if token := c.GetAuthToken(); token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	return headers
}

// Request issues exactly one HTTP request. Every call in the client goes through here.
//
// Non-2xx responses are returned as *APIError. If the client timeout fires the error is
// ErrRequestTimeout; any other transport error is returned as produced by net/http.
func (c *Client) Request(ctx context.Context, url string, opts RequestOptions) (*Response, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	headers := c.BuildHeaders(opts.Headers)

	reqCtx, cancel := context.WithTimeoutCause(ctx, c.timeout, ErrRequestTimeout)
	defer cancel()

	var body io.Reader
	if opts.Body != nil {
		body = bytes.NewReader(opts.Body)
	}
	req, err := http.NewRequestWithContext(reqCtx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	logger := c.logger.With(
		slog.String("request_id", idgen.RequestID()),
		slog.String("method", method),
		slog.String("url", url))
	start := time.Now()

	res, err := c.httpClient.Do(req)
	if err != nil {
		if timedOut(reqCtx) {
			logger.Warn("request timed out", slog.Duration("timeout", c.timeout))
			return nil, ErrRequestTimeout
		}
		logger.Debug("request failed", slog.String("error", err.Error()))
		return nil, err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		if timedOut(reqCtx) {
			logger.Warn("request timed out reading body", slog.Duration("timeout", c.timeout))
			return nil, ErrRequestTimeout
		}
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	resp := &Response{
		StatusCode: res.StatusCode,
		Header:     res.Header,
		JSON:       isJSONContentType(res.Header.Get("Content-Type")),
		Body:       data,
	}
	success := res.StatusCode >= 200 && res.StatusCode < 300

	if resp.JSON && len(bytes.TrimSpace(data)) > 0 && !json.Valid(data) {
		if success {
			return nil, ErrInvalidJSON
		}
		// Keep the status of a failed request even if its body is garbage
		resp.JSON = false
	}

	logger.Debug("request completed",
		slog.Int("status", res.StatusCode),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()))

	if !success {
		return nil, newAPIError(resp)
	}
	return resp, nil
}

// timedOut reports whether ctx ended because the client timeout fired
// (as opposed to the caller cancelling or its own deadline passing)
func timedOut(ctx context.Context) bool {
	return errors.Is(context.Cause(ctx), ErrRequestTimeout)
}

// Get issues a GET with params serialized as the query string (omitted when empty)
func (c *Client) Get(ctx context.Context, url string, params map[string]any) (*Response, error) {
	return c.Request(ctx, urlutil.AppendQuery(url, params), RequestOptions{Method: http.MethodGet})
}

// Post issues a POST with data encoded as the JSON body ({} when data is nil)
func (c *Client) Post(ctx context.Context, url string, data any) (*Response, error) {
	return c.send(ctx, http.MethodPost, url, data)
}

// Put issues a PUT with data encoded as the JSON body ({} when data is nil)
func (c *Client) Put(ctx context.Context, url string, data any) (*Response, error) {
	return c.send(ctx, http.MethodPut, url, data)
}

// Delete issues a DELETE with data encoded as the JSON body ({} when data is nil).
// Some BinIQ endpoints take the identifier of the deleted resource in the body.
func (c *Client) Delete(ctx context.Context, url string, data any) (*Response, error) {
	return c.send(ctx, http.MethodDelete, url, data)
}

// Patch issues a PATCH with data encoded as the JSON body ({} when data is nil)
func (c *Client) Patch(ctx context.Context, url string, data any) (*Response, error) {
	return c.send(ctx, http.MethodPatch, url, data)
}

func (c *Client) send(ctx context.Context, method, url string, data any) (*Response, error) {
	body, err := encodeBody(data)
	if err != nil {
		return nil, err
	}
	return c.Request(ctx, url, RequestOptions{Method: method, Body: body})
}

// encodeBody JSON-encodes data, defaulting to an empty object
func encodeBody(data any) ([]byte, error) {
	if data == nil {
		return []byte("{}"), nil
	}
	body, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	return body, nil
}

// GetAuthToken returns the stored token, or "" if there is none or it cannot be read
func (c *Client) GetAuthToken() string {
	token, err := c.tokenManager.GetToken()
	if err != nil {
		if !errors.Is(err, ErrNoToken) {
			c.logger.Error("failed to read auth token", slog.String("error", err.Error()))
		}
		return ""
	}
	return token
}

// SetAuthToken persists the token. Failures are logged, not returned.
func (c *Client) SetAuthToken(token string) {
	if err := c.tokenManager.SaveToken(token); err != nil {
		c.logger.Error("failed to save auth token", slog.String("error", err.Error()))
		return
	}
	c.logger.Debug("auth token saved", slog.String("preview", tokenPreview(token)))
}

// RemoveAuthToken deletes the persisted token. Failures are logged, not returned.
func (c *Client) RemoveAuthToken() {
	if err := c.tokenManager.ClearToken(); err != nil {
		c.logger.Error("failed to remove auth token", slog.String("error", err.Error()))
		return
	}
	c.logger.Debug("auth token removed")
}

// tokenPreview shortens a token for logging
func tokenPreview(token string) string {
	if len(token) > 8 {
		return token[:8] + "..."
	}
	return "***"
}
