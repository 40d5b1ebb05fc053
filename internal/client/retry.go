package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/devilmonastery/biniq/internal/pkg/metrics"
)

// defaultRetryBaseDelay is the first backoff interval when none is configured
const defaultRetryBaseDelay = 500 * time.Millisecond

// errRetryableStatus marks an attempt that got a response worth retrying
var errRetryableStatus = errors.New("retryable response status")

// retryTransport retries idempotent requests on transport errors and gateway failures.
// It sits below the client, so Client.Request still makes exactly one logical request
// and its timeout bounds all attempts together.
type retryTransport struct {
	base       http.RoundTripper
	maxRetries uint64
	baseDelay  time.Duration
}

// NewRetryTransport creates a transport that retries GET and HEAD requests up to
// maxRetries times with exponential backoff starting at baseDelay.
func NewRetryTransport(base http.RoundTripper, maxRetries uint64, baseDelay time.Duration) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	if baseDelay <= 0 {
		baseDelay = defaultRetryBaseDelay
	}
	return &retryTransport{base: base, maxRetries: maxRetries, baseDelay: baseDelay}
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !isIdempotent(req.Method) || (req.Body != nil && req.Body != http.NoBody) {
		return t.base.RoundTrip(req)
	}

	backoff := retry.WithMaxRetries(t.maxRetries, retry.NewExponential(t.baseDelay))
	route := normalizeRoute(req.URL.Path)

	var (
		attempt  int
		lastResp *http.Response
	)
	resp, err := retry.DoValue(req.Context(), backoff, func(ctx context.Context) (*http.Response, error) {
		if attempt > 0 {
			metrics.APIRetries.WithLabelValues(req.Method, route).Inc()
		}
		attempt++

		resp, err := t.base.RoundTrip(req.Clone(ctx))
		if err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			return nil, retry.RetryableError(err)
		}
		if !isRetryableStatus(resp.StatusCode) {
			return resp, nil
		}

		// Buffer the body so the final response can still be returned once retries run out
		buffered, err := bufferBody(resp)
		if err != nil {
			return nil, err
		}
		lastResp = buffered
		return nil, retry.RetryableError(fmt.Errorf("%w: %d", errRetryableStatus, resp.StatusCode))
	})
	if errors.Is(err, errRetryableStatus) && lastResp != nil {
		return lastResp, nil
	}
	return resp, err
}

// isIdempotent reports whether a request with this method may be replayed safely
func isIdempotent(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}

// isRetryableStatus reports whether a status indicates a transient gateway failure
func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// bufferBody reads and closes resp.Body, replacing it with an in-memory copy
func bufferBody(resp *http.Response) (*http.Response, error) {
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(data))
	return resp, nil
}
