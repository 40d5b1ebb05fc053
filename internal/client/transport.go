package client

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/devilmonastery/biniq/internal/pkg/metrics"
)

// TransportOptions configures the round tripper chain built by NewTransport
type TransportOptions struct {
	// Base is the innermost transport; nil means http.DefaultTransport
	Base http.RoundTripper
	// MaxRetries enables retries of idempotent requests when > 0
	MaxRetries uint64
	// RetryBaseDelay is the first backoff interval (default 500ms)
	RetryBaseDelay time.Duration
	// RequestsPerSecond enables client-side rate limiting when > 0
	RequestsPerSecond float64
	// Burst is the rate limiter burst size (default 1)
	Burst int
	// Metrics records Prometheus metrics for every attempt
	Metrics bool
}

// NewTransport assembles the transport chain used by the client.
// From the outside in: rate limit, retry, metrics, base. With zero options it is just the base.
func NewTransport(opts TransportOptions) http.RoundTripper {
	rt := opts.Base
	if rt == nil {
		rt = http.DefaultTransport
	}
	if opts.Metrics {
		rt = NewMetricsTransport(rt)
	}
	if opts.MaxRetries > 0 {
		rt = NewRetryTransport(rt, opts.MaxRetries, opts.RetryBaseDelay)
	}
	if opts.RequestsPerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		rt = NewRateLimitTransport(rt, rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst))
	}
	return rt
}

// metricsTransport wraps an http.RoundTripper to collect metrics on BinIQ API calls
type metricsTransport struct {
	base http.RoundTripper
}

// NewMetricsTransport creates a new transport wrapper that collects metrics
// for every API call passing through it.
func NewMetricsTransport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &metricsTransport{base: base}
}

// RoundTrip implements http.RoundTripper, wrapping the base transport with metrics collection
func (t *metricsTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	duration := time.Since(start)

	// Normalize the route for low-cardinality labels
	route := normalizeRoute(req.URL.Path)

	statusCode := 0
	if resp != nil {
		statusCode = resp.StatusCode
	}

	metrics.APIRequests.WithLabelValues(req.Method, route, strconv.Itoa(statusCode)).Inc()
	metrics.APIDuration.WithLabelValues(req.Method, route).Observe(float64(duration.Milliseconds()))

	if err != nil || statusCode >= 400 {
		metrics.APIErrors.WithLabelValues(route, classifyError(statusCode, err)).Inc()
	}

	return resp, err
}

// idSegmentPatterns match path segments that are resource identifiers
var idSegmentPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^[0-9a-fA-F]{24}$`), // MongoDB ObjectID
	regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`),
	regexp.MustCompile(`^\d+$`),
}

// normalizeRoute replaces identifier segments with ":id"
// This prevents high cardinality in metrics while still providing useful aggregation
func normalizeRoute(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		for _, p := range idSegmentPatterns {
			if p.MatchString(seg) {
				segments[i] = ":id"
				break
			}
		}
	}
	return strings.Join(segments, "/")
}

// classifyError categorizes API errors for metrics
func classifyError(statusCode int, err error) string {
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return "timeout"
		case errors.Is(err, context.Canceled):
			return "canceled"
		}
		errStr := err.Error()
		switch {
		case strings.Contains(errStr, "timeout"):
			return "timeout"
		case strings.Contains(errStr, "connection"):
			return "connection"
		case strings.Contains(errStr, "TLS") || strings.Contains(errStr, "tls"):
			return "tls"
		default:
			return "network"
		}
	}

	// HTTP status code errors
	switch {
	case statusCode == 400:
		return "bad_request"
	case statusCode == 401:
		return "unauthorized"
	case statusCode == 403:
		return "forbidden"
	case statusCode == 404:
		return "not_found"
	case statusCode == 409:
		return "conflict"
	case statusCode == 429:
		return "rate_limited"
	case statusCode >= 500:
		return "server_error"
	case statusCode >= 400:
		return "client_error"
	default:
		return "unknown"
	}
}

// rateLimitTransport delays requests so they do not exceed a client-side rate
type rateLimitTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

// NewRateLimitTransport creates a transport that waits on limiter before each request.
// The wait honours the request context, so the client timeout also bounds it.
func NewRateLimitTransport(base http.RoundTripper, limiter *rate.Limiter) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &rateLimitTransport{base: base, limiter: limiter}
}

func (t *rateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	if err := t.limiter.Wait(req.Context()); err != nil {
		// Prefer the context error once the context has ended
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	metrics.RateLimitWait.Observe(float64(time.Since(start).Milliseconds()))
	return t.base.RoundTrip(req)
}
