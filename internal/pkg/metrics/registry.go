package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BinIQ API Metrics
var (
	// APIRequests tracks BinIQ API calls
	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "biniq_api_requests_total",
			Help: "Total BinIQ API calls by method, route (normalized path), and status code",
		},
		[]string{"method", "route", "status_code"},
	)

	// APIDuration tracks BinIQ API latency
	APIDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:                            "biniq_api_request_duration_ms",
			Help:                            "BinIQ API call duration in milliseconds",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
		[]string{"method", "route"},
	)

	// APIErrors tracks BinIQ API errors
	APIErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "biniq_api_errors_total",
			Help: "Total BinIQ API errors by route and error type",
		},
		[]string{"route", "error_type"},
	)

	// APIRetries tracks retried requests (only when retries are enabled)
	APIRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "biniq_api_retries_total",
			Help: "Total BinIQ API request retries by method and route",
		},
		[]string{"method", "route"},
	)

	// RateLimitWait tracks time spent waiting on the client-side rate limiter
	RateLimitWait = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:                            "biniq_api_ratelimit_wait_ms",
			Help:                            "Time spent waiting for the client-side rate limiter in milliseconds",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
	)
)

// Local Store Metrics
var (
	// StoreOperations tracks local key-value store operations
	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "biniq_localstore_operations_total",
			Help: "Total local store operations by operation and status",
		},
		[]string{"operation", "status"},
	)

	// StoreDuration tracks local store operation latency
	StoreDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:                            "biniq_localstore_operation_duration_ms",
			Help:                            "Local store operation duration in milliseconds",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 1 * time.Hour,
		},
		[]string{"operation"},
	)

	// StoreErrors tracks local store errors by type
	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "biniq_localstore_errors_total",
			Help: "Total local store errors by operation and error type",
		},
		[]string{"operation", "error_type"},
	)
)
