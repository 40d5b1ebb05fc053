package metrics

import (
	"errors"
	"io/fs"
	"strings"
	"time"
)

// RecordStoreOperation records local store operation metrics consistently
// operation: operation name (e.g., "get", "set", "remove", "load", "save")
// duration: time taken for the operation
// err: error from the operation (nil if successful)
func RecordStoreOperation(operation string, duration time.Duration, err error) {
	StoreDuration.WithLabelValues(operation).Observe(float64(duration.Milliseconds()))

	status := "success"
	if err != nil {
		status = "error"
		StoreErrors.WithLabelValues(operation, classifyStoreError(err)).Inc()
	}
	StoreOperations.WithLabelValues(operation, status).Inc()
}

// classifyStoreError categorizes local store errors for metrics
func classifyStoreError(err error) string {
	if err == nil {
		return "none"
	}

	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "not_found"
	case errors.Is(err, fs.ErrPermission):
		return "permission"
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "not found"):
		return "not_found"
	case strings.Contains(errStr, "json") || strings.Contains(errStr, "unmarshal") || strings.Contains(errStr, "parse"):
		return "corrupt"
	case strings.Contains(errStr, "no space"):
		return "disk_full"
	default:
		return "other"
	}
}
