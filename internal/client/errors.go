package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrRequestTimeout is returned when a request does not complete within the client timeout.
// The message is shown to users as-is, so it keeps its capitalisation.
var ErrRequestTimeout = errors.New("Request timeout") //nolint:staticcheck

// genericErrorMessage is used when an error response carries neither "message" nor "error"
const genericErrorMessage = "Something went wrong"

// APIError is the normalized form of a non-2xx response from the BinIQ API
type APIError struct {
	// Status is the HTTP status code of the response
	Status int
	// Message is the server's "message" or "error" field, or a generic message
	Message string
	// Data is the decoded response body: a JSON value (map[string]any, []any, ...) or the raw text
	Data any
}

func (e *APIError) Error() string {
	return fmt.Sprintf("biniq api status %d: %s", e.Status, e.Message)
}

// newAPIError builds an APIError from a non-2xx response
func newAPIError(resp *Response) *APIError {
	apiErr := &APIError{
		Status:  resp.StatusCode,
		Message: genericErrorMessage,
		Data:    resp.Value(),
	}
	if !resp.JSON {
		return apiErr
	}
	if msg := resp.StringField("message"); msg != "" {
		apiErr.Message = msg
	} else if msg := resp.StringField("error"); msg != "" {
		apiErr.Message = msg
	}
	return apiErr
}

// StatusCode returns the HTTP status carried by err, or 0 if err is not an APIError
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// UserMessage translates a client error into copy suitable for showing to an end user.
// Server messages are preferred for validation failures; other statuses get fixed copy.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrRequestTimeout) {
		return "The request took too long. Please check your connection and try again."
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return "Unable to connect. Please check your internet connection and try again."
	}

	switch apiErr.Status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		if apiErr.Message != "" && apiErr.Message != genericErrorMessage {
			return apiErr.Message
		}
		return "Invalid request. Please check your input and try again."
	case http.StatusUnauthorized:
		return "Your session is invalid or has expired. Please log in again."
	case http.StatusForbidden:
		return "You don't have permission to do that."
	case http.StatusNotFound:
		return "We couldn't find what you were looking for."
	case http.StatusConflict:
		if apiErr.Message != "" && apiErr.Message != genericErrorMessage {
			return apiErr.Message
		}
		return "That already exists."
	case http.StatusTooManyRequests:
		return "Too many requests. Please try again in a few moments."
	}
	if apiErr.Status >= 500 {
		return "The service is temporarily unavailable. Please try again later."
	}
	if apiErr.Message != "" {
		return apiErr.Message
	}
	return genericErrorMessage
}
