package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// errNotJSON is returned by Decode when the response body is plain text
var errNotJSON = errors.New("response body is not JSON")

// Response is a successful (or, inside APIError, failed) API response.
// Bodies with a JSON content type are validated on receipt; anything else is kept as text.
type Response struct {
	StatusCode int
	Header     http.Header
	// JSON reports whether the body was served as application/json
	JSON bool
	// Body is the raw response body
	Body []byte
}

// isJSONContentType mirrors the content-type sniffing of the client: any type containing application/json
func isJSONContentType(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "application/json")
}

// Decode unmarshals a JSON body into v
func (r *Response) Decode(v any) error {
	if !r.JSON {
		return errNotJSON
	}
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	return json.Unmarshal(r.Body, v)
}

// Text returns the body as a string
func (r *Response) Text() string {
	return string(r.Body)
}

// Value returns the decoded JSON value, or the raw text for non-JSON bodies
func (r *Response) Value() any {
	if !r.JSON {
		return r.Text()
	}
	var v any
	if err := r.Decode(&v); err != nil {
		return r.Text()
	}
	return v
}

// StringField returns a top-level string field from a JSON object body, or "" if absent
func (r *Response) StringField(name string) string {
	return r.NestedString(name)
}

// NestedString follows a path of object keys and returns the string at the end, or "".
// For example NestedString("user", "_id").
func (r *Response) NestedString(path ...string) string {
	if !r.JSON || len(path) == 0 {
		return ""
	}
	var obj map[string]json.RawMessage
	if err := r.Decode(&obj); err != nil {
		return ""
	}
	for i, key := range path {
		raw, ok := obj[key]
		if !ok {
			return ""
		}
		if i == len(path)-1 {
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return ""
			}
			return s
		}
		obj = nil
		if err := json.Unmarshal(raw, &obj); err != nil {
			return ""
		}
	}
	return ""
}
