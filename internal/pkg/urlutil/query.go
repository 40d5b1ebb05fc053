package urlutil

import (
	"fmt"
	"net/url"
	"strings"
)

// AppendQuery serializes params as a query string and appends it to rawURL.
// Returns rawURL unchanged when params is empty, so no bare "?" is ever produced.
// Keys are sorted by the standard encoder; nil values are skipped and slices are
// joined with commas.
func AppendQuery(rawURL string, params map[string]any) string {
	values := url.Values{}
	for key, value := range params {
		if value == nil {
			continue
		}
		values.Set(key, queryValue(value))
	}
	if len(values) == 0 {
		return rawURL
	}

	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return rawURL + sep + values.Encode()
}

// queryValue converts a single parameter value to its query-string form
func queryValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []string:
		return strings.Join(v, ",")
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = fmt.Sprint(item)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(v)
	}
}

// JoinPath joins a base URL and an absolute API path without doubling slashes
func JoinPath(baseURL, path string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}
