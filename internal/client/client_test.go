package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"
)

// capturedRequest is what the test server saw
type capturedRequest struct {
	Method  string
	URL     string
	Headers http.Header
	Body    string
}

// newCaptureServer returns a server that records the last request and replies with status/contentType/body
func newCaptureServer(t *testing.T, status int, contentType, body string) (*httptest.Server, func() capturedRequest) {
	t.Helper()
	var (
		mu   sync.Mutex
		last capturedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		last = capturedRequest{
			Method:  r.Method,
			URL:     r.URL.RequestURI(),
			Headers: r.Header.Clone(),
			Body:    string(data),
		}
		mu.Unlock()
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, func() capturedRequest {
		mu.Lock()
		defer mu.Unlock()
		return last
	}
}

func newTestClient(baseURL string, timeout time.Duration) *Client {
	return NewClient(Config{BaseURL: baseURL, Timeout: timeout}, NewMemoryTokenManager())
}

func TestBuildHeaders(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		custom map[string]string
		want   map[string]string
	}{
		{
			name: "defaults only, no token",
			want: map[string]string{
				"Content-Type": "application/json",
				"Accept":       "application/json",
			},
		},
		{
			name:  "token adds authorization",
			token: "abc",
			want: map[string]string{
				"Content-Type":  "application/json",
				"Accept":        "application/json",
				"Authorization": "Bearer abc",
			},
		},
		{
			name:   "custom header overrides default",
			custom: map[string]string{"Accept": "text/plain", "X-Extra": "1"},
			want: map[string]string{
				"Content-Type": "application/json",
				"Accept":       "text/plain",
				"X-Extra":      "1",
			},
		},
		{
			name:   "collision is case-insensitive",
			custom: map[string]string{"content-type": "multipart/form-data"},
			want: map[string]string{
				"Content-Type": "multipart/form-data",
				"Accept":       "application/json",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient("http://example.invalid", time.Second)
			if tt.token != "" {
				c.SetAuthToken(tt.token)
			}
			got := c.BuildHeaders(tt.custom)
			if len(got) != len(tt.want) {
				t.Fatalf("BuildHeaders() = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("BuildHeaders()[%q] = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestTokenRoundTrip(t *testing.T) {
	c := newTestClient("http://example.invalid", time.Second)

	if got := c.GetAuthToken(); got != "" {
		t.Fatalf("expected no token, got %q", got)
	}

	c.SetAuthToken("token-123")
	if got := c.GetAuthToken(); got != "token-123" {
		t.Errorf("GetAuthToken() = %q, want %q", got, "token-123")
	}

	c.RemoveAuthToken()
	if got := c.GetAuthToken(); got != "" {
		t.Errorf("expected token to be removed, got %q", got)
	}
}

// failingTokenManager fails every operation
type failingTokenManager struct{}

func (failingTokenManager) GetToken() (string, error) { return "", errors.New("disk on fire") }
func (failingTokenManager) SaveToken(string) error    { return errors.New("disk on fire") }
func (failingTokenManager) ClearToken() error         { return errors.New("disk on fire") }

func TestTokenHelpersSwallowPersistenceErrors(t *testing.T) {
	srv, last := newCaptureServer(t, http.StatusOK, "application/json", `{}`)
	c := NewClient(Config{BaseURL: srv.URL}, failingTokenManager{})

	c.SetAuthToken("abc")
	c.RemoveAuthToken()
	if got := c.GetAuthToken(); got != "" {
		t.Errorf("GetAuthToken() = %q, want empty on read failure", got)
	}

	if _, err := c.Get(context.Background(), srv.URL+"/api/faqs", nil); err != nil {
		t.Fatalf("expected unauthenticated request to succeed, got %v", err)
	}
	if auth := last().Headers.Get("Authorization"); auth != "" {
		t.Errorf("expected no Authorization header, got %q", auth)
	}
}

func TestRequestSendsHeadersAndBody(t *testing.T) {
	srv, last := newCaptureServer(t, http.StatusCreated, "application/json; charset=utf-8", `{"ok":true}`)
	c := newTestClient(srv.URL, time.Second)
	c.SetAuthToken("tok")

	resp, err := c.Post(context.Background(), srv.URL+"/api/products", map[string]any{"name": "bin"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.StatusCode != http.StatusCreated || !resp.JSON {
		t.Errorf("unexpected response: status=%d json=%v", resp.StatusCode, resp.JSON)
	}

	got := last()
	if got.Method != http.MethodPost {
		t.Errorf("method = %s, want POST", got.Method)
	}
	if got.Headers.Get("Authorization") != "Bearer tok" {
		t.Errorf("Authorization = %q", got.Headers.Get("Authorization"))
	}
	if got.Headers.Get("Content-Type") != "application/json" || got.Headers.Get("Accept") != "application/json" {
		t.Errorf("unexpected headers: %v", got.Headers)
	}
	if got.Body != `{"name":"bin"}` {
		t.Errorf("body = %s", got.Body)
	}
}

func TestWriteVerbsDefaultToEmptyObject(t *testing.T) {
	verbs := []struct {
		method string
		call   func(c *Client, url string) (*Response, error)
	}{
		{http.MethodPost, func(c *Client, url string) (*Response, error) { return c.Post(context.Background(), url, nil) }},
		{http.MethodPut, func(c *Client, url string) (*Response, error) { return c.Put(context.Background(), url, nil) }},
		{http.MethodDelete, func(c *Client, url string) (*Response, error) { return c.Delete(context.Background(), url, nil) }},
		{http.MethodPatch, func(c *Client, url string) (*Response, error) { return c.Patch(context.Background(), url, nil) }},
	}

	for _, v := range verbs {
		t.Run(v.method, func(t *testing.T) {
			srv, last := newCaptureServer(t, http.StatusOK, "application/json", `{}`)
			c := newTestClient(srv.URL, time.Second)
			if _, err := v.call(c, srv.URL+"/x"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			got := last()
			if got.Method != v.method {
				t.Errorf("method = %s, want %s", got.Method, v.method)
			}
			if got.Body != "{}" {
				t.Errorf("body = %q, want {}", got.Body)
			}
		})
	}
}

func TestDeleteSendsBody(t *testing.T) {
	srv, last := newCaptureServer(t, http.StatusOK, "application/json", `{"message":"deleted"}`)
	c := newTestClient(srv.URL, time.Second)

	if _, err := c.Delete(context.Background(), srv.URL+"/api/users/delete-account", map[string]string{"user_id": "u1"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := last().Body; got != `{"user_id":"u1"}` {
		t.Errorf("body = %s", got)
	}
}

func TestGetQuerySerialization(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]any
		want   string
	}{
		{name: "nil params", params: nil, want: "/api/products"},
		{name: "empty params", params: map[string]any{}, want: "/api/products"},
		{name: "mixed values", params: map[string]any{"b": "x", "a": 1}, want: "/api/products?a=1&b=x"},
		{name: "escaping", params: map[string]any{"q": "blue bin&co"}, want: "/api/products?q=blue+bin%26co"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, last := newCaptureServer(t, http.StatusOK, "application/json", `[]`)
			c := newTestClient(srv.URL, time.Second)
			if _, err := c.Get(context.Background(), srv.URL+"/api/products", tt.params); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got := last().URL; got != tt.want {
				t.Errorf("request URI = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNonJSONResponseReturnsText(t *testing.T) {
	srv, _ := newCaptureServer(t, http.StatusOK, "text/plain", "pong")
	c := newTestClient(srv.URL, time.Second)

	resp, err := c.Get(context.Background(), srv.URL+"/health", nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.JSON {
		t.Error("expected non-JSON response")
	}
	if resp.Text() != "pong" || resp.Value() != "pong" {
		t.Errorf("text = %q, value = %v", resp.Text(), resp.Value())
	}
	var v any
	if err := resp.Decode(&v); err == nil {
		t.Error("expected Decode to fail for text body")
	}
}

func TestInvalidJSONOnSuccess(t *testing.T) {
	srv, _ := newCaptureServer(t, http.StatusOK, "application/json", "{not json")
	c := newTestClient(srv.URL, time.Second)

	_, err := c.Get(context.Background(), srv.URL+"/x", nil)
	if !errors.Is(err, ErrInvalidJSON) {
		t.Errorf("expected ErrInvalidJSON, got %v", err)
	}
}

func TestHTTPErrorNormalization(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		wantMessage string
	}{
		{"message field", 400, "application/json", `{"message":"Email already registered"}`, "Email already registered"},
		{"error field", 401, "application/json", `{"error":"Invalid token"}`, "Invalid token"},
		{"message wins over error", 409, "application/json", `{"message":"m","error":"e"}`, "m"},
		{"non-string message", 422, "application/json", `{"message":{"field":"email"}}`, genericErrorMessage},
		{"no fields", 500, "application/json", `{}`, genericErrorMessage},
		{"text body", 502, "text/html", "<h1>Bad gateway</h1>", genericErrorMessage},
		{"invalid json body", 503, "application/json", "oops", genericErrorMessage},
		{"redirect status", 304, "", "", genericErrorMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newCaptureServer(t, tt.status, tt.contentType, tt.body)
			c := newTestClient(srv.URL, time.Second)

			resp, err := c.Get(context.Background(), srv.URL+"/x", nil)
			if resp != nil {
				t.Fatalf("expected nil response, got %+v", resp)
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *APIError, got %T %v", err, err)
			}
			if apiErr.Status != tt.status {
				t.Errorf("Status = %d, want %d", apiErr.Status, tt.status)
			}
			if apiErr.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", apiErr.Message, tt.wantMessage)
			}
			if StatusCode(err) != tt.status {
				t.Errorf("StatusCode() = %d, want %d", StatusCode(err), tt.status)
			}
		})
	}
}

func TestHTTPErrorCarriesDecodedData(t *testing.T) {
	srv, _ := newCaptureServer(t, http.StatusNotFound, "application/json", `{"message":"Store not found","code":"E404"}`)
	c := newTestClient(srv.URL, time.Second)

	_, err := c.Get(context.Background(), srv.URL+"/api/stores/details/1", nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	data, ok := apiErr.Data.(map[string]any)
	if !ok {
		t.Fatalf("Data = %T, want map", apiErr.Data)
	}
	if data["code"] != "E404" {
		t.Errorf("Data[code] = %v", data["code"])
	}
}

// blockingServer never answers until the client goes away
func blockingServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(10 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRequestTimeout(t *testing.T) {
	srv := blockingServer(t)
	c := newTestClient(srv.URL, 50*time.Millisecond)

	start := time.Now()
	_, err := c.Get(context.Background(), srv.URL+"/slow", nil)
	if !errors.Is(err, ErrRequestTimeout) {
		t.Fatalf("expected ErrRequestTimeout, got %v", err)
	}
	if err.Error() != "Request timeout" {
		t.Errorf("message = %q, want %q", err.Error(), "Request timeout")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("timeout took too long: %v", elapsed)
	}
}

func TestCallerCancellationIsNotATimeout(t *testing.T) {
	srv := blockingServer(t)
	c := newTestClient(srv.URL, 10*time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	_, err := c.Get(ctx, srv.URL+"/slow", nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	if errors.Is(err, ErrRequestTimeout) {
		t.Error("caller cancellation must not be reported as a timeout")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestTransportErrorPropagatesUnchanged(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	c := newTestClient(addr, time.Second)
	_, err := c.Get(context.Background(), addr+"/x", nil)
	if err == nil {
		t.Fatal("expected an error")
	}
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		t.Errorf("expected *url.Error, got %T %v", err, err)
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) || errors.Is(err, ErrRequestTimeout) {
		t.Errorf("transport error must not be normalized, got %v", err)
	}
}

func TestConcurrentRequestsAreIndependent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/fast", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(10 * time.Second):
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := newTestClient(srv.URL, 200*time.Millisecond)

	var (
		wg              sync.WaitGroup
		fastErr, slowErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, slowErr = c.Get(context.Background(), srv.URL+"/slow", nil)
	}()
	go func() {
		defer wg.Done()
		_, fastErr = c.Get(context.Background(), srv.URL+"/fast", nil)
	}()
	wg.Wait()

	if fastErr != nil {
		t.Errorf("fast request failed: %v", fastErr)
	}
	if !errors.Is(slowErr, ErrRequestTimeout) {
		t.Errorf("slow request: expected ErrRequestTimeout, got %v", slowErr)
	}
}

func TestResponseNestedString(t *testing.T) {
	resp := &Response{JSON: true, Body: []byte(`{"_id":"top","user":{"_id":"nested"},"n":1}`)}

	if got := resp.StringField("_id"); got != "top" {
		t.Errorf("StringField(_id) = %q", got)
	}
	if got := resp.NestedString("user", "_id"); got != "nested" {
		t.Errorf("NestedString(user,_id) = %q", got)
	}
	if got := resp.StringField("n"); got != "" {
		t.Errorf("StringField(n) = %q, want empty for non-string", got)
	}
	if got := resp.NestedString("missing", "_id"); got != "" {
		t.Errorf("NestedString(missing,_id) = %q", got)
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"timeout", ErrRequestTimeout, "The request took too long. Please check your connection and try again."},
		{"transport", errors.New("dial tcp: connection refused"), "Unable to connect. Please check your internet connection and try again."},
		{"validation uses server message", &APIError{Status: 400, Message: "Password too short"}, "Password too short"},
		{"validation without message", &APIError{Status: 400, Message: genericErrorMessage}, "Invalid request. Please check your input and try again."},
		{"unauthorized", &APIError{Status: 401, Message: "jwt expired"}, "Your session is invalid or has expired. Please log in again."},
		{"forbidden", &APIError{Status: 403}, "You don't have permission to do that."},
		{"not found", &APIError{Status: 404}, "We couldn't find what you were looking for."},
		{"conflict", &APIError{Status: 409, Message: "Store already exists"}, "Store already exists"},
		{"server error", &APIError{Status: 500, Message: "boom"}, "The service is temporarily unavailable. Please try again later."},
		{"other status", &APIError{Status: 418, Message: "teapot"}, "teapot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
