package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/voxscribe/resilience"
)

func newTestClient(t *testing.T, cfg Config) *Client {
	t.Helper()
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c
}

func TestClient_Do_JSONWithHeadersAndAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/v1beta/models/gemini-1.5-flash:generateContent" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected Content-Type application/json, got %s", ct)
		}
		if got := r.Header.Get("X-Client"); got != "voxscribe" {
			t.Errorf("expected default header, got %q", got)
		}
		if got := r.Header.Get("x-goog-api-key"); got != "override" {
			t.Errorf("expected per-request key, got %q", got)
		}
		if got := r.URL.Query().Get("alt"); got != "json" {
			t.Errorf("expected alt=json, got %q", got)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(body)
	}))
	defer srv.Close()

	c := newTestClient(t, Config{
		BaseURL: srv.URL + "/",
		Headers: map[string]string{"X-Client": "voxscribe"},
		Auth:    APIKeyAuthHeader("default", "x-goog-api-key"),
	})
	resp, err := c.Do(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/v1beta/models/gemini-1.5-flash:generateContent",
		Query:  map[string]string{"alt": "json"},
		Body:   map[string]string{"prompt": "hi"},
		Auth:   APIKeyAuthHeader("override", "x-goog-api-key"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusCreated || !resp.IsSuccess() {
		t.Errorf("expected 201, got %d", resp.StatusCode)
	}
}

func TestClient_Do_ErrorKeepsResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"quota"}}`))
	}))
	defer srv.Close()

	resp, err := newTestClient(t, Config{BaseURL: srv.URL}).Do(context.Background(), Request{Method: http.MethodGet, Path: "/"})
	if !IsRateLimit(err) {
		t.Fatalf("expected rate limit error, got %v", err)
	}
	if resp == nil || string(resp.Body) != `{"error":{"message":"quota"}}` {
		t.Errorf("expected response body on error, got %+v", resp)
	}
}

func TestClient_Do_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := newTestClient(t, Config{BaseURL: srv.URL}).Do(ctx, Request{Method: http.MethodGet, Path: "/"})
	if !IsTimeout(err) {
		t.Errorf("expected timeout error, got %v", err)
	}
}

func TestClient_Do_AbsolutePathIgnoresBaseURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	c := newTestClient(t, Config{BaseURL: "http://should-not-be-used.invalid"})
	if _, err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: srv.URL + "/direct"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_Do_Retry(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	retryCfg := DefaultRetryConfig()
	retryCfg.InitialBackoff = time.Millisecond

	resp, err := newTestClient(t, Config{BaseURL: srv.URL, Retry: retryCfg}).Do(context.Background(), Request{Method: http.MethodGet, Path: "/"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if got := atomic.LoadInt32(&attempts); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestClient_Do_RetrySkipsClientErrors(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	retryCfg := DefaultRetryConfig()
	retryCfg.InitialBackoff = time.Millisecond
	_, _ = newTestClient(t, Config{BaseURL: srv.URL, Retry: retryCfg}).Do(context.Background(), Request{Method: http.MethodGet, Path: "/"})
	if got := atomic.LoadInt32(&attempts); got != 1 {
		t.Errorf("expected single attempt for 400, got %d", got)
	}
}

func TestClient_Do_CircuitBreaker(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cbCfg := DefaultCircuitBreakerConfig("gemini")
	cbCfg.MaxFailures = 2
	c := newTestClient(t, Config{BaseURL: srv.URL, CircuitBreaker: cbCfg})

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, _ = c.Do(ctx, Request{Method: http.MethodGet, Path: "/"})
	}
	_, err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/"})
	if !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
	if got := atomic.LoadInt32(&attempts); got != 2 {
		t.Errorf("expected 2 requests to reach the server, got %d", got)
	}
}

func TestEncodeBody(t *testing.T) {
	tests := []struct {
		name string
		body any
		ct   string
	}{
		{"nil", nil, ""},
		{"string", "hello", "text/plain"},
		{"bytes", []byte{1, 2}, ""},
		{"json", map[string]int{"a": 1}, "application/json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ct, err := encodeBody(tt.body)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ct != tt.ct {
				t.Errorf("expected content type %q, got %q", tt.ct, ct)
			}
		})
	}
}
