package main

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/kbukum/voxscribe/bootstrap"
)

const testAPIKey = "AIza-never-shown-0123456789abcdef"

// newServedApp wires the full server against a fake Gemini endpoint that
// rejects every key.
func newServedApp(t *testing.T) (*httptest.Server, *int32) {
	t.Helper()
	var sawKey int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-goog-api-key") == testAPIKey {
			atomic.AddInt32(&sawKey, 1)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"code":401,"message":"API key not valid. Please pass a valid API key.","status":"UNAUTHENTICATED"}}`)
	}))
	t.Cleanup(upstream.Close)

	path := writeFile(t, t.TempDir(), "config.yml", "name: voxscribe\ngemini:\n  base_url: "+upstream.URL+"\n")
	t.Setenv("GEMINI_API_KEY", testAPIKey)
	cfg, err := loadConfig(path, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	app, err := bootstrap.NewApp(cfg, bootstrap.WithSummaryOutput(io.Discard))
	if err != nil {
		t.Fatalf("app: %v", err)
	}
	srv, err := wire(app)
	if err != nil {
		t.Fatalf("wire: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, &sawKey
}

func TestAPIKeyNeverServed(t *testing.T) {
	ts, sawKey := newServedApp(t)

	get := func(t *testing.T, path string) string {
		t.Helper()
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GET %s: status %d", path, resp.StatusCode)
		}
		return string(body)
	}

	for _, path := range []string{"/", "/info", "/version", "/static/app.js"} {
		t.Run(path, func(t *testing.T) {
			if strings.Contains(get(t, path), testAPIKey) {
				t.Errorf("%s exposes the API key", path)
			}
		})
	}

	t.Run("failed transcription", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, _ := mw.CreateFormFile("audio", "clip.mp3")
		_, _ = fw.Write([]byte("ID3 audio"))
		_ = mw.Close()

		resp, err := http.Post(ts.URL+"/api/transcribe", mw.FormDataContentType(), &buf)
		if err != nil {
			t.Fatalf("POST: %v", err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)

		if resp.StatusCode != http.StatusServiceUnavailable {
			t.Fatalf("expected 503 for a rejected key, got %d: %s", resp.StatusCode, body)
		}
		if atomic.LoadInt32(sawKey) != 1 {
			t.Error("expected the key to reach the backend exactly once")
		}
		if strings.Contains(string(body), testAPIKey) {
			t.Error("error response exposes the API key")
		}
	})
}
