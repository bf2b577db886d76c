package openai

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kbukum/voxscribe/transcription"
)

func TestExecute(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path != "/v1/audio/transcriptions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("authorization = %q", got)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		data, _ := io.ReadAll(f)
		if string(data) != "audio-bytes" {
			t.Errorf("audio = %q", data)
		}
		if !strings.HasPrefix(hdr.Filename, "audio.") {
			t.Errorf("filename = %q", hdr.Filename)
		}
		if got := r.FormValue("model"); got != "whisper-1" {
			t.Errorf("model = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"task":"transcribe","language":"english","duration":2.5,"text":"hi there","segments":[{"id":0,"start":0,"end":2.5,"text":"hi there"}]}`))
	}))
	defer srv.Close()

	p, err := New(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := p.Execute(context.Background(), transcription.Request{Audio: []byte("audio-bytes"), MimeType: "audio/mpeg"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Text != "hi there" || res.Duration != 2.5 || len(res.Segments) != 1 {
		t.Errorf("result = %+v", res)
	}
	if calls != 1 {
		t.Errorf("calls = %d", calls)
	}
}

func TestExecute_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"unsupported format","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	p, _ := New(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1"})
	_, err := p.Execute(context.Background(), transcription.Request{Audio: []byte("x"), MimeType: "audio/wav"})
	if err == nil || !strings.Contains(err.Error(), "unsupported format") {
		t.Fatalf("err = %v", err)
	}
}

func TestNew_RequiresKey(t *testing.T) {
	if _, err := New(Config{}); err != ErrNoAPIKey {
		t.Fatalf("err = %v", err)
	}
}
