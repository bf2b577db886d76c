package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	apperrors "github.com/kbukum/voxscribe/errors"
	"github.com/kbukum/voxscribe/notice"
	"github.com/kbukum/voxscribe/transcript"
	"github.com/kbukum/voxscribe/transcription"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", "name: voxscribe\nserver:\n  port: 4000\ntranscription:\n  provider: whisper\n")
	t.Setenv("GEMINI_API_KEY", "AIza-test-key")

	cfg, err := loadConfig(path, filepath.Join(dir, "missing.env"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.Server.Port != 4000 {
		t.Errorf("expected port 4000, got %d", cfg.Server.Port)
	}
	if cfg.Transcription.Provider != "whisper" {
		t.Errorf("expected whisper, got %q", cfg.Transcription.Provider)
	}
	if cfg.Gemini.APIKey != "AIza-test-key" {
		t.Error("expected GEMINI_API_KEY to reach gemini.api_key")
	}
	if cfg.Transcription.MaxBytes() != transcription.DefaultMaxUploadSize {
		t.Errorf("expected the 15MB default, got %d", cfg.Transcription.MaxBytes())
	}
	if strings.Contains(cfg.Gemini.String(), "AIza-test-key") {
		t.Error("expected the key to be masked")
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "nope.yml"), ""); err == nil {
		t.Fatal("expected an error for a missing explicit config file")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"redis store without redis", func(c *Config) { c.Store.Backend = transcript.BackendRedis }, true},
		{"redis store with redis", func(c *Config) {
			c.Store.Backend = transcript.BackendRedis
			c.Redis.Enabled = true
		}, false},
		{"unknown provider", func(c *Config) { c.Transcription.Provider = "nope" }, true},
		{"kafka without brokers", func(c *Config) { c.Kafka.Enabled = true }, true},
		{"negative recording timeout", func(c *Config) { c.Session.RecordingTimeout = -time.Second }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			tt.mutate(cfg)
			cfg.ApplyDefaults()
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("wantErr=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

type stubAction struct {
	text string
	err  error
}

func (a stubAction) MaxBytes() int64 { return 16 }

func (a stubAction) Transcribe(context.Context, *transcription.Upload) (string, error) {
	return a.text, a.err
}

func TestTranscribeFile(t *testing.T) {
	dir := t.TempDir()
	small := writeFile(t, dir, "clip.mp3", "ID3 audio")
	large := writeFile(t, dir, "long.mp3", strings.Repeat("a", 17))

	tests := []struct {
		name       string
		file       string
		action     stubAction
		out        string
		wantErr    apperrors.ErrorCode
		wantStdout string
		wantNotice string
	}{
		{"prints and saves", small, stubAction{text: "hello\nworld"}, dir, "", "hello\nworld\n", notice.AudioTranscribed},
		{"too large", large, stubAction{text: "unused"}, "", apperrors.ErrCodeFileTooLarge, "", notice.FileTooLarge},
		{"backend failure", small, stubAction{err: apperrors.ExternalServiceError("gemini", errors.New("boom"))}, "", apperrors.ErrCodeExternalService, "", notice.AudioFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := transcribeFile(context.Background(), tt.action, transcribeOptions{
				file: tt.file, out: tt.out, stdout: &stdout, stderr: &stderr,
			})
			if tt.wantErr != "" {
				if !apperrors.Is(err, tt.wantErr) {
					t.Fatalf("expected %s, got %v", tt.wantErr, err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if stdout.String() != tt.wantStdout {
				t.Errorf("stdout = %q, want %q", stdout.String(), tt.wantStdout)
			}
			if !strings.Contains(stderr.String(), tt.wantNotice) {
				t.Errorf("expected notice %q in %q", tt.wantNotice, stderr.String())
			}
			if tt.out != "" {
				got, err := os.ReadFile(filepath.Join(tt.out, "transcript.txt"))
				if err != nil {
					t.Fatalf("read transcript.txt: %v", err)
				}
				if string(got) != tt.action.text {
					t.Errorf("transcript.txt = %q", got)
				}
			}
		})
	}
}
