// Package whisper transcribes audio with a self-hosted faster-whisper
// sidecar exposing POST /transcribe and GET /health.
package whisper

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/kbukum/voxscribe/httpclient"
	"github.com/kbukum/voxscribe/httpclient/rest"
	"github.com/kbukum/voxscribe/provider"
	"github.com/kbukum/voxscribe/transcription"
)

const (
	// ProviderName is the registered name of this backend.
	ProviderName = "whisper"

	defaultURL     = "http://localhost:8387"
	defaultModel   = "base"
	defaultTimeout = 120 * time.Second
)

// Config configures the sidecar client.
type Config struct {
	URL         string        `yaml:"url" mapstructure:"url"`
	Model       string        `yaml:"model" mapstructure:"model"`
	Device      string        `yaml:"device" mapstructure:"device"`
	ComputeType string        `yaml:"compute_type" mapstructure:"compute_type"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

func (c *Config) ApplyDefaults() {
	if c.URL == "" {
		c.URL = defaultURL
	}
	if c.Model == "" {
		c.Model = defaultModel
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// Provider talks to the sidecar.
type Provider struct {
	cfg    Config
	client *rest.Client
}

// New creates the backend. It does not contact the sidecar.
func New(cfg Config) (*Provider, error) {
	cfg.ApplyDefaults()
	client, err := rest.New(httpclient.Config{BaseURL: cfg.URL, Timeout: cfg.Timeout})
	if err != nil {
		return nil, fmt.Errorf("whisper: %w", err)
	}
	return &Provider{cfg: cfg, client: client}, nil
}

// Factory builds a Provider from a generic config map.
func Factory() provider.Factory[transcription.Provider] {
	return func(m map[string]any) (transcription.Provider, error) {
		var cfg Config
		cfg.URL, _ = m["url"].(string)
		cfg.Model, _ = m["model"].(string)
		cfg.Device, _ = m["device"].(string)
		cfg.ComputeType, _ = m["compute_type"].(string)
		cfg.Timeout, _ = m["timeout"].(time.Duration)
		return New(cfg)
	}
}

func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks the sidecar's health endpoint.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	resp, err := rest.Get[map[string]any](ctx, p.client, "/health")
	return err == nil && resp.StatusCode == http.StatusOK
}

// Execute posts the audio as multipart form field "audio".
func (p *Provider) Execute(ctx context.Context, req transcription.Request) (*transcription.Result, error) {
	model := p.cfg.Model
	if req.Model != "" {
		model = req.Model
	}
	fields := map[string]string{"model": model}
	if req.Language != "" {
		fields["language"] = req.Language
	}
	if p.cfg.Device != "" {
		fields["device"] = p.cfg.Device
	}
	if p.cfg.ComputeType != "" {
		fields["compute_type"] = p.cfg.ComputeType
	}

	filename := req.Filename
	if filename == "" {
		filename = "audio" + transcription.ExtensionFor(req.MimeType)
	}
	body := &httpclient.MultipartBody{
		Fields: fields,
		Files: []httpclient.FileField{{
			FieldName:   transcription.FormField,
			FileName:    filename,
			ContentType: req.MimeType,
			Data:        req.Audio,
		}},
	}

	resp, err := rest.Post[sidecarResponse](ctx, p.client, "/transcribe", body)
	if err != nil {
		return nil, fmt.Errorf("whisper: %w", err)
	}
	return resp.Data.result(), nil
}

type sidecarResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

func (r *sidecarResponse) result() *transcription.Result {
	res := &transcription.Result{Text: r.Text, Language: r.Language}
	for _, s := range r.Segments {
		res.Segments = append(res.Segments, transcription.Segment{Start: s.Start, End: s.End, Text: s.Text})
	}
	if n := len(r.Segments); n > 0 {
		res.Duration = r.Segments[n-1].End
	}
	return res
}
