// Package openai transcribes audio through the OpenAI audio endpoint.
package openai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/kbukum/voxscribe/provider"
	"github.com/kbukum/voxscribe/transcription"
	"github.com/kbukum/voxscribe/util"
)

// ProviderName is the registered name of this backend.
const ProviderName = "openai"

var ErrNoAPIKey = errors.New("openai: OPENAI_API_KEY is not set")

// Config configures the backend. APIKey is read from OPENAI_API_KEY.
type Config struct {
	APIKey  string        `yaml:"-" mapstructure:"api_key"`
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	Model   string        `yaml:"model" mapstructure:"model"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

func (c *Config) ApplyDefaults() {
	if c.Model == "" {
		c.Model = goopenai.Whisper1
	}
	if c.Timeout <= 0 {
		c.Timeout = 120 * time.Second
	}
}

func (c Config) String() string {
	return fmt.Sprintf("openai{base_url=%s model=%s api_key=%s}", c.BaseURL, c.Model, util.MaskSecret(c.APIKey, 3))
}

// Provider wraps a go-openai client.
type Provider struct {
	cfg    Config
	client *goopenai.Client
}

// New creates the backend.
func New(cfg Config) (*Provider, error) {
	cfg.ApplyDefaults()
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	oc := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	return &Provider{cfg: cfg, client: goopenai.NewClientWithConfig(oc)}, nil
}

// Factory builds a Provider from a generic config map.
func Factory() provider.Factory[transcription.Provider] {
	return func(m map[string]any) (transcription.Provider, error) {
		var cfg Config
		cfg.APIKey, _ = m["api_key"].(string)
		cfg.BaseURL, _ = m["base_url"].(string)
		cfg.Model, _ = m["model"].(string)
		cfg.Timeout, _ = m["timeout"].(time.Duration)
		return New(cfg)
	}
}

func (p *Provider) Name() string                     { return ProviderName }
func (p *Provider) IsAvailable(context.Context) bool { return p.cfg.APIKey != "" }

// Execute uploads the audio once and maps the verbose JSON response.
func (p *Provider) Execute(ctx context.Context, req transcription.Request) (*transcription.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	model := p.cfg.Model
	if req.Model != "" {
		model = req.Model
	}
	resp, err := p.client.CreateTranscription(ctx, goopenai.AudioRequest{
		Model:    model,
		Reader:   bytes.NewReader(req.Audio),
		FilePath: "audio" + transcription.ExtensionFor(req.MimeType),
		Language: req.Language,
		Format:   goopenai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("openai: %w", err)
	}

	res := &transcription.Result{
		Text:     resp.Text,
		Language: resp.Language,
		Duration: resp.Duration,
	}
	for _, s := range resp.Segments {
		res.Segments = append(res.Segments, transcription.Segment{Start: s.Start, End: s.End, Text: s.Text})
	}
	return res, nil
}
