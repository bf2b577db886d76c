// Package gemini transcribes audio with a single generateContent call,
// sending the prompt and the base64 audio as inline data.
package gemini

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kbukum/voxscribe/httpclient"
	"github.com/kbukum/voxscribe/httpclient/rest"
	"github.com/kbukum/voxscribe/provider"
	"github.com/kbukum/voxscribe/transcription"
	"github.com/kbukum/voxscribe/util"
)

const (
	// ProviderName is the registered name of this backend.
	ProviderName = "gemini"

	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-1.5-flash"
	defaultTimeout = 120 * time.Second
	apiKeyHeader   = "x-goog-api-key"
)

// ErrNoAPIKey is returned by New when no key is configured.
var ErrNoAPIKey = errors.New("gemini: GEMINI_API_KEY is not set")

// Config configures the backend. APIKey is read from GEMINI_API_KEY.
type Config struct {
	APIKey  string        `yaml:"-" mapstructure:"api_key"`
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	Model   string        `yaml:"model" mapstructure:"model"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// String never prints the key.
func (c Config) String() string {
	return fmt.Sprintf("gemini{base_url=%s model=%s api_key=%s}", c.BaseURL, c.Model, util.MaskSecret(c.APIKey, 4))
}

// Provider calls the generateContent endpoint.
type Provider struct {
	cfg    Config
	client *rest.Client
}

// New creates the backend.
func New(cfg Config) (*Provider, error) {
	cfg.ApplyDefaults()
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	client, err := rest.New(httpclient.Config{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Auth:    httpclient.APIKeyAuthHeader(cfg.APIKey, apiKeyHeader),
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	return &Provider{cfg: cfg, client: client}, nil
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

func (p *Provider) Name() string { return ProviderName }

// IsAvailable reports whether a key is configured. No request is made.
func (p *Provider) IsAvailable(context.Context) bool { return p.cfg.APIKey != "" }

// Execute makes exactly one content-generation call.
func (p *Provider) Execute(ctx context.Context, req transcription.Request) (*transcription.Result, error) {
	model := p.cfg.Model
	if req.Model != "" {
		model = req.Model
	}
	prompt := req.Prompt
	if prompt == "" {
		prompt = transcription.DefaultPrompt
	}

	body := generateRequest{Contents: []content{{
		Role: "user",
		Parts: []part{
			{Text: prompt},
			{InlineData: &inlineData{
				MimeType: req.MimeType,
				Data:     base64.StdEncoding.EncodeToString(req.Audio),
			}},
		},
	}}}

	resp, err := rest.Post[generateResponse](ctx, p.client, "/v1beta/models/"+model+":generateContent", body)
	if err != nil {
		if resp != nil && resp.Data.Error != nil {
			return nil, fmt.Errorf("gemini: %s: %w", resp.Data.Error.Message, err)
		}
		return nil, fmt.Errorf("gemini: %w", err)
	}
	return resp.Data.result()
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (r *generateResponse) result() (*transcription.Result, error) {
	if r.PromptFeedback != nil && r.PromptFeedback.BlockReason != "" {
		return nil, fmt.Errorf("gemini: prompt blocked: %s", r.PromptFeedback.BlockReason)
	}
	if len(r.Candidates) == 0 {
		return nil, errors.New("gemini: response has no candidates")
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return &transcription.Result{Text: b.String()}, nil
}
