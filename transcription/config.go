package transcription

import (
	"fmt"
	"time"

	"github.com/kbukum/voxscribe/util"
)

// Config selects the backend and holds limits shared by all of them.
type Config struct {
	// Provider is gemini, openai or whisper.
	Provider      string `yaml:"provider" mapstructure:"provider"`
	MaxUploadSize string `yaml:"max_upload_size" mapstructure:"max_upload_size"`
	Prompt        string `yaml:"prompt" mapstructure:"prompt"`
	Language      string `yaml:"language" mapstructure:"language"`

	// CircuitBreaker fails fast after repeated backend errors. Off by
	// default; calls are never retried either way.
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker" mapstructure:"circuit_breaker"`
}

// CircuitBreakerConfig configures the optional breaker.
type CircuitBreakerConfig struct {
	Enabled     bool          `yaml:"enabled" mapstructure:"enabled"`
	MaxFailures int           `yaml:"max_failures" mapstructure:"max_failures"`
	OpenFor     time.Duration `yaml:"open_for" mapstructure:"open_for"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = "gemini"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = util.FormatSize(DefaultMaxUploadSize)
	}
	if c.Prompt == "" {
		c.Prompt = DefaultPrompt
	}
	if c.CircuitBreaker.MaxFailures <= 0 {
		c.CircuitBreaker.MaxFailures = 5
	}
	if c.CircuitBreaker.OpenFor <= 0 {
		c.CircuitBreaker.OpenFor = 30 * time.Second
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	switch c.Provider {
	case "gemini", "openai", "whisper":
	default:
		return fmt.Errorf("transcription: unknown provider %q", c.Provider)
	}
	if c.MaxBytes() <= 0 {
		return fmt.Errorf("transcription: invalid max_upload_size %q", c.MaxUploadSize)
	}
	return nil
}

// MaxBytes returns the upload limit in bytes.
func (c *Config) MaxBytes() int64 {
	return util.ParseSize(c.MaxUploadSize, DefaultMaxUploadSize)
}
