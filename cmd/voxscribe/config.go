package main

import (
	"fmt"

	"github.com/kbukum/voxscribe/config"
	"github.com/kbukum/voxscribe/kafka"
	"github.com/kbukum/voxscribe/observability"
	"github.com/kbukum/voxscribe/redis"
	"github.com/kbukum/voxscribe/server"
	"github.com/kbukum/voxscribe/session"
	"github.com/kbukum/voxscribe/transcript"
	"github.com/kbukum/voxscribe/transcription"
	"github.com/kbukum/voxscribe/transcription/gemini"
	"github.com/kbukum/voxscribe/transcription/openai"
	"github.com/kbukum/voxscribe/transcription/whisper"
)

const serviceName = "voxscribe"

// Config is the full application config. GEMINI_API_KEY and friends reach
// the nested sections through env binding.
type Config struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Redis         redis.Config         `yaml:"redis" mapstructure:"redis"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
	Transcription transcription.Config `yaml:"transcription" mapstructure:"transcription"`
	Gemini        gemini.Config        `yaml:"gemini" mapstructure:"gemini"`
	OpenAI        openai.Config        `yaml:"openai" mapstructure:"openai"`
	Whisper       whisper.Config       `yaml:"whisper" mapstructure:"whisper"`
	Store         transcript.Config    `yaml:"store" mapstructure:"store"`
	Session       session.Config       `yaml:"session" mapstructure:"session"`
	Kafka         kafka.Config         `yaml:"kafka" mapstructure:"kafka"`
}

func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Redis.ApplyDefaults()
	c.Observability.ApplyDefaults()
	c.Transcription.ApplyDefaults()
	c.Gemini.ApplyDefaults()
	c.OpenAI.ApplyDefaults()
	c.Whisper.ApplyDefaults()
	c.Store.ApplyDefaults()
	c.Session.ApplyDefaults()
	c.Kafka.ApplyDefaults()
}

func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	checks := []struct {
		section string
		fn      func() error
	}{
		{"server", c.Server.Validate},
		{"redis", c.Redis.Validate},
		{"observability", c.Observability.Validate},
		{"transcription", c.Transcription.Validate},
		{"store", c.Store.Validate},
		{"session", c.Session.Validate},
		{"kafka", c.Kafka.Validate},
	}
	for _, ch := range checks {
		if err := ch.fn(); err != nil {
			return fmt.Errorf("config.%s: %w", ch.section, err)
		}
	}
	if c.Store.Backend == transcript.BackendRedis && !c.Redis.Enabled {
		return fmt.Errorf("config.store: backend redis requires redis.enabled")
	}
	return nil
}

// providerSettings returns the factory config for one backend.
func (c *Config) providerSettings(name string) map[string]any {
	switch name {
	case gemini.ProviderName:
		return map[string]any{
			"api_key":  c.Gemini.APIKey,
			"base_url": c.Gemini.BaseURL,
			"model":    c.Gemini.Model,
			"timeout":  c.Gemini.Timeout,
		}
	case openai.ProviderName:
		return map[string]any{
			"api_key":  c.OpenAI.APIKey,
			"base_url": c.OpenAI.BaseURL,
			"model":    c.OpenAI.Model,
			"timeout":  c.OpenAI.Timeout,
		}
	case whisper.ProviderName:
		return map[string]any{
			"url":          c.Whisper.URL,
			"model":        c.Whisper.Model,
			"device":       c.Whisper.Device,
			"compute_type": c.Whisper.ComputeType,
			"timeout":      c.Whisper.Timeout,
		}
	}
	return nil
}

// loadConfig reads config.yml, .env and the environment. An explicitly
// named file that does not exist is an error.
func loadConfig(configPath, envPath string) (*Config, error) {
	cfg := &Config{}
	var opts []config.LoaderOption
	if configPath != "" {
		opts = append(opts, config.WithConfigFile(configPath))
	}
	if envPath != "" {
		opts = append(opts, config.WithEnvFile(envPath))
	}
	if err := config.LoadConfig(serviceName, cfg, opts...); err != nil {
		return nil, err
	}
	return cfg, nil
}
