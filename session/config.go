package session

import (
	"errors"
	"time"
)

const DefaultCookieName = "voxscribe_session"

// Config configures session cookies.
type Config struct {
	// Secret signs session tokens. When empty a random secret is generated
	// at startup, so sessions do not survive a restart.
	Secret     string        `yaml:"-" mapstructure:"secret"`
	CookieName string        `yaml:"cookie_name" mapstructure:"cookie_name"`
	TTL        time.Duration `yaml:"ttl" mapstructure:"ttl"`
	Secure     bool          `yaml:"secure" mapstructure:"secure"`
	Issuer     string        `yaml:"issuer" mapstructure:"issuer"`
	// RecordingTimeout ends a voice recording that has received no
	// recognizer event for this long.
	RecordingTimeout time.Duration `yaml:"recording_timeout" mapstructure:"recording_timeout"`
}

func (c *Config) ApplyDefaults() {
	if c.CookieName == "" {
		c.CookieName = DefaultCookieName
	}
	if c.TTL <= 0 {
		c.TTL = 24 * time.Hour
	}
	if c.Issuer == "" {
		c.Issuer = "voxscribe"
	}
	if c.RecordingTimeout == 0 {
		c.RecordingTimeout = 2 * time.Minute
	}
}

func (c *Config) Validate() error {
	if c.Secret != "" && len(c.Secret) < 16 {
		return errors.New("session: secret must be at least 16 characters")
	}
	if c.RecordingTimeout < 0 {
		return errors.New("session: recording_timeout must not be negative")
	}
	return nil
}
