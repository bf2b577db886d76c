package transcript

import (
	"fmt"
	"time"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config selects the slot backend.
type Config struct {
	Backend string        `yaml:"backend" mapstructure:"backend"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
	// EncryptionKey seals transcript text at rest when set.
	EncryptionKey string `yaml:"-" mapstructure:"encryption_key"`
}

func (c *Config) ApplyDefaults() {
	if c.Backend == "" {
		c.Backend = BackendMemory
	}
	if c.TTL <= 0 {
		c.TTL = 24 * time.Hour
	}
}

func (c *Config) Validate() error {
	if c.Backend != BackendMemory && c.Backend != BackendRedis {
		return fmt.Errorf("store: unknown backend %q", c.Backend)
	}
	return nil
}
