package redis

import (
	"context"
	"fmt"

	"github.com/kbukum/voxscribe/component"
	"github.com/kbukum/voxscribe/logger"
)

// Component owns the Redis client lifecycle. The client exists from
// construction so stores can be wired before Start; Start verifies it.
type Component struct {
	client *Client
	cfg    Config
	log    *logger.Logger
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent creates the component and its client.
func NewComponent(cfg Config, log *logger.Logger) (*Component, error) {
	if log == nil {
		log = logger.Nop()
	}
	log = log.WithComponent("redis")
	cfg.ApplyDefaults()
	client, err := New(cfg, log)
	if err != nil {
		return nil, err
	}
	return &Component{client: client, cfg: cfg, log: log}, nil
}

// Client returns the managed client.
func (c *Component) Client() *Client { return c.client }

func (c *Component) Name() string { return "redis" }

// Start pings the server.
func (c *Component) Start(ctx context.Context) error {
	if err := c.client.Ping(ctx); err != nil {
		return fmt.Errorf("redis start: %w", err)
	}
	c.log.Info("redis component started", map[string]interface{}{"addr": c.cfg.Addr})
	return nil
}

func (c *Component) Stop(_ context.Context) error {
	return c.client.Close()
}

func (c *Component) Health(ctx context.Context) component.Health {
	if err := c.client.Ping(ctx); err != nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: err.Error()}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "Redis",
		Type:    "redis",
		Details: fmt.Sprintf("%s db=%d pool=%d", c.cfg.Addr, c.cfg.DB, c.cfg.PoolSize),
	}
}
