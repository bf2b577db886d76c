package kafka

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/kbukum/voxscribe/component"
	"github.com/kbukum/voxscribe/logger"
)

// Producer is what the component manages.
type Producer interface {
	Stats() WriterMetrics
	Close() error
}

// Component owns the producer lifecycle.
type Component struct {
	cfg      Config
	log      *logger.Logger
	dial     func(ctx context.Context, network, addr string) (net.Conn, error)
	mu       sync.Mutex
	producer Producer
	running  bool
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent creates the component. SetProducer must be called before
// Start.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.Nop()
	}
	d := &net.Dialer{Timeout: cfg.DialTimeout}
	return &Component{cfg: cfg, log: log.WithComponent("kafka"), dial: d.DialContext}
}

func (c *Component) SetProducer(p Producer) {
	c.mu.Lock()
	c.producer = p
	c.mu.Unlock()
}

func (c *Component) Name() string { return "kafka" }

// Start marks the component running. The writer connects on first write.
func (c *Component) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.producer == nil {
		return fmt.Errorf("kafka: no producer set")
	}
	c.running = true
	c.log.Info("kafka component started", map[string]interface{}{"topic": c.cfg.Topic})
	return nil
}

// Stop flushes and closes the producer.
func (c *Component) Stop(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return nil
	}
	c.running = false
	return c.producer.Close()
}

// Health dials the first broker and reports write errors since the last
// check as degraded.
func (c *Component) Health(ctx context.Context) component.Health {
	c.mu.Lock()
	running, p := c.running, c.producer
	c.mu.Unlock()

	if !running {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "kafka not started"}
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	conn, err := c.dial(ctx, "tcp", c.cfg.Brokers[0])
	if err != nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: fmt.Sprintf("broker unreachable: %v", err)}
	}
	_ = conn.Close()

	if m := p.Stats(); m.Errors > 0 {
		return component.Health{Name: c.Name(), Status: component.StatusDegraded, Message: fmt.Sprintf("%d write errors", m.Errors)}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "Kafka",
		Type:    "kafka",
		Details: fmt.Sprintf("brokers=%v topic=%s", c.cfg.Brokers, c.cfg.Topic),
	}
}
