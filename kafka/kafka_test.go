package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/kbukum/voxscribe/component"
)

func TestConfig(t *testing.T) {
	var c Config
	c.ApplyDefaults()
	if c.Topic != DefaultTopic || c.Retries != 3 || c.RequiredAcks != -1 {
		t.Errorf("defaults = %+v", c)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("disabled config should validate: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad sasl", func(c *Config) { c.EnableSASL, c.SASLMechanism, c.Username = true, "GSSAPI", "u" }},
		{"sasl without user", func(c *Config) { c.EnableSASL, c.SASLMechanism = true, "PLAIN" }},
		{"bad compression", func(c *Config) { c.Compression = "brotli" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Config{Enabled: true}
			c.ApplyDefaults()
			tt.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestErrorClassification(t *testing.T) {
	if !IsConnectionError(errors.New("dial tcp 127.0.0.1:9092: connect: connection refused")) {
		t.Error("connection refused not classified")
	}
	if IsRetryableError(errors.New("[3] Unknown Topic Or Partition: unknown topic")) {
		t.Error("unknown topic should not be retried")
	}
	if !IsRetryableError(errors.New("request timed out")) {
		t.Error("timeout should be retried")
	}
	if IsRetryableError(nil) || IsConnectionError(nil) {
		t.Error("nil classified as error")
	}
}

func TestEventToMessage(t *testing.T) {
	ev := Event{ID: "e1", Type: EventTranscriptUpdated, Source: "voxscribe", Subject: "sess", Timestamp: time.Unix(10, 0)}
	msg, err := ev.ToMessage("topic-a")
	if err != nil {
		t.Fatal(err)
	}
	if msg.Topic != "topic-a" || string(msg.Key) != "sess" {
		t.Errorf("msg = %+v", msg)
	}
	var back Event
	if err := json.Unmarshal(msg.Value, &back); err != nil || back.Type != EventTranscriptUpdated {
		t.Errorf("value = %s, %v", msg.Value, err)
	}
}

type fakeProducer struct {
	errors int64
	closed bool
}

func (f *fakeProducer) Stats() WriterMetrics { return WriterMetrics{Errors: f.errors} }
func (f *fakeProducer) Close() error         { f.closed = true; return nil }

func TestComponent(t *testing.T) {
	c := NewComponent(Config{Enabled: true}, nil)
	if err := c.Start(context.Background()); err == nil {
		t.Fatal("start without producer should fail")
	}

	p := &fakeProducer{}
	c.SetProducer(p)
	c.dial = func(ctx context.Context, network, addr string) (net.Conn, error) {
		a, b := net.Pipe()
		_ = b.Close()
		return a, nil
	}
	if err := c.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if h := c.Health(context.Background()); h.Status != component.StatusHealthy {
		t.Errorf("health = %+v", h)
	}
	p.errors = 2
	if h := c.Health(context.Background()); h.Status != component.StatusDegraded {
		t.Errorf("health = %+v", h)
	}
	c.dial = func(context.Context, string, string) (net.Conn, error) { return nil, errors.New("refused") }
	if h := c.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Errorf("health = %+v", h)
	}
	if err := c.Stop(context.Background()); err != nil || !p.closed {
		t.Errorf("stop err=%v closed=%v", err, p.closed)
	}
}
