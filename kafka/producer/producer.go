package producer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/kbukum/voxscribe/kafka"
	"github.com/kbukum/voxscribe/logger"
	"github.com/kbukum/voxscribe/resilience"
)

// ErrClosed is returned by writes after Close.
var ErrClosed = errors.New("kafka producer is closed")

// Writer is the subset of *kafkago.Writer the producer uses.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Stats() kafkago.WriterStats
	Close() error
}

// Producer writes messages with retry on transient errors. The writer
// connects lazily, so a missing broker does not stop startup.
type Producer struct {
	cfg    kafka.Config
	log    *logger.Logger
	retry  resilience.RetryConfig
	mu     sync.RWMutex
	writer Writer
	closed bool
}

// New creates a producer over a kafka-go Writer.
func New(cfg kafka.Config, log *logger.Logger) (*Producer, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("kafka producer config: %w", err)
	}
	if log == nil {
		log = logger.Nop()
	}
	transport, err := kafka.CreateTransport(&cfg)
	if err != nil {
		return nil, fmt.Errorf("kafka producer transport: %w", err)
	}

	p := newProducer(cfg, log, nil)
	p.writer = &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Transport:    transport,
		Balancer:     &kafkago.Hash{},
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafkago.RequiredAcks(cfg.RequiredAcks),
		Compression:  kafka.ResolveCompression(cfg.Compression),
		ErrorLogger: kafkago.LoggerFunc(func(msg string, args ...interface{}) {
			p.log.Error("writer: "+fmt.Sprintf(msg, args...))
		}),
	}
	p.log.Info("kafka producer initialized", map[string]interface{}{
		"brokers":     cfg.Brokers,
		"topic":       cfg.Topic,
		"compression": cfg.Compression,
	})
	return p, nil
}

// NewWithWriter creates a producer over any Writer.
func NewWithWriter(cfg kafka.Config, w Writer, log *logger.Logger) *Producer {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.Nop()
	}
	return newProducer(cfg, log, w)
}

func newProducer(cfg kafka.Config, log *logger.Logger, w Writer) *Producer {
	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = cfg.Retries
	retry.RetryIf = kafka.IsRetryableError
	return &Producer{cfg: cfg, log: log.WithComponent("kafka.producer"), retry: retry, writer: w}
}

// Config returns the effective configuration.
func (p *Producer) Config() kafka.Config { return p.cfg }

// WriteMessages writes msgs, retrying transient failures.
func (p *Producer) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	p.mu.RLock()
	w, closed := p.writer, p.closed
	p.mu.RUnlock()
	if closed {
		return ErrClosed
	}

	retry := p.retry
	retry.OnRetry = func(attempt int, err error, _ time.Duration) {
		p.log.WithContext(ctx).Warn("kafka write retry", map[string]interface{}{
			"attempt":    attempt,
			"connection": kafka.IsConnectionError(err),
			"error":      err.Error(),
		})
	}
	if err := resilience.RetryFunc(ctx, retry, func() error {
		return w.WriteMessages(ctx, msgs...)
	}); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

// Stats returns writer metrics since the previous call.
func (p *Producer) Stats() kafka.WriterMetrics {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.writer == nil {
		return kafka.WriterMetrics{}
	}
	return kafka.CollectWriterMetrics(p.writer.Stats())
}

// Closed reports whether Close was called.
func (p *Producer) Closed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.closed
}

// Close flushes and closes the writer. It is safe to call twice.
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	p.log.Info("kafka producer closing")
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
