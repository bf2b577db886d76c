package producer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/kbukum/voxscribe/kafka"
	"github.com/kbukum/voxscribe/logger"
	"github.com/kbukum/voxscribe/provider"
	"github.com/kbukum/voxscribe/transcript"
)

const eventSource = "voxscribe"

// TranscriptPublisher announces transcript writes on Kafka. Events carry
// the session, source, length and time of the write, never the text.
type TranscriptPublisher struct {
	sink    provider.Sink[kafkago.Message]
	topic   string
	timeout time.Duration
	log     *logger.Logger
	wg      sync.WaitGroup
}

// NewTranscriptPublisher publishes through sink to topic.
func NewTranscriptPublisher(sink provider.Sink[kafkago.Message], topic string, log *logger.Logger) *TranscriptPublisher {
	if log == nil {
		log = logger.Nop()
	}
	return &TranscriptPublisher{
		sink:    sink,
		topic:   topic,
		timeout: 15 * time.Second,
		log:     log.WithComponent("kafka.publisher"),
	}
}

// Publish sends one transcript.updated event.
func (p *TranscriptPublisher) Publish(ctx context.Context, sessionID string, t transcript.Transcript) error {
	ev := kafka.Event{
		ID:          uuid.NewString(),
		Type:        kafka.EventTranscriptUpdated,
		Source:      eventSource,
		ContentType: "application/json",
		Version:     "1.0",
		Timestamp:   t.UpdatedAt,
		Subject:     sessionID,
		Data: map[string]any{
			"source": string(t.Source),
			"chars":  len(t.Text),
		},
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	msg, err := ev.ToMessage(p.topic)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := p.sink.Send(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

// Listener returns a transcript.Listener that publishes in the
// background. The request that wrote the transcript never waits on Kafka.
func (p *TranscriptPublisher) Listener() transcript.Listener {
	return func(ctx context.Context, sessionID string, t transcript.Transcript) {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
			defer cancel()
			if err := p.Publish(pubCtx, sessionID, t); err != nil {
				p.log.WithContext(ctx).Warn("transcript event dropped", logger.ErrorFields("publish", err))
			}
		}()
	}
}

// Wait blocks until background publishes finish.
func (p *TranscriptPublisher) Wait() { p.wg.Wait() }
