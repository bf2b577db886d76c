package producer

import (
	"context"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/kbukum/voxscribe/provider"
)

// SinkProvider exposes a Producer as a provider.Sink, so it composes with
// provider.WithSinkResilience.
type SinkProvider struct {
	name     string
	producer *Producer
}

var _ provider.Sink[kafkago.Message] = (*SinkProvider)(nil)

func NewSinkProvider(name string, producer *Producer) *SinkProvider {
	return &SinkProvider{name: name, producer: producer}
}

func (p *SinkProvider) Name() string { return p.name }

// IsAvailable is false once the producer is closed.
func (p *SinkProvider) IsAvailable(_ context.Context) bool { return !p.producer.Closed() }

func (p *SinkProvider) Send(ctx context.Context, msg kafkago.Message) error {
	if err := p.producer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka sink send: %w", err)
	}
	return nil
}

// Producer returns the wrapped producer.
func (p *SinkProvider) Producer() *Producer { return p.producer }
