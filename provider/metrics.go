package provider

import (
	"context"
	"time"

	"github.com/kbukum/voxscribe/observability"
)

// WithMetrics records one operation sample per call, labeled with the
// backend, operation and Outcome. Failures also count as errors of that
// outcome.
func WithMetrics[I, O any](metrics *observability.Metrics, operation string) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		return &metricsRR[I, O]{inner: inner, metrics: metrics, operation: operation}
	}
}

type metricsRR[I, O any] struct {
	inner     RequestResponse[I, O]
	metrics   *observability.Metrics
	operation string
}

func (m *metricsRR[I, O]) Name() string                         { return m.inner.Name() }
func (m *metricsRR[I, O]) IsAvailable(ctx context.Context) bool { return m.inner.IsAvailable(ctx) }

func (m *metricsRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	start := time.Now()
	output, err := m.inner.Execute(ctx, input)

	outcome := Outcome(err)
	if err != nil {
		m.metrics.RecordError(ctx, outcome, m.inner.Name())
	}
	m.metrics.RecordOperation(ctx, m.inner.Name(), m.operation, outcome, time.Since(start))
	return output, err
}
