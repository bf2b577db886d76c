package provider

import (
	"context"

	"github.com/kbukum/voxscribe/logger"
	"github.com/kbukum/voxscribe/observability"
)

// SpanAttributes derives span attributes from a call's input, such as the
// audio size of a transcription request.
type SpanAttributes[I any] func(input I) map[string]any

// WithTracing runs each call in a "{service}.{operation}" span tagged with
// the backend, the request and session ids from ctx, the attributes from
// attrs and, on failure, the call's Outcome.
func WithTracing[I, O any](service, operation string, attrs SpanAttributes[I]) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		return &tracingRR[I, O]{inner: inner, service: service, operation: operation, attrs: attrs}
	}
}

type tracingRR[I, O any] struct {
	inner     RequestResponse[I, O]
	service   string
	operation string
	attrs     SpanAttributes[I]
}

func (t *tracingRR[I, O]) Name() string                         { return t.inner.Name() }
func (t *tracingRR[I, O]) IsAvailable(ctx context.Context) bool { return t.inner.IsAvailable(ctx) }

func (t *tracingRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	ctx, span := observability.StartSpan(ctx, t.service+"."+t.operation)
	defer span.End()

	observability.SetSpanAttribute(ctx, observability.AttrServiceName, t.service)
	observability.SetSpanAttribute(ctx, observability.AttrOperationName, t.operation)
	observability.SetSpanAttribute(ctx, observability.AttrProvider, t.inner.Name())
	if id, ok := ctx.Value(logger.RequestIDKey).(string); ok {
		observability.SetSpanAttribute(ctx, observability.AttrRequestID, id)
	}
	if id, ok := ctx.Value(logger.SessionIDKey).(string); ok {
		observability.SetSpanAttribute(ctx, observability.AttrSessionID, id)
	}
	if t.attrs != nil {
		for k, v := range t.attrs(input) {
			observability.SetSpanAttribute(ctx, k, v)
		}
	}

	output, err := t.inner.Execute(ctx, input)
	if err != nil {
		observability.SetSpanAttribute(ctx, observability.AttrOutcome, Outcome(err))
		observability.SetSpanError(ctx, err)
	}
	return output, err
}
