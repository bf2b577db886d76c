package provider

import (
	"context"
	"errors"

	apperrors "github.com/kbukum/voxscribe/errors"
	"github.com/kbukum/voxscribe/resilience"
)

// ResilienceConfig bundles optional policies. Nil fields are skipped.
type ResilienceConfig struct {
	CircuitBreaker *resilience.CircuitBreakerConfig
	Retry          *resilience.RetryConfig
}

// IsEmpty returns true if no resilience policies are configured.
func (c ResilienceConfig) IsEmpty() bool {
	return c.CircuitBreaker == nil && c.Retry == nil
}

// ResilienceState holds the primitives built from a ResilienceConfig.
type ResilienceState struct {
	cb       *resilience.CircuitBreaker
	retryCfg *resilience.RetryConfig
}

// BuildResilience returns nil for an empty config.
func BuildResilience(cfg ResilienceConfig) *ResilienceState {
	if cfg.IsEmpty() {
		return nil
	}
	s := &ResilienceState{retryCfg: cfg.Retry}
	if cfg.CircuitBreaker != nil {
		s.cb = resilience.NewCircuitBreaker(*cfg.CircuitBreaker)
	}
	return s
}

// WithResilience wraps p in CircuitBreaker then Retry. An empty config
// returns p unchanged.
func WithResilience[I, O any](p RequestResponse[I, O], cfg ResilienceConfig) RequestResponse[I, O] {
	if cfg.IsEmpty() {
		return p
	}
	return &resilientRR[I, O]{inner: p, state: BuildResilience(cfg)}
}

// WithSinkResilience applies the same chain to Sink.Send.
func WithSinkResilience[I any](p Sink[I], cfg ResilienceConfig) Sink[I] {
	if cfg.IsEmpty() {
		return p
	}
	return &resilientSink[I]{inner: p, state: BuildResilience(cfg)}
}

type resilientRR[I, O any] struct {
	inner RequestResponse[I, O]
	state *ResilienceState
}

func (r *resilientRR[I, O]) Name() string                         { return r.inner.Name() }
func (r *resilientRR[I, O]) IsAvailable(ctx context.Context) bool { return r.inner.IsAvailable(ctx) }

func (r *resilientRR[I, O]) Execute(ctx context.Context, input I) (O, error) {
	return ExecuteWithResilience(ctx, r.state, func() (O, error) {
		return r.inner.Execute(ctx, input)
	})
}

type resilientSink[I any] struct {
	inner Sink[I]
	state *ResilienceState
}

func (r *resilientSink[I]) Name() string                         { return r.inner.Name() }
func (r *resilientSink[I]) IsAvailable(ctx context.Context) bool { return r.inner.IsAvailable(ctx) }

func (r *resilientSink[I]) Send(ctx context.Context, input I) error {
	_, err := ExecuteWithResilience(ctx, r.state, func() (struct{}, error) {
		return struct{}{}, r.inner.Send(ctx, input)
	})
	return err
}

// ExecuteWithResilience runs fn through CircuitBreaker then Retry.
// Breaker and context failures come back as AppError.
func ExecuteWithResilience[T any](ctx context.Context, s *ResilienceState, fn func() (T, error)) (T, error) {
	if s == nil {
		return fn()
	}

	call := fn
	if s.retryCfg != nil {
		retryCfg := *s.retryCfg
		call = func() (T, error) {
			return resilience.Retry(ctx, retryCfg, fn)
		}
	}

	if s.cb == nil {
		result, err := call()
		return result, wrapResilienceError(err)
	}

	var result T
	var resultErr error
	cbErr := s.cb.Execute(func() error {
		result, resultErr = call()
		return resultErr
	})
	if cbErr != nil && resultErr == nil {
		return result, wrapResilienceError(cbErr)
	}
	return result, wrapResilienceError(resultErr)
}

func wrapResilienceError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperrors.AsAppError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, resilience.ErrCircuitOpen):
		return apperrors.ServiceUnavailable("transcription provider").WithCause(err)
	case errors.Is(err, context.Canceled):
		return apperrors.Timeout("request canceled").WithCause(err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Timeout("deadline exceeded").WithCause(err)
	default:
		return err
	}
}
