package transcription

import (
	"github.com/kbukum/voxscribe/logger"
	"github.com/kbukum/voxscribe/observability"
	"github.com/kbukum/voxscribe/provider"
	"github.com/kbukum/voxscribe/resilience"
)

// NewManager creates a provider manager that falls back to the first
// available backend when no default is set.
func NewManager(log *logger.Logger) *provider.Manager[Provider] {
	return provider.NewManager(
		provider.NewRegistry[Provider](),
		&provider.HealthCheckSelector[Provider]{},
		log,
	)
}

// operation labels backend calls in spans and metrics.
const operation = "transcribe"

func spanAttributes(req Request) map[string]any {
	return map[string]any{
		observability.AttrAudioBytes: len(req.Audio),
		observability.AttrAudioMIME:  req.MimeType,
	}
}

// Decorate wraps p with logging, tracing, metrics and, when enabled, the
// circuit breaker. Logging is outermost.
func Decorate(p Provider, cfg Config, serviceName string, metrics *observability.Metrics, log *logger.Logger) Provider {
	if log == nil {
		log = logger.Nop()
	}
	mws := []provider.Middleware[Request, *Result]{
		provider.WithLogging[Request, *Result](log.WithComponent("transcription")),
		provider.WithTracing[Request, *Result](serviceName, operation, spanAttributes),
	}
	if metrics != nil {
		mws = append(mws, provider.WithMetrics[Request, *Result](metrics, operation))
	}
	wrapped := provider.Chain(mws...)(p)

	if !cfg.CircuitBreaker.Enabled {
		return wrapped
	}
	return provider.WithResilience(wrapped, provider.ResilienceConfig{
		CircuitBreaker: &resilience.CircuitBreakerConfig{
			Name:        p.Name(),
			MaxFailures: cfg.CircuitBreaker.MaxFailures,
			Timeout:     cfg.CircuitBreaker.OpenFor,
		},
	})
}
