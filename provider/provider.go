package provider

import "context"

// Provider is a named backend the Manager can select, such as one
// transcription service.
type Provider interface {
	Name() string
	// IsAvailable reports whether the backend can take a call now. It
	// must be cheap: selectors call it on every request.
	IsAvailable(ctx context.Context) bool
}

// Factory builds a provider from its flattened config section. A factory
// that cannot build a usable provider, for example without credentials,
// returns an error and the provider is never registered.
type Factory[T Provider] func(cfg map[string]any) (T, error)
