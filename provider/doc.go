// Package provider is a small generic framework for swappable backends.
//
// A Manager holds initialized providers and picks one per call through a
// Selector. RequestResponse providers can be wrapped with middleware:
//
//	wrapped := provider.Chain(
//	    provider.WithLogging[In, Out](log),
//	    provider.WithTracing[In, Out]("voxscribe", "transcribe", nil),
//	    provider.WithMetrics[In, Out](metrics, "transcribe"),
//	)(raw)
//
// ContextStore is the typed persistence contract shared by MemoryStore and
// redis.TypedStore.
package provider
