// Package observability wires OpenTelemetry tracing and metrics.
//
//	ctx, span := observability.StartSpan(ctx, "transcribe")
//	defer span.End()
//
// Component starts OTLP/HTTP exporters when enabled and exposes the
// service Metrics used by the HTTP middleware and provider middleware.
package observability
