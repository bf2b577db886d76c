// Package resilience provides retry with exponential backoff and a circuit
// breaker for calls to external services.
package resilience
