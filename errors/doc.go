// Package errors defines AppError, the error type every layer returns to
// the HTTP surface. Each error carries a machine-readable code, an HTTP
// status and a retryable flag.
package errors
