// Package httpclient is the outbound HTTP client used by the transcription
// backends. It applies auth and default headers, classifies failures into
// *Error values, and can wrap calls in retry and a circuit breaker.
//
// The rest subpackage adds typed JSON helpers on top.
package httpclient
