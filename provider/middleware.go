package provider

import (
	"context"
	"errors"
	"strings"

	apperrors "github.com/kbukum/voxscribe/errors"
)

// Middleware wraps a RequestResponse provider.
type Middleware[I, O any] func(RequestResponse[I, O]) RequestResponse[I, O]

// Chain composes middlewares so the first is outermost:
// Chain(a, b, c)(p) == a(b(c(p))).
func Chain[I, O any](middlewares ...Middleware[I, O]) Middleware[I, O] {
	return func(inner RequestResponse[I, O]) RequestResponse[I, O] {
		for i := len(middlewares) - 1; i >= 0; i-- {
			inner = middlewares[i](inner)
		}
		return inner
	}
}

// Outcome labels the result of one backend call for logs, spans and
// metrics: "ok", "canceled", "deadline", the lowercased AppError code,
// the Kind of a classified transport error, or "error".
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if errors.Is(err, context.Canceled) {
		return "canceled"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "deadline"
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		return strings.ToLower(string(appErr.Code))
	}
	var kinded interface{ Kind() string }
	if errors.As(err, &kinded) {
		return kinded.Kind()
	}
	return "error"
}
