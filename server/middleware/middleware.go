package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Middleware is the server-level middleware type. It wraps the root mux,
// so it covers Gin routes and anything mounted with Server.Handle.
type Middleware func(http.Handler) http.Handler

// Chain composes middleware. The first in the list is outermost.
func Chain(middlewares ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// GinWrap adapts a Middleware for use on a single Gin route group. The
// chain is aborted when the middleware answers without calling next.
func GinWrap(mw Middleware) gin.HandlerFunc {
	return func(c *gin.Context) {
		called := false
		next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			called = true
			c.Request = r
			c.Next()
		})
		mw(next).ServeHTTP(c.Writer, c.Request)
		if !called {
			c.Abort()
		}
	}
}
