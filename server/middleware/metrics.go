package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/kbukum/voxscribe/observability"
)

// Metrics records request counts, durations and in-flight requests.
func Metrics(m *observability.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			m.RecordRequestStart(r.Context())
			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)
			m.RecordRequestEnd(r.Context(), r.Method, routeLabel(r.URL.Path), sw.status, time.Since(start))
		})
	}
}

// routeLabel keeps metric cardinality bounded.
func routeLabel(path string) string {
	if strings.HasPrefix(path, "/static/") {
		return "/static/*"
	}
	if strings.HasPrefix(path, "/api/") || path == "/" {
		return path
	}
	return "other"
}
