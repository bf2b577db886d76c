package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/kbukum/voxscribe/logger"
)

// RequestLogger logs method, path, status and duration for each request.
// Probe and static asset paths are skipped.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isQuietPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)

			fields := logger.DurationFields("http", time.Since(start))
			fields["method"] = r.Method
			fields["path"] = r.URL.Path
			fields["status"] = sw.status
			l := log.WithContext(r.Context())
			switch {
			case sw.status >= 500:
				l.Error("request completed", fields)
			case sw.status >= 400:
				l.Warn("request completed", fields)
			default:
				l.Debug("request completed", fields)
			}
		})
	}
}

func isQuietPath(path string) bool {
	switch path {
	case "/health", "/ready", "/alive":
		return true
	}
	return strings.HasPrefix(path, "/static/")
}
