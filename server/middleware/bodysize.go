package middleware

import (
	"net/http"

	"github.com/kbukum/voxscribe/util"
)

const defaultMaxBodySize = 20 * util.MiB

// BodySizeLimit caps request bodies at maxSize ("20MB", "512KB").
// Unparseable values fall back to 20MB.
func BodySizeLimit(maxSize string) Middleware {
	size := util.ParseSize(maxSize, defaultMaxBodySize)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, size)
			}
			next.ServeHTTP(w, r)
		})
	}
}
