package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/voxscribe/errors"
)

// RateLimitConfig configures RateLimit.
type RateLimitConfig struct {
	RequestsPerMinute int
	// KeyFunc extracts the limit key. Defaults to the client IP.
	KeyFunc func(*gin.Context) string
	// Now is injectable for tests.
	Now func() time.Time
}

// RateLimit applies a per-key sliding one-minute window and answers
// RATE_LIMITED (429) when the window is full.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 30
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	rl := &windowLimiter{hits: make(map[string][]time.Time), limit: cfg.RequestsPerMinute}

	return func(c *gin.Context) {
		if !rl.allow(cfg.KeyFunc(c), cfg.Now()) {
			err := apperrors.RateLimited()
			c.AbortWithStatusJSON(err.HTTPStatus, err.ToResponse())
			return
		}
		c.Next()
	}
}

type windowLimiter struct {
	mu    sync.Mutex
	hits  map[string][]time.Time
	limit int
}

// allow prunes expired hits for key on every call, so idle keys are
// dropped the next time they are seen and the map stays bounded by
// active clients.
func (l *windowLimiter) allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := now.Add(-time.Minute)
	kept := l.hits[key][:0]
	for _, t := range l.hits[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	if len(kept) >= l.limit {
		l.hits[key] = kept
		return false
	}
	l.hits[key] = append(kept, now)
	return true
}
