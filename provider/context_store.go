package provider

import (
	"context"
	"time"
)

// ContextStore persists typed state under an opaque key. A TTL of 0 means
// no expiration. redis.TypedStore is the networked implementation.
type ContextStore[C any] interface {
	// Load returns (nil, nil) if the key does not exist.
	Load(ctx context.Context, key string) (*C, error)
	Save(ctx context.Context, key string, val *C, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Sweeper is a ContextStore that must be told to drop expired entries.
// Backends with native expiry, such as Redis, do not implement it.
type Sweeper interface {
	Sweep(now time.Time) int
}
