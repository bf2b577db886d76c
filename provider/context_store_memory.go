package provider

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process ContextStore. Expired entries are dropped
// on Load and by Sweep.
type MemoryStore[C any] struct {
	mu    sync.Mutex
	items map[string]memEntry[C]
	now   func() time.Time
}

type memEntry[C any] struct {
	val       C
	expiresAt time.Time
}

// NewMemoryStore creates a new in-memory ContextStore.
func NewMemoryStore[C any]() *MemoryStore[C] {
	return &MemoryStore[C]{items: make(map[string]memEntry[C]), now: time.Now}
}

// Load returns a copy of the stored value so callers cannot mutate it in place.
func (s *MemoryStore[C]) Load(_ context.Context, key string) (*C, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.items[key]
	if !ok {
		return nil, nil
	}
	if !entry.expiresAt.IsZero() && s.now().After(entry.expiresAt) {
		delete(s.items, key)
		return nil, nil
	}
	v := entry.val
	return &v, nil
}

func (s *MemoryStore[C]) Save(_ context.Context, key string, val *C, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := memEntry[C]{val: *val}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}
	s.items[key] = entry
	return nil
}

func (s *MemoryStore[C]) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

// Sweep deletes every entry expired at now and returns how many went.
func (s *MemoryStore[C]) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for key, entry := range s.items {
		if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
			delete(s.items, key)
			n++
		}
	}
	return n
}

// Len returns the number of entries, expired ones included.
func (s *MemoryStore[C]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

var (
	_ ContextStore[any] = (*MemoryStore[any])(nil)
	_ Sweeper           = (*MemoryStore[any])(nil)
)
