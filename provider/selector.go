package provider

import (
	"context"
	"errors"
	"sort"
)

// ErrNoProvider is returned when no provider is available.
var ErrNoProvider = errors.New("no available provider")

// Selector picks a provider from the available options.
type Selector[T Provider] interface {
	Select(ctx context.Context, providers map[string]T) (T, error)
}

// PrioritySelector returns the first available provider in Priority order.
type PrioritySelector[T Provider] struct {
	Priority []string
}

func (s *PrioritySelector[T]) Select(ctx context.Context, providers map[string]T) (T, error) {
	for _, name := range s.Priority {
		if p, ok := providers[name]; ok && p.IsAvailable(ctx) {
			return p, nil
		}
	}
	var zero T
	return zero, ErrNoProvider
}

// HealthCheckSelector returns the first available provider by name.
type HealthCheckSelector[T Provider] struct{}

func (s *HealthCheckSelector[T]) Select(ctx context.Context, providers map[string]T) (T, error) {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if p := providers[name]; p.IsAvailable(ctx) {
			return p, nil
		}
	}
	var zero T
	return zero, ErrNoProvider
}
