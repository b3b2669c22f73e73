package cache

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"pairScope/internal/metrics"
)

// LoadFunc fetches the value for a key. keep reports whether the value may be cached.
type LoadFunc[V any] func(ctx context.Context) (value V, keep bool, err error)

// Store keeps values by key for the life of the process. An entry is created on the first
// successful load and is never invalidated. Concurrent loads of one key share a single call.
type Store[V any] struct {
	name    string
	metrics *metrics.Metrics

	mu       sync.RWMutex
	data     map[string]V
	inflight map[string]int

	group singleflight.Group
}

func New[V any](name string, m *metrics.Metrics) *Store[V] {
	return &Store[V]{
		name:     name,
		metrics:  m,
		data:     make(map[string]V),
		inflight: make(map[string]int),
	}
}

func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.RLock()
	value, ok := s.data[key]
	s.mu.RUnlock()
	return value, ok
}

func (s *Store[V]) Set(key string, value V) {
	s.mu.Lock()
	s.data[key] = value
	s.mu.Unlock()
}

// Pending reports whether a load for key is in flight.
func (s *Store[V]) Pending(key string) bool {
	s.mu.RLock()
	n := s.inflight[key]
	s.mu.RUnlock()
	return n > 0
}

// Len returns the number of cached entries.
func (s *Store[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Load returns the cached value or runs load once for all concurrent callers of key.
// The context of the caller that started the load is the one passed to load.
func (s *Store[V]) Load(ctx context.Context, key string, load LoadFunc[V]) (V, error) {
	if value, ok := s.Get(key); ok {
		s.metrics.CacheHit(s.name)
		return value, nil
	}
	s.metrics.CacheMiss(s.name)

	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		if value, ok := s.Get(key); ok {
			return value, nil
		}

		s.mu.Lock()
		s.inflight[key]++
		s.mu.Unlock()
		defer func() {
			s.mu.Lock()
			if s.inflight[key]--; s.inflight[key] <= 0 {
				delete(s.inflight, key)
			}
			s.mu.Unlock()
		}()

		value, keep, err := load(ctx)
		if err != nil {
			return value, err
		}
		if keep {
			s.Set(key, value)
		}
		return value, nil
	})

	value, ok := result.(V)
	if !ok && result != nil {
		var zero V
		return zero, fmt.Errorf("cache %s: unexpected value type %T", s.name, result)
	}
	return value, err
}
