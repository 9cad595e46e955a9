// Package cache holds parsed content keyed by collection and content hash.
// The store only grows: a hash identifies immutable bytes, so a stored entry
// can never go stale and nothing is evicted.
package cache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/goliatone/go-gitcontent/pkg/interfaces"
)

// Key builds the cache key for a collection member.
func Key(collection, hash string) string {
	return strings.TrimSpace(collection) + ":" + strings.TrimSpace(hash)
}

// Store is an append-only, concurrency-safe map. Load deduplicates
// concurrent misses for the same key so overlapping refreshes fetch a file
// once.
type Store[V any] struct {
	mu      sync.RWMutex
	entries map[string]V
	group   singleflight.Group

	hits   atomic.Uint64
	misses atomic.Uint64
}

var _ interfaces.ContentCache[int] = (*Store[int])(nil)

// Stats reports lookup counters.
type Stats struct {
	Entries int    `json:"entries"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
}

// New returns an empty store.
func New[V any]() *Store[V] {
	return &Store[V]{entries: map[string]V{}}
}

// Get returns the entry stored under key.
func (s *Store[V]) Get(_ context.Context, key string) (V, bool) {
	s.mu.RLock()
	value, ok := s.entries[key]
	s.mu.RUnlock()
	if ok {
		s.hits.Add(1)
	} else {
		s.misses.Add(1)
	}
	return value, ok
}

// Add stores value unless key is already present and returns whichever value
// ends up stored.
func (s *Store[V]) Add(_ context.Context, key string, value V) V {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.entries[key]; ok {
		return existing
	}
	s.entries[key] = value
	return value
}

// Load returns the cached entry for key or computes it with fn. Concurrent
// callers for the same missing key share one fn call. When fn reports
// store=false the value is returned but not cached, for transient failures.
func (s *Store[V]) Load(ctx context.Context, key string, fn func() (value V, store bool, err error)) (V, bool, error) {
	if value, ok := s.Get(ctx, key); ok {
		return value, true, nil
	}
	type outcome struct {
		value V
		err   error
	}
	res, _, _ := s.group.Do(key, func() (any, error) {
		s.mu.RLock()
		existing, ok := s.entries[key]
		s.mu.RUnlock()
		if ok {
			return outcome{value: existing}, nil
		}
		value, store, err := fn()
		if store {
			value = s.Add(ctx, key, value)
		}
		return outcome{value: value, err: err}, nil
	})
	out := res.(outcome)
	return out.value, false, out.err
}

// Len returns the number of stored entries.
func (s *Store[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Stats returns a snapshot of the store counters.
func (s *Store[V]) Stats() Stats {
	return Stats{Entries: s.Len(), Hits: s.hits.Load(), Misses: s.misses.Load()}
}
