package interfaces

import "context"

// ContentCache memoizes values derived from immutable content, keyed by
// collection and content hash. Entries are never evicted or replaced: once a
// key is stored, later Adds for it keep the first value.
type ContentCache[V any] interface {
	Get(ctx context.Context, key string) (V, bool)
	// Add stores value under key unless present and returns the stored value.
	Add(ctx context.Context, key string, value V) V
	Len() int
}
