// Package internal contains implementation details of jsonwire: the
// process-wide get-or-create registry backing the strategy and serializer
// caches.
package internal

import (
	"sync"
	"sync/atomic"
)

// Registry is a sharded, concurrency-safe get-or-create lookup table. It is
// lazily populated and never torn down: entries live for the life of the
// process. Sharding keeps unrelated lookups from serializing on one lock.
//
// GetOrCreate may run the create function concurrently for the same key; the
// race is benign because LoadOrStore guarantees every caller observes the
// identical stored value. Failed creations are never cached.
type Registry[K comparable, V any] struct {
	shards []registryShard
	mask   uint64
	hash   func(K) uint64

	hits   atomic.Int64
	misses atomic.Int64
}

type registryShard struct {
	entries sync.Map
}

// NewRegistry creates a registry with the given shard count (rounded up to a
// power of two) and shard-selection hash.
func NewRegistry[K comparable, V any](shardCount int, hash func(K) uint64) *Registry[K, V] {
	if shardCount < 1 {
		shardCount = 16
	}
	n := 1
	for n < shardCount {
		n <<= 1
	}
	return &Registry[K, V]{
		shards: make([]registryShard, n),
		mask:   uint64(n - 1),
		hash:   hash,
	}
}

// GetOrCreate returns the value for key, invoking create to build it on
// first use. Repeated calls with the same key return the identical instance.
func (r *Registry[K, V]) GetOrCreate(key K, create func() (V, error)) (V, error) {
	shard := &r.shards[r.hash(key)&r.mask]
	if v, ok := shard.entries.Load(key); ok {
		r.hits.Add(1)
		return v.(V), nil
	}
	r.misses.Add(1)
	created, err := create()
	if err != nil {
		var zero V
		return zero, err
	}
	actual, _ := shard.entries.LoadOrStore(key, created)
	return actual.(V), nil
}

// Len reports the number of cached entries across all shards.
func (r *Registry[K, V]) Len() int {
	total := 0
	for i := range r.shards {
		r.shards[i].entries.Range(func(any, any) bool {
			total++
			return true
		})
	}
	return total
}

// Stats reports cumulative hit and miss counts.
func (r *Registry[K, V]) Stats() (hits, misses int64) {
	return r.hits.Load(), r.misses.Load()
}
