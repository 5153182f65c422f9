package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Johntang666/l2cache"
	"github.com/Johntang666/l2cache/expiration"
	"github.com/Johntang666/l2cache/internal/keyhash"
)

type entryKey[K l2cache.KeyConstraint] struct {
	region string
	key    K
}

type record[V l2cache.ValueConstraint] struct {
	value     V
	expiresAt time.Time
}

type bucket[K l2cache.KeyConstraint, V l2cache.ValueConstraint] struct {
	m  map[entryKey[K]]record[V]
	mu sync.RWMutex
}

// Store is an in-memory l2cache.Store.
type Store[K l2cache.KeyConstraint, V l2cache.ValueConstraint] struct {
	buckets []*bucket[K, V]
	options options[K, V]
}

var _ l2cache.Store[uint8, struct{}] = (*Store[uint8, struct{}])(nil)

// New creates a new in-memory store.
// The store uses a hash function to distribute the keys across the buckets.
func New[K l2cache.KeyConstraint, V l2cache.ValueConstraint](opts ...Option[K, V]) *Store[K, V] {
	options := defaultOptions[K, V]()
	for _, opt := range opts {
		opt.apply(&options)
	}

	buckets := make([]*bucket[K, V], options.bucketsSize)
	for i := range buckets {
		buckets[i] = &bucket[K, V]{m: map[entryKey[K]]record[V]{}}
	}
	return &Store[K, V]{
		buckets: buckets,
		options: options,
	}
}

// resolveBucket returns the bucket index that corresponds to the given key.
func (s *Store[K, V]) resolveBucket(regionHash int, key K) int {
	if len(s.buckets) == 1 {
		return 0
	}
	index := keyhash.Combine(regionHash, s.options.hashKey(key)) % len(s.buckets)
	if index < 0 {
		index *= -1
	}
	return index
}

// resolveBuckets returns the indexes and the sorted distinct buckets that correspond to the given keys.
func (s *Store[K, V]) resolveBuckets(region string, keys []K) (indexes map[K]int, buckets []int) {
	regionHash := keyhash.String(region)
	indexes = make(map[K]int, len(keys))
	seen := make(map[int]struct{}, len(keys))
	for _, key := range keys {
		index := s.resolveBucket(regionHash, key)
		indexes[key] = index
		if _, ok := seen[index]; !ok {
			buckets = append(buckets, index)
			seen[index] = struct{}{}
		}
	}
	sort.Ints(buckets)
	return
}

func (s *Store[K, V]) bucketOf(region string, key K) *bucket[K, V] {
	return s.buckets[s.resolveBucket(keyhash.String(region), key)]
}

// Get returns the value unless it is absent or expired.
func (s *Store[K, V]) Get(_ context.Context, region string, key K) (V, bool, error) {
	bucket := s.bucketOf(region, key)
	bucket.mu.RLock()
	defer bucket.mu.RUnlock()

	if r, ok := bucket.m[entryKey[K]{region, key}]; ok && !expiration.IsExpired(s.options.clock.Now(), r.expiresAt) {
		return s.options.cloner.CloneValue(r.value), true, nil
	}
	var zero V
	return zero, false, nil
}

// BatchGet returns the values of the keys that are present and not expired.
// It read-locks every involved bucket in index order, so the result is a consistent snapshot.
func (s *Store[K, V]) BatchGet(_ context.Context, region string, keys []K) (map[K]V, error) {
	indexes, buckets := s.resolveBuckets(region, keys)
	for _, i := range buckets {
		bucket := s.buckets[i]
		bucket.mu.RLock()
		defer bucket.mu.RUnlock()
	}

	now := s.options.clock.Now()
	result := make(map[K]V, len(keys))
	for _, key := range keys {
		bucket := s.buckets[indexes[key]]
		if r, ok := bucket.m[entryKey[K]{region, key}]; ok && !expiration.IsExpired(now, r.expiresAt) {
			result[key] = s.options.cloner.CloneValue(r.value)
		}
	}
	return result, nil
}

// Put stores a copy of the value with the expiration decided by the policy.
func (s *Store[K, V]) Put(_ context.Context, region string, key K, value V) error {
	r := record[V]{
		value:     s.options.cloner.CloneValue(value),
		expiresAt: s.options.expiration.ExpiresAt(s.options.clock.Now()),
	}

	bucket := s.bucketOf(region, key)
	bucket.mu.Lock()
	defer bucket.mu.Unlock()

	bucket.m[entryKey[K]{region, key}] = r
	return nil
}

// Evict removes the value. Removing an absent key is a no-op.
func (s *Store[K, V]) Evict(_ context.Context, region string, key K) error {
	bucket := s.bucketOf(region, key)
	bucket.mu.Lock()
	defer bucket.mu.Unlock()

	delete(bucket.m, entryKey[K]{region, key})
	return nil
}

// Len returns the number of entries held, including expired entries not yet removed.
func (s *Store[K, V]) Len() int {
	n := 0
	for _, bucket := range s.buckets {
		bucket.mu.RLock()
		n += len(bucket.m)
		bucket.mu.RUnlock()
	}
	return n
}

// DeleteExpired removes expired entries and returns how many were removed.
// Expired entries are otherwise kept until they are overwritten or evicted.
func (s *Store[K, V]) DeleteExpired() int {
	now := s.options.clock.Now()
	n := 0
	for _, bucket := range s.buckets {
		bucket.mu.Lock()
		for k, r := range bucket.m {
			if expiration.IsExpired(now, r.expiresAt) {
				delete(bucket.m, k)
				n++
			}
		}
		bucket.mu.Unlock()
	}
	return n
}
