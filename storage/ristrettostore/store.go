// Package ristrettostore provides a l2cache.Store backed by dgraph-io/ristretto,
// an in-process cache with TinyLFU admission and cost-based eviction.
package ristrettostore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/ristretto"

	"github.com/Johntang666/l2cache"
	"github.com/Johntang666/l2cache/expiration"
	"github.com/Johntang666/l2cache/storage"
)

// ErrRejected is returned by Put when ristretto's admission policy drops the entry.
var ErrRejected = errors.New("ristrettostore: entry rejected")

// Config configures a Store.
type Config[K l2cache.KeyConstraint, V l2cache.ValueConstraint] struct {
	// NumCounters is the number of keys to track frequency of, usually ten times the expected number of entries.
	NumCounters int64
	// MaxCost is the maximum total cost of the cache.
	MaxCost int64
	// BufferItems is the size of ristretto's Get buffers. 64 is a good default.
	BufferItems int64
	// Metrics enables ristretto's own hit ratio metrics.
	Metrics bool

	// Cost returns the cost of a value. Every entry costs 1 when nil.
	Cost func(V) int64
	// KeyFunc formats keys. The default is storage.DefaultKeyFunc.
	KeyFunc storage.KeyFunc[K]
	// Expiration decides the lifetime of entries. Entries never expire when nil.
	Expiration expiration.Policy
	// Clock is the clock the expiration policy reads. The default is l2cache.SystemClock.
	Clock l2cache.Clock
	// Cloner copies values in and out of the cache. The default is l2cache.DefaultValueCloner.
	Cloner l2cache.ValueCloner[V]
}

// Store is a l2cache.Store backed by ristretto.
// Put waits for ristretto's write buffer, so a successful Put is visible to the next Get.
type Store[K l2cache.KeyConstraint, V l2cache.ValueConstraint] struct {
	cache   *ristretto.Cache
	cost    func(V) int64
	keyFunc storage.KeyFunc[K]
	policy  expiration.Policy
	clock   l2cache.Clock
	cloner  l2cache.ValueCloner[V]
}

var _ l2cache.Store[uint8, struct{}] = (*Store[uint8, struct{}])(nil)

// New creates a Store.
func New[K l2cache.KeyConstraint, V l2cache.ValueConstraint](cfg Config[K, V]) (*Store[K, V], error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristrettostore: NumCounters, MaxCost and BufferItems must be positive")
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters:        cfg.NumCounters,
		MaxCost:            cfg.MaxCost,
		BufferItems:        cfg.BufferItems,
		Metrics:            cfg.Metrics,
		IgnoreInternalCost: cfg.Cost == nil,
	})
	if err != nil {
		return nil, fmt.Errorf("ristrettostore: %w", err)
	}

	s := &Store[K, V]{
		cache:   cache,
		cost:    cfg.Cost,
		keyFunc: cfg.KeyFunc,
		policy:  cfg.Expiration,
		clock:   cfg.Clock,
		cloner:  cfg.Cloner,
	}
	if s.cost == nil {
		s.cost = func(V) int64 { return 1 }
	}
	if s.keyFunc == nil {
		s.keyFunc = storage.DefaultKeyFunc[K]()
	}
	if s.policy == nil {
		s.policy = expiration.Never{}
	}
	if s.clock == nil {
		s.clock = l2cache.SystemClock
	}
	if s.cloner == nil {
		s.cloner = l2cache.DefaultValueCloner[V]()
	}
	return s, nil
}

func (s *Store[K, V]) entryKey(region string, key K) string {
	return storage.EntryKey("", region, s.keyFunc(key))
}

func (s *Store[K, V]) get(region string, key K) (V, bool) {
	k := s.entryKey(region, key)
	raw, ok := s.cache.Get(k)
	if !ok {
		var zero V
		return zero, false
	}
	value, ok := raw.(V)
	if !ok {
		s.cache.Del(k)
		return value, false
	}
	return s.cloner.CloneValue(value), true
}

// Get returns the value unless it is absent, expired or evicted.
func (s *Store[K, V]) Get(_ context.Context, region string, key K) (V, bool, error) {
	value, ok := s.get(region, key)
	return value, ok, nil
}

// BatchGet returns the values that are present.
func (s *Store[K, V]) BatchGet(_ context.Context, region string, keys []K) (map[K]V, error) {
	result := make(map[K]V, len(keys))
	for _, key := range keys {
		if value, ok := s.get(region, key); ok {
			result[key] = value
		}
	}
	return result, nil
}

// Put stores a copy of the value. It returns ErrRejected if ristretto drops the entry.
func (s *Store[K, V]) Put(_ context.Context, region string, key K, value V) error {
	ttl := expiration.TTL(s.policy, s.clock.Now())
	if ttl < 0 {
		s.cache.Del(s.entryKey(region, key))
		return nil
	}

	value = s.cloner.CloneValue(value)
	if !s.cache.SetWithTTL(s.entryKey(region, key), value, s.cost(value), ttl) {
		return ErrRejected
	}
	s.cache.Wait()
	return nil
}

// Evict removes the value.
func (s *Store[K, V]) Evict(_ context.Context, region string, key K) error {
	s.cache.Del(s.entryKey(region, key))
	return nil
}

// Metrics returns ristretto's metrics. It is nil unless Config.Metrics is set.
func (s *Store[K, V]) Metrics() *ristretto.Metrics {
	return s.cache.Metrics
}

// Close stops ristretto's goroutines.
func (s *Store[K, V]) Close() {
	s.cache.Wait()
	s.cache.Close()
}
