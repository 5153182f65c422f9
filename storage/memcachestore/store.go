// Package memcachestore provides a l2cache.Store backed by memcached through bradfitz/gomemcache.
//
// Values are encoded with a codec.Codec and stored under "<prefix><region>:<key>".
// Memcached keys are limited to 250 bytes without spaces or control characters,
// so KeyFunc must produce such keys. BatchGet reads every key with one GetMulti.
package memcachestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/Johntang666/l2cache"
	"github.com/Johntang666/l2cache/codec"
	"github.com/Johntang666/l2cache/expiration"
	"github.com/Johntang666/l2cache/storage"
)

// ErrNilClient is returned by New when Config.Client is nil.
var ErrNilClient = errors.New("memcachestore: nil client")

// maxRelativeExpiration is the longest expiration memcached reads as relative seconds.
// Longer expirations must be sent as unix timestamps.
const maxRelativeExpiration = 30 * 24 * time.Hour

// Config configures a Store.
type Config[K l2cache.KeyConstraint, V l2cache.ValueConstraint] struct {
	// Client is the memcached client.
	Client *memcache.Client

	// Prefix is prepended to every entry key.
	Prefix string
	// KeyFunc formats keys. The default is storage.DefaultKeyFunc.
	KeyFunc storage.KeyFunc[K]
	// Codec encodes values. The default is codec.Msgpack.
	Codec codec.Codec[V]
	// Expiration decides the lifetime of entries. Entries never expire when nil.
	Expiration expiration.Policy
	// Clock is the clock the expiration policy reads. The default is l2cache.SystemClock.
	Clock l2cache.Clock
}

// Store is a l2cache.Store backed by memcached.
// gomemcache takes no context, so the context arguments are not used.
type Store[K l2cache.KeyConstraint, V l2cache.ValueConstraint] struct {
	client  *memcache.Client
	prefix  string
	keyFunc storage.KeyFunc[K]
	codec   codec.Codec[V]
	policy  expiration.Policy
	clock   l2cache.Clock
}

var _ l2cache.Store[uint8, struct{}] = (*Store[uint8, struct{}])(nil)

// New creates a Store.
func New[K l2cache.KeyConstraint, V l2cache.ValueConstraint](cfg Config[K, V]) (*Store[K, V], error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	s := &Store[K, V]{
		client:  cfg.Client,
		prefix:  cfg.Prefix,
		keyFunc: cfg.KeyFunc,
		codec:   cfg.Codec,
		policy:  cfg.Expiration,
		clock:   cfg.Clock,
	}
	if s.keyFunc == nil {
		s.keyFunc = storage.DefaultKeyFunc[K]()
	}
	if s.codec == nil {
		s.codec = codec.Msgpack[V]{}
	}
	if s.policy == nil {
		s.policy = expiration.Never{}
	}
	if s.clock == nil {
		s.clock = l2cache.SystemClock
	}
	return s, nil
}

func (s *Store[K, V]) entryKey(region string, key K) string {
	return storage.EntryKey(s.prefix, region, s.keyFunc(key))
}

// decode decodes an item. An undecodable item is deleted and reported as a miss.
func (s *Store[K, V]) decode(item *memcache.Item) (V, bool) {
	value, err := s.codec.Decode(item.Value)
	if err != nil {
		_ = s.client.Delete(item.Key)
		var zero V
		return zero, false
	}
	return value, true
}

// Get returns the value unless it is absent or expired.
func (s *Store[K, V]) Get(_ context.Context, region string, key K) (V, bool, error) {
	var zero V
	item, err := s.client.Get(s.entryKey(region, key))
	if errors.Is(err, memcache.ErrCacheMiss) {
		return zero, false, nil
	} else if err != nil {
		return zero, false, fmt.Errorf("memcachestore: get: %w", err)
	}

	value, ok := s.decode(item)
	return value, ok, nil
}

// BatchGet reads the keys with one GetMulti and returns the values that are present.
func (s *Store[K, V]) BatchGet(_ context.Context, region string, keys []K) (map[K]V, error) {
	result := make(map[K]V, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	byEntryKey := make(map[string]K, len(keys))
	entryKeys := make([]string, 0, len(keys))
	for _, key := range keys {
		k := s.entryKey(region, key)
		byEntryKey[k] = key
		entryKeys = append(entryKeys, k)
	}
	items, err := s.client.GetMulti(entryKeys)
	if err != nil {
		return nil, fmt.Errorf("memcachestore: get multi: %w", err)
	}

	for k, item := range items {
		key, ok := byEntryKey[k]
		if !ok {
			continue
		}
		if value, ok := s.decode(item); ok {
			result[key] = value
		}
	}
	return result, nil
}

// Put encodes and stores the value with the expiration decided by the policy.
func (s *Store[K, V]) Put(ctx context.Context, region string, key K, value V) error {
	now := s.clock.Now()
	exp, ok := itemExpiration(now, s.policy.ExpiresAt(now))
	if !ok {
		return s.Evict(ctx, region, key)
	}

	b, err := s.codec.Encode(value)
	if err != nil {
		return fmt.Errorf("memcachestore: encode: %w", err)
	}
	if err := s.client.Set(&memcache.Item{Key: s.entryKey(region, key), Value: b, Expiration: exp}); err != nil {
		return fmt.Errorf("memcachestore: set: %w", err)
	}
	return nil
}

// Evict deletes the value.
func (s *Store[K, V]) Evict(_ context.Context, region string, key K) error {
	err := s.client.Delete(s.entryKey(region, key))
	if err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		return fmt.Errorf("memcachestore: delete: %w", err)
	}
	return nil
}

// itemExpiration converts an expiration time to memcached's expiration field.
// Lifetimes up to 30 days are sent as seconds rounded up, longer ones as unix timestamps.
// It returns false if the entry is already expired.
func itemExpiration(now, expiresAt time.Time) (int32, bool) {
	if expiresAt.IsZero() {
		return 0, true
	}
	ttl := expiresAt.Sub(now)
	if ttl <= 0 {
		return 0, false
	}
	if ttl > maxRelativeExpiration {
		return int32(expiresAt.Unix()), true
	}
	return int32((ttl + time.Second - 1) / time.Second), true
}
