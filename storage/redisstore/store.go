// Package redisstore provides a l2cache.Store backed by Redis through redis/go-redis,
// the distributed tier shared by every process of a service.
//
// Values are encoded with a codec.Codec and stored under "<prefix><region>:<key>".
// BatchGet reads every key with one MGET. On Redis Cluster the keys of one MGET must
// share a hash slot, so use a hash tagged region name such as "{brand}" there.
package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Johntang666/l2cache"
	"github.com/Johntang666/l2cache/codec"
	"github.com/Johntang666/l2cache/expiration"
	"github.com/Johntang666/l2cache/storage"
)

// ErrNilClient is returned by New when Config.Client is nil.
var ErrNilClient = errors.New("redisstore: nil client")

// Config configures a Store.
type Config[K l2cache.KeyConstraint, V l2cache.ValueConstraint] struct {
	// Client is the Redis client. It may be a single node, sentinel or cluster client.
	Client redis.UniversalClient
	// CloseClient makes Close close the client. Set it only if the store owns the client.
	CloseClient bool

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

// Store is a l2cache.Store backed by Redis.
type Store[K l2cache.KeyConstraint, V l2cache.ValueConstraint] struct {
	client      redis.UniversalClient
	closeClient bool
	prefix      string
	keyFunc     storage.KeyFunc[K]
	codec       codec.Codec[V]
	policy      expiration.Policy
	clock       l2cache.Clock
}

var _ l2cache.Store[uint8, struct{}] = (*Store[uint8, struct{}])(nil)

// New creates a Store.
func New[K l2cache.KeyConstraint, V l2cache.ValueConstraint](cfg Config[K, V]) (*Store[K, V], error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	s := &Store[K, V]{
		client:      cfg.Client,
		closeClient: cfg.CloseClient,
		prefix:      cfg.Prefix,
		keyFunc:     cfg.KeyFunc,
		codec:       cfg.Codec,
		policy:      cfg.Expiration,
		clock:       cfg.Clock,
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

// decode decodes an entry. An undecodable entry is deleted and reported as a miss.
func (s *Store[K, V]) decode(ctx context.Context, k string, b []byte) (V, bool) {
	value, err := s.codec.Decode(b)
	if err != nil {
		_ = s.client.Del(ctx, k).Err()
		var zero V
		return zero, false
	}
	return value, true
}

// Get returns the value unless it is absent or expired.
func (s *Store[K, V]) Get(ctx context.Context, region string, key K) (V, bool, error) {
	k := s.entryKey(region, key)
	b, err := s.client.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		var zero V
		return zero, false, nil
	} else if err != nil {
		var zero V
		return zero, false, fmt.Errorf("redisstore: get: %w", err)
	}

	value, ok := s.decode(ctx, k, b)
	return value, ok, nil
}

// BatchGet reads the keys with one MGET and returns the values that are present.
func (s *Store[K, V]) BatchGet(ctx context.Context, region string, keys []K) (map[K]V, error) {
	result := make(map[K]V, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	redisKeys := make([]string, len(keys))
	for i, key := range keys {
		redisKeys[i] = s.entryKey(region, key)
	}
	values, err := s.client.MGet(ctx, redisKeys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redisstore: mget: %w", err)
	}

	for i, raw := range values {
		str, ok := raw.(string)
		if !ok {
			continue
		}
		if value, ok := s.decode(ctx, redisKeys[i], []byte(str)); ok {
			result[keys[i]] = value
		}
	}
	return result, nil
}

// Put encodes and stores the value with the TTL decided by the expiration policy.
func (s *Store[K, V]) Put(ctx context.Context, region string, key K, value V) error {
	k := s.entryKey(region, key)
	ttl := expiration.TTL(s.policy, s.clock.Now())
	if ttl < 0 {
		return s.Evict(ctx, region, key)
	}

	b, err := s.codec.Encode(value)
	if err != nil {
		return fmt.Errorf("redisstore: encode: %w", err)
	}
	if err := s.client.Set(ctx, k, b, ttl).Err(); err != nil {
		return fmt.Errorf("redisstore: set: %w", err)
	}
	return nil
}

// Evict deletes the value.
func (s *Store[K, V]) Evict(ctx context.Context, region string, key K) error {
	if err := s.client.Del(ctx, s.entryKey(region, key)).Err(); err != nil {
		return fmt.Errorf("redisstore: del: %w", err)
	}
	return nil
}

// Close closes the client if the store owns it.
func (s *Store[K, V]) Close() error {
	if !s.closeClient {
		return nil
	}
	if err := s.client.Close(); err != nil && !errors.Is(err, redis.ErrClosed) {
		return err
	}
	return nil
}
