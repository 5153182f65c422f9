// Package bigcachestore provides a l2cache.Store backed by allegro/bigcache,
// an in-process byte cache that keeps entries off the garbage collector's heap scan.
//
// Values are encoded with a codec.Codec. BigCache expires every entry after one
// fixed life window, so per-entry expiration policies are not supported.
package bigcachestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"

	"github.com/Johntang666/l2cache"
	"github.com/Johntang666/l2cache/codec"
	"github.com/Johntang666/l2cache/storage"
)

// Config configures a Store.
type Config[K l2cache.KeyConstraint, V l2cache.ValueConstraint] struct {
	// LifeWindow is the lifetime of every entry.
	LifeWindow time.Duration
	// CleanWindow is the interval of removing expired entries. Zero keeps bigcache's default.
	CleanWindow time.Duration
	// MaxEntriesInWindow is used to size the initial shards. Zero keeps bigcache's default.
	MaxEntriesInWindow int
	// MaxEntrySize is the expected maximum entry size in bytes. Zero keeps bigcache's default.
	MaxEntrySize int
	// HardMaxCacheSizeMB caps the memory of the cache. Zero means unlimited.
	HardMaxCacheSizeMB int

	// Prefix is prepended to every entry key.
	Prefix string
	// KeyFunc formats keys. The default is storage.DefaultKeyFunc.
	KeyFunc storage.KeyFunc[K]
	// Codec encodes values. The default is codec.Msgpack.
	Codec codec.Codec[V]
}

// Store is a l2cache.Store backed by bigcache.
type Store[K l2cache.KeyConstraint, V l2cache.ValueConstraint] struct {
	cache   *bigcache.BigCache
	prefix  string
	keyFunc storage.KeyFunc[K]
	codec   codec.Codec[V]
}

var _ l2cache.Store[uint8, struct{}] = (*Store[uint8, struct{}])(nil)

// New creates a Store. The context stops bigcache's cleanup goroutine when it is done.
func New[K l2cache.KeyConstraint, V l2cache.ValueConstraint](ctx context.Context, cfg Config[K, V]) (*Store[K, V], error) {
	if cfg.LifeWindow <= 0 {
		return nil, errors.New("bigcachestore: LifeWindow must be positive")
	}
	conf := bigcache.DefaultConfig(cfg.LifeWindow)
	conf.Verbose = false
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	cache, err := bigcache.New(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("bigcachestore: %w", err)
	}

	s := &Store[K, V]{
		cache:   cache,
		prefix:  cfg.Prefix,
		keyFunc: cfg.KeyFunc,
		codec:   cfg.Codec,
	}
	if s.keyFunc == nil {
		s.keyFunc = storage.DefaultKeyFunc[K]()
	}
	if s.codec == nil {
		s.codec = codec.Msgpack[V]{}
	}
	return s, nil
}

func (s *Store[K, V]) entryKey(region string, key K) string {
	return storage.EntryKey(s.prefix, region, s.keyFunc(key))
}

// get reads and decodes an entry. An undecodable entry is deleted and reported as a miss.
func (s *Store[K, V]) get(k string) (V, bool, error) {
	var zero V
	b, err := s.cache.Get(k)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return zero, false, nil
	} else if err != nil {
		return zero, false, err
	}

	value, err := s.codec.Decode(b)
	if err != nil {
		_ = s.cache.Delete(k)
		return zero, false, nil
	}
	return value, true, nil
}

// Get returns the value unless it is absent or expired.
func (s *Store[K, V]) Get(_ context.Context, region string, key K) (V, bool, error) {
	return s.get(s.entryKey(region, key))
}

// BatchGet returns the values that are present.
func (s *Store[K, V]) BatchGet(_ context.Context, region string, keys []K) (map[K]V, error) {
	result := make(map[K]V, len(keys))
	for _, key := range keys {
		value, ok, err := s.get(s.entryKey(region, key))
		if err != nil {
			return nil, err
		}
		if ok {
			result[key] = value
		}
	}
	return result, nil
}

// Put encodes and stores the value.
func (s *Store[K, V]) Put(_ context.Context, region string, key K, value V) error {
	b, err := s.codec.Encode(value)
	if err != nil {
		return fmt.Errorf("bigcachestore: encode: %w", err)
	}
	return s.cache.Set(s.entryKey(region, key), b)
}

// Evict removes the value.
func (s *Store[K, V]) Evict(_ context.Context, region string, key K) error {
	err := s.cache.Delete(s.entryKey(region, key))
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return nil
	}
	return err
}

// Len returns the number of entries.
func (s *Store[K, V]) Len() int {
	return s.cache.Len()
}

// Close releases the cache.
func (s *Store[K, V]) Close() error {
	return s.cache.Close()
}
