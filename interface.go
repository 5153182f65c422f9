package l2cache

import (
	"context"
)

// KeyConstraint is an interface for key constraints.
type KeyConstraint interface {
	comparable
}

// ValueConstraint is an interface for value constraints.
type ValueConstraint interface {
	any
}

// Entry is a key-value pair belonging to a region.
type Entry[K KeyConstraint, V ValueConstraint] struct {
	// Key is the key of the entry.
	Key K
	// Value is the value associated with the key.
	Value V
}

// Store is an interface for a region-scoped cache store.
// It may be a single tier or a composition of tiers, and may expire entries on its own.
// Implementations must be thread-safe and each call must be atomic at the store level.
type Store[K KeyConstraint, V ValueConstraint] interface {
	// Get retrieves a value by its key.
	// It returns false as the second value if the key is not found or expired.
	Get(ctx context.Context, region string, key K) (V, bool, error)
	// BatchGet retrieves multiple values by keys.
	// The returned map contains only the keys that were found.
	BatchGet(ctx context.Context, region string, keys []K) (map[K]V, error)
	// Put stores a value with the given key, overwriting any existing value.
	Put(ctx context.Context, region string, key K, value V) error
	// Evict removes the value associated with the key.
	// It must not return an error if the key is absent.
	Evict(ctx context.Context, region string, key K) error
}

// Loader is an interface for loading values from the backing store.
type Loader[K KeyConstraint, V ValueConstraint] interface {
	// LoadOne loads a value by its key.
	// If the key does not exist in the backing store, it should return ErrNotFound.
	LoadOne(ctx context.Context, key K) (V, error)
	// LoadMany loads multiple values by keys.
	// Keys that the backing store cannot resolve are simply absent from the result.
	LoadMany(ctx context.Context, keys []K) (map[K]V, error)
}

// Accessor is the cache-aside access interface for one region.
type Accessor[K KeyConstraint, V ValueConstraint] interface {
	// Region returns the region name the accessor is bound to.
	Region() string
	// GetOrLoad returns the cached value, loading and storing it on a miss.
	GetOrLoad(ctx context.Context, key K) (V, error)
	// BatchGetOrLoad returns the values of the keys, loading the misses with one bulk load.
	BatchGetOrLoad(ctx context.Context, keys []K) (map[K]V, error)
	// Put overwrites the cached value and returns it.
	Put(ctx context.Context, key K, value V) (V, error)
	// Reload loads the value from the backing store and overwrites the cached value.
	Reload(ctx context.Context, key K) (V, error)
	// Evict removes the cached value.
	Evict(ctx context.Context, key K) error
}
