package l2cache

import (
	"context"
	"errors"
	"slices"

	"github.com/Johntang666/l2cache/internal/iterutil"
	"github.com/Johntang666/l2cache/singleflight"
)

// LoadManyFunc loads multiple values from the backing store.
// Keys that cannot be resolved are absent from the result.
type LoadManyFunc[K KeyConstraint, V ValueConstraint] func(context.Context, []K) (map[K]V, error)

// CacheAccessor implements cache-aside reads and write-through writes for one region.
// It holds no entries itself: values live in the Store, loads go through the Loader,
// and concurrent misses of one key are collapsed by the single-flight coordinator.
type CacheAccessor[K KeyConstraint, V ValueConstraint] struct {
	region      string
	store       Store[K, V]
	loader      Loader[K, V]
	coordinator *singleflight.Coordinator
	cloner      ValueCloner[V]
	logger      Logger
	recorder    Recorder
}

var _ Accessor[uint8, struct{}] = (*CacheAccessor[uint8, struct{}])(nil)

// New creates a new CacheAccessor bound to the region.
// The region name must be unique among the accessors sharing one store.
func New[K KeyConstraint, V ValueConstraint](region string, store Store[K, V], loader Loader[K, V], opts ...Option[K, V]) (*CacheAccessor[K, V], error) {
	if region == "" {
		return nil, ErrEmptyRegion
	}
	if store == nil {
		return nil, errors.New("l2cache: store is required")
	}
	if loader == nil {
		return nil, errors.New("l2cache: loader is required")
	}

	a := &CacheAccessor[K, V]{
		region: region,
		store:  store,
		loader: loader,
	}
	for _, o := range opts {
		o.apply(a)
	}
	if a.coordinator == nil {
		a.coordinator = singleflight.New()
	}
	if a.cloner == nil {
		a.cloner = DefaultValueCloner[V]()
	}
	if a.logger == nil {
		a.logger = NopLogger{}
	}
	if a.recorder == nil {
		a.recorder = NopRecorder{}
	}
	return a, nil
}

// Region returns the region name.
func (a *CacheAccessor[K, V]) Region() string {
	return a.region
}

// Store returns the underlying store.
func (a *CacheAccessor[K, V]) Store() Store[K, V] {
	return a.store
}

// GetOrLoad returns the value associated with the key.
// On a cache miss, the value is loaded from the backing store and written to the store.
// Concurrent calls for the same key share one load and receive the same value or error.
// A failing store read is treated as a miss, and a failing store write does not fail the call.
func (a *CacheAccessor[K, V]) GetOrLoad(ctx context.Context, key K) (V, error) {
	if value, ok := a.get(ctx, key); ok {
		a.recorder.Hit(a.region, 1)
		return value, nil
	}
	a.recorder.Miss(a.region, 1)

	loaded, shared, err := a.coordinator.Do(ctx, a.region, key, func(ctx context.Context) (any, error) {
		// a load that finished between the first lookup and joining the flight is reused
		if value, ok := a.get(ctx, key); ok {
			return value, nil
		}
		value, err := a.loadAndStore(ctx, key)
		if err != nil {
			return nil, err
		}
		return value, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}

	value, _ := loaded.(V)
	if shared {
		a.recorder.Shared(a.region)
		return a.cloner.CloneValue(value), nil
	}
	return value, nil
}

// BatchGetOrLoad returns the values associated with the keys, loading all misses with
// exactly one LoadMany call of the loader.
//
// Keys found neither in the store nor by the loader are omitted from the result.
// A loader failure fails the whole call with *LoadError.
// Overlapping concurrent batches are not deduplicated against each other.
func (a *CacheAccessor[K, V]) BatchGetOrLoad(ctx context.Context, keys []K) (map[K]V, error) {
	return a.BatchGetOrLoadFunc(ctx, keys, a.loader.LoadMany)
}

// BatchGetOrLoadFunc is like BatchGetOrLoad but loads the misses with loadMany instead of the loader.
func (a *CacheAccessor[K, V]) BatchGetOrLoadFunc(ctx context.Context, keys []K, loadMany LoadManyFunc[K, V]) (map[K]V, error) {
	keys = slices.Collect(iterutil.Uniq(slices.Values(keys)))
	result := make(map[K]V, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	hits, err := a.store.BatchGet(ctx, a.region, keys)
	if err != nil {
		_ = a.storeFailure(OpBatchGet, err)
		hits = nil
	}
	misses := make([]K, 0, len(keys))
	for _, key := range keys {
		if value, ok := hits[key]; ok {
			result[key] = value
		} else {
			misses = append(misses, key)
		}
	}
	a.recorder.Hit(a.region, len(result))
	if len(misses) == 0 {
		return result, nil
	}
	a.recorder.Miss(a.region, len(misses))

	loaded, err := loadMany(ctx, misses)
	a.recorder.Load(a.region, err)
	if err != nil {
		a.logger.Debug("l2cache: batch load failed", Fields{"region": a.region, "keys": len(misses), "error": err})
		return nil, &LoadError{Region: a.region, Keys: anyKeys(misses), Err: err}
	}

	found := 0
	for _, key := range misses {
		value, ok := loaded[key]
		if !ok {
			continue
		}
		found++
		a.put(ctx, key, value)
		result[key] = value
	}
	if found != len(loaded) {
		a.logger.Debug("l2cache: loader returned keys that were not requested", Fields{"region": a.region, "ignored": len(loaded) - found})
	}
	return result, nil
}

// Put writes the value to the store, overwriting any existing value, and returns it.
// It does not touch the backing store.
func (a *CacheAccessor[K, V]) Put(ctx context.Context, key K, value V) (V, error) {
	if err := a.store.Put(ctx, a.region, key, value); err != nil {
		var zero V
		return zero, a.storeFailure(OpPut, err)
	}
	return value, nil
}

// Reload loads the value from the backing store regardless of the cached value,
// writes it to the store and returns it.
// It is not deduplicated against in-flight GetOrLoad calls.
func (a *CacheAccessor[K, V]) Reload(ctx context.Context, key K) (V, error) {
	return a.loadAndStore(ctx, key)
}

// Evict removes the value from the store. Evicting an absent key is not an error.
func (a *CacheAccessor[K, V]) Evict(ctx context.Context, key K) error {
	if err := a.store.Evict(ctx, a.region, key); err != nil {
		return a.storeFailure(OpEvict, err)
	}
	return nil
}

// get reads the store and treats a store failure as a miss.
func (a *CacheAccessor[K, V]) get(ctx context.Context, key K) (V, bool) {
	value, ok, err := a.store.Get(ctx, a.region, key)
	if err != nil {
		_ = a.storeFailure(OpGet, err)
		var zero V
		return zero, false
	}
	return value, ok
}

// put writes the store and only logs a failure.
func (a *CacheAccessor[K, V]) put(ctx context.Context, key K, value V) {
	if err := a.store.Put(ctx, a.region, key, value); err != nil {
		_ = a.storeFailure(OpPut, err)
	}
}

// loadAndStore loads one key from the backing store and writes it to the store.
func (a *CacheAccessor[K, V]) loadAndStore(ctx context.Context, key K) (V, error) {
	value, err := a.loader.LoadOne(ctx, key)
	a.recorder.Load(a.region, err)
	if err != nil {
		a.logger.Debug("l2cache: load failed", Fields{"region": a.region, "key": key, "error": err})
		var zero V
		return zero, &LoadError{Region: a.region, Key: key, Err: err}
	}
	a.put(ctx, key, value)
	return value, nil
}

func (a *CacheAccessor[K, V]) storeFailure(op string, err error) error {
	a.recorder.StoreFailure(a.region, op)
	a.logger.Warn("l2cache: store operation failed", Fields{"region": a.region, "op": op, "error": err})
	return &StoreError{Op: op, Region: a.region, Err: err}
}

func anyKeys[K KeyConstraint](keys []K) []any {
	out := make([]any, len(keys))
	for i, key := range keys {
		out[i] = key
	}
	return out
}
