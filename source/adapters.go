package source

import (
	"context"
	"errors"
	"sync"

	"github.com/Johntang666/l2cache"
	"github.com/sourcegraph/conc/pool"
)

// Funcs is a loader that uses functions to load the values.
type Funcs[K l2cache.KeyConstraint, V l2cache.ValueConstraint] struct {
	// LoadOneFunc loads a value by key.
	// If the key is not found, it should return l2cache.ErrNotFound.
	LoadOneFunc func(context.Context, K) (V, error)
	// LoadManyFunc loads multiple values by keys.
	// Keys that are not found must be absent from the result.
	LoadManyFunc func(context.Context, []K) (map[K]V, error)
}

var _ l2cache.Loader[uint8, struct{}] = (*Funcs[uint8, struct{}])(nil)

// LoadOne calls the LoadOneFunc function.
func (s *Funcs[K, V]) LoadOne(ctx context.Context, key K) (V, error) {
	return s.LoadOneFunc(ctx, key)
}

// LoadMany calls the LoadManyFunc function.
func (s *Funcs[K, V]) LoadMany(ctx context.Context, keys []K) (map[K]V, error) {
	return s.LoadManyFunc(ctx, keys)
}

// LoadManyFunc is a loader that uses one bulk-load function for both single and bulk loads.
type LoadManyFunc[K l2cache.KeyConstraint, V l2cache.ValueConstraint] func(context.Context, []K) (map[K]V, error)

var _ l2cache.Loader[uint8, struct{}] = (LoadManyFunc[uint8, struct{}])(nil)

// LoadOne loads the key with a bulk load of one key.
// It returns l2cache.ErrNotFound if the key is absent from the result.
func (s LoadManyFunc[K, V]) LoadOne(ctx context.Context, key K) (V, error) {
	values, err := s(ctx, []K{key})
	if err != nil {
		var zero V
		return zero, err
	}
	value, ok := values[key]
	if !ok {
		return value, l2cache.ErrNotFound
	}
	return value, nil
}

// LoadMany calls the function.
func (s LoadManyFunc[K, V]) LoadMany(ctx context.Context, keys []K) (map[K]V, error) {
	return s(ctx, keys)
}

// PerKey is a loader for backing stores that can only load one key at a time.
// LoadMany calls Load for every key concurrently.
type PerKey[K l2cache.KeyConstraint, V l2cache.ValueConstraint] struct {
	// Load loads a value by key.
	// If the key is not found, it should return l2cache.ErrNotFound.
	Load func(context.Context, K) (V, error)
	// MaxGoroutines limits the number of concurrent calls of Load in LoadMany.
	// Zero means no limit.
	MaxGoroutines int
}

var _ l2cache.Loader[uint8, struct{}] = (*PerKey[uint8, struct{}])(nil)

// LoadOne calls the Load function.
func (s *PerKey[K, V]) LoadOne(ctx context.Context, key K) (V, error) {
	return s.Load(ctx, key)
}

// LoadMany calls the Load function for every key.
// Keys for which Load returns l2cache.ErrNotFound are absent from the result.
// Any other error cancels the remaining loads and is returned.
func (s *PerKey[K, V]) LoadMany(ctx context.Context, keys []K) (map[K]V, error) {
	p := pool.New()
	if s.MaxGoroutines > 0 {
		p = p.WithMaxGoroutines(s.MaxGoroutines)
	}
	cp := p.WithContext(ctx).WithCancelOnError().WithFirstError()

	var mu sync.Mutex
	values := make(map[K]V, len(keys))
	for _, key := range keys {
		cp.Go(func(ctx context.Context) error {
			value, err := s.Load(ctx, key)
			if errors.Is(err, l2cache.ErrNotFound) {
				return nil
			} else if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			values[key] = value
			return nil
		})
	}
	if err := cp.Wait(); err != nil {
		return nil, err
	}
	return values, nil
}
