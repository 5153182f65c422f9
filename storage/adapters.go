package storage

import (
	"context"

	"github.com/Johntang666/l2cache"
)

var _ l2cache.Store[uint8, struct{}] = (*SilentErrorStore[uint8, struct{}])(nil)

// SilentErrorStore is a decorator for a l2cache.Store that silently handles
// errors during operations. Instead of propagating the error, it calls the provided OnError function.
type SilentErrorStore[K l2cache.KeyConstraint, V l2cache.ValueConstraint] struct {
	// Store is the underlying store that this decorator wraps.
	Store l2cache.Store[K, V]
	// OnError is called with the operation name and the error when an operation fails.
	OnError func(op string, err error)
}

// Get retrieves the value from the underlying store.
// On error it reports the error and returns a miss.
func (s *SilentErrorStore[K, V]) Get(ctx context.Context, region string, key K) (V, bool, error) {
	value, ok, err := s.Store.Get(ctx, region, key)
	if err != nil {
		s.report(l2cache.OpGet, err)
		var zero V
		return zero, false, nil
	}
	return value, ok, nil
}

// BatchGet retrieves the values from the underlying store.
// On error it reports the error and returns an empty map.
func (s *SilentErrorStore[K, V]) BatchGet(ctx context.Context, region string, keys []K) (map[K]V, error) {
	values, err := s.Store.BatchGet(ctx, region, keys)
	if err != nil {
		s.report(l2cache.OpBatchGet, err)
		return map[K]V{}, nil
	}
	return values, nil
}

// Put stores the value in the underlying store. It always returns nil.
func (s *SilentErrorStore[K, V]) Put(ctx context.Context, region string, key K, value V) error {
	if err := s.Store.Put(ctx, region, key, value); err != nil {
		s.report(l2cache.OpPut, err)
	}
	return nil
}

// Evict removes the value from the underlying store. It always returns nil.
func (s *SilentErrorStore[K, V]) Evict(ctx context.Context, region string, key K) error {
	if err := s.Store.Evict(ctx, region, key); err != nil {
		s.report(l2cache.OpEvict, err)
	}
	return nil
}

func (s *SilentErrorStore[K, V]) report(op string, err error) {
	if s.OnError != nil {
		s.OnError(op, err)
	}
}

var _ l2cache.Store[uint8, struct{}] = (*FunctionsStore[uint8, struct{}])(nil)

// FunctionsStore is a l2cache.Store implementation that uses functions to perform the store operations.
type FunctionsStore[K l2cache.KeyConstraint, V l2cache.ValueConstraint] struct {
	// GetFunc retrieves a value by its key.
	// It returns false if the key is not found or expired.
	GetFunc func(context.Context, string, K) (V, bool, error)
	// BatchGetFunc retrieves multiple values. The result contains only found keys.
	BatchGetFunc func(context.Context, string, []K) (map[K]V, error)
	// PutFunc stores a value, overwriting any existing value.
	PutFunc func(context.Context, string, K, V) error
	// EvictFunc removes a value.
	EvictFunc func(context.Context, string, K) error
}

// Get calls the GetFunc function.
func (s *FunctionsStore[K, V]) Get(ctx context.Context, region string, key K) (V, bool, error) {
	return s.GetFunc(ctx, region, key)
}

// BatchGet calls the BatchGetFunc function.
func (s *FunctionsStore[K, V]) BatchGet(ctx context.Context, region string, keys []K) (map[K]V, error) {
	return s.BatchGetFunc(ctx, region, keys)
}

// Put calls the PutFunc function.
func (s *FunctionsStore[K, V]) Put(ctx context.Context, region string, key K, value V) error {
	return s.PutFunc(ctx, region, key, value)
}

// Evict calls the EvictFunc function.
func (s *FunctionsStore[K, V]) Evict(ctx context.Context, region string, key K) error {
	return s.EvictFunc(ctx, region, key)
}
