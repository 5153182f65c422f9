package l2cache

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by loaders when the key does not exist in the backing store.
var ErrNotFound = errors.New("l2cache: key not found in backing store")

// ErrEmptyRegion is returned by New when the region name is empty.
var ErrEmptyRegion = errors.New("l2cache: region name is required")

// Store operation names used in StoreError.
const (
	OpGet      = "get"
	OpBatchGet = "batch_get"
	OpPut      = "put"
	OpEvict    = "evict"
)

// LoadError is returned when the backing store loader fails.
// Load failures are never cached, so the next call retries the load.
type LoadError struct {
	Region string
	// Key is the key of a single-key load. It is nil for batch loads.
	Key any
	// Keys are the miss keys of a batch load.
	Keys []any
	Err  error
}

func (e *LoadError) Error() string {
	if e.Key == nil {
		return fmt.Sprintf("l2cache: load %d keys in region %q: %v", len(e.Keys), e.Region, e.Err)
	}
	return fmt.Sprintf("l2cache: load key %v in region %q: %v", e.Key, e.Region, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// StoreError is returned when a cache store operation fails.
type StoreError struct {
	Op     string
	Region string
	Err    error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("l2cache: store %s in region %q: %v", e.Op, e.Region, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
