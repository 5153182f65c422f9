package refresh

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"
)

// Reloader reloads a single key into the cache. *l2cache.CacheAccessor implements it.
type Reloader[K comparable, V any] interface {
	Reload(ctx context.Context, key K) (V, error)
}

// KeysFunc returns the keys to reload on each tick.
type KeysFunc[K comparable] func(ctx context.Context) ([]K, error)

// StaticKeys returns a KeysFunc that always yields keys.
func StaticKeys[K comparable](keys ...K) KeysFunc[K] {
	return func(context.Context) ([]K, error) {
		return keys, nil
	}
}

// Refresher is a background worker that reloads a set of keys at a fixed interval.
// Errors from a refresh round are passed to the error callback and never stop the worker.
type Refresher[K comparable, V any] struct {
	reloader          Reloader[K, V]
	keys              KeysFunc[K]
	interval          time.Duration
	maxGoroutines     int
	onBackgroundError func(error)
}

// New creates a Refresher. onBackgroundError receives every failed round; it may be nil.
func New[K comparable, V any](reloader Reloader[K, V], keys KeysFunc[K], interval time.Duration, onBackgroundError func(error), opts ...Option) *Refresher[K, V] {
	if interval <= 0 {
		panic("refresh: interval must be positive")
	}
	if onBackgroundError == nil {
		onBackgroundError = func(error) {}
	}
	r := &Refresher[K, V]{
		reloader:          reloader,
		keys:              keys,
		interval:          interval,
		maxGoroutines:     DefaultMaxGoroutines,
		onBackgroundError: onBackgroundError,
	}
	for _, opt := range opts {
		opt.apply(&r.maxGoroutines)
	}
	return r
}

// Refresh reloads every key once. Keys that fail to reload are reported together.
func (r *Refresher[K, V]) Refresh(ctx context.Context) error {
	keys, err := r.keys(ctx)
	if err != nil {
		return fmt.Errorf("refresh: list keys: %w", err)
	}

	p := pool.New().WithErrors().WithContext(ctx).WithMaxGoroutines(r.maxGoroutines)
	for _, key := range keys {
		p.Go(func(ctx context.Context) error {
			if _, err := r.reloader.Reload(ctx, key); err != nil {
				return fmt.Errorf("refresh: reload key %v: %w", key, err)
			}
			return nil
		})
	}
	return p.Wait()
}

// LaunchBackgroundRefresher starts the background worker.
// The worker stops when ctx is canceled; the returned channel is closed once it has exited.
func (r *Refresher[K, V]) LaunchBackgroundRefresher(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		r.poll(ctx)
	}()
	return done
}

func (r *Refresher[K, V]) poll(ctx context.Context) {
	r.refresh(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *Refresher[K, V]) refresh(ctx context.Context) {
	if err := r.Refresh(ctx); err != nil && !errors.Is(ctx.Err(), context.Canceled) {
		r.onBackgroundError(err)
	}
}
