// Package tiered composes several l2cache.Store tiers, typically an in-process L1
// and a distributed L2, into one store.
//
// Reads probe the tiers from the top and write a lower-tier hit back to the tiers
// above it. Writes and evictions go to every tier concurrently.
package tiered

import (
	"context"
	"errors"
	"fmt"

	"github.com/sourcegraph/conc/pool"

	"github.com/Johntang666/l2cache"
	"github.com/Johntang666/l2cache/storage"
)

// Tier is one level of a tiered store.
type Tier[K l2cache.KeyConstraint, V l2cache.ValueConstraint] struct {
	// Name identifies the tier in logs and errors, such as "l1" or "redis".
	Name string
	// Store is the tier's store.
	Store l2cache.Store[K, V]
	// Optional tiers never fail a Put or Evict; their errors are only logged.
	Optional bool
}

// Store is a l2cache.Store over ordered tiers.
type Store[K l2cache.KeyConstraint, V l2cache.ValueConstraint] struct {
	tiers   []Tier[K, V]
	options options
}

var _ l2cache.Store[uint8, struct{}] = (*Store[uint8, struct{}])(nil)

// New creates a Store. Tiers are ordered from the top, the fastest tier first.
func New[K l2cache.KeyConstraint, V l2cache.ValueConstraint](tiers []Tier[K, V], opts ...Option) (*Store[K, V], error) {
	if len(tiers) == 0 {
		return nil, errors.New("tiered: at least one tier is required")
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt.apply(&options)
	}

	s := &Store[K, V]{tiers: make([]Tier[K, V], len(tiers)), options: options}
	for i, tier := range tiers {
		if tier.Store == nil {
			return nil, fmt.Errorf("tiered: tier %d has no store", i)
		}
		if tier.Name == "" {
			tier.Name = fmt.Sprintf("tier%d", i)
		}
		if tier.Optional {
			tier.Store = &storage.SilentErrorStore[K, V]{
				Store:   tier.Store,
				OnError: s.logFailure(tier.Name),
			}
		}
		s.tiers[i] = tier
	}
	return s, nil
}

func (s *Store[K, V]) logFailure(tier string) func(op string, err error) {
	return func(op string, err error) {
		s.options.logger.Warn("tiered: tier operation failed", l2cache.Fields{"tier": tier, "op": op, "error": err})
	}
}

// Get probes the tiers from the top. A hit is written back to the tiers above the hit tier.
// A failing tier is logged and treated as a miss.
func (s *Store[K, V]) Get(ctx context.Context, region string, key K) (V, bool, error) {
	for i, tier := range s.tiers {
		value, ok, err := tier.Store.Get(ctx, region, key)
		if err != nil {
			s.logFailure(tier.Name)(l2cache.OpGet, err)
			continue
		}
		if ok {
			s.backfill(ctx, region, i, map[K]V{key: value})
			return value, true, nil
		}
	}
	var zero V
	return zero, false, nil
}

// BatchGet probes the tiers from the top with the keys still missing.
// Hits are written back to the tiers above the hit tier.
// A failing tier is logged and treated as a miss.
func (s *Store[K, V]) BatchGet(ctx context.Context, region string, keys []K) (map[K]V, error) {
	result := make(map[K]V, len(keys))
	pending := keys
	for i, tier := range s.tiers {
		if len(pending) == 0 {
			break
		}

		found, err := tier.Store.BatchGet(ctx, region, pending)
		if err != nil {
			s.logFailure(tier.Name)(l2cache.OpBatchGet, err)
			continue
		}
		if len(found) == 0 {
			continue
		}

		hits := make(map[K]V, len(found))
		rest := make([]K, 0, len(pending))
		for _, key := range pending {
			if value, ok := found[key]; ok {
				hits[key] = value
				result[key] = value
			} else {
				rest = append(rest, key)
			}
		}
		s.backfill(ctx, region, i, hits)
		pending = rest
	}
	return result, nil
}

// backfill writes entries found in tier hit to every tier above it.
// Failures are logged only.
func (s *Store[K, V]) backfill(ctx context.Context, region string, hit int, entries map[K]V) {
	if !s.options.backfill || hit == 0 || len(entries) == 0 {
		return
	}

	p := pool.New()
	for _, tier := range s.tiers[:hit] {
		p.Go(func() {
			for key, value := range entries {
				if err := tier.Store.Put(ctx, region, key, value); err != nil {
					s.logFailure(tier.Name)(l2cache.OpPut, err)
				}
			}
		})
	}
	p.Wait()
}

// Put writes the value to every tier concurrently.
// The errors of the failing tiers are joined.
func (s *Store[K, V]) Put(ctx context.Context, region string, key K, value V) error {
	return s.fanOut(func(tier Tier[K, V]) error {
		return tier.Store.Put(ctx, region, key, value)
	})
}

// Evict removes the value from every tier concurrently.
// The errors of the failing tiers are joined.
func (s *Store[K, V]) Evict(ctx context.Context, region string, key K) error {
	return s.fanOut(func(tier Tier[K, V]) error {
		return tier.Store.Evict(ctx, region, key)
	})
}

func (s *Store[K, V]) fanOut(f func(Tier[K, V]) error) error {
	p := pool.New().WithErrors()
	for _, tier := range s.tiers {
		p.Go(func() error {
			if err := f(tier); err != nil {
				return fmt.Errorf("tier %s: %w", tier.Name, err)
			}
			return nil
		})
	}
	return p.Wait()
}
