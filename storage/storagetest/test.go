// storagetest package provides generic test cases for l2cache.Store implementations.
package storagetest

import (
	"context"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"golang.org/x/sync/errgroup"

	"github.com/Johntang666/l2cache"
)

// Region is the region name the test cases write to.
const Region = "storagetest"

// OtherRegion is a second region used to check region isolation.
const OtherRegion = "storagetest-other"

// BenchmarkPut benchmarks the Put method of the store.
func BenchmarkPut[K l2cache.KeyConstraint, V l2cache.ValueConstraint](b *testing.B, store l2cache.Store[K, V], keys []K) {
	var zero V
	ctx := b.Context()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		store.Put(ctx, Region, keys[i%len(keys)], zero)
	}
}

// TestClonerStruct is a value type with a Clone method.
type TestClonerStruct struct {
	Value int8
}

func (s *TestClonerStruct) Clone() *TestClonerStruct {
	return &TestClonerStruct{Value: s.Value}
}

// TestCloneStruct tests that the store never hands out the pointer it was given or a pointer it keeps.
func TestCloneStruct(t *testing.T, provider func() (l2cache.Store[uint8, *TestClonerStruct], func())) {
	t.Run("CloneStruct", func(t *testing.T) {
		t.Parallel()

		store, release := provider()
		defer release()
		testNotAliased(t, store, &TestClonerStruct{Value: 1})
	})
}

// TestDeepCopyerStruct is a value type with a DeepCopy method.
type TestDeepCopyerStruct struct {
	Value int8
}

func (s *TestDeepCopyerStruct) DeepCopy() *TestDeepCopyerStruct {
	return &TestDeepCopyerStruct{Value: s.Value}
}

// TestDeepCopyStruct is TestCloneStruct for values with a DeepCopy method.
func TestDeepCopyStruct(t *testing.T, provider func() (l2cache.Store[uint8, *TestDeepCopyerStruct], func())) {
	t.Run("DeepCopyStruct", func(t *testing.T) {
		t.Parallel()

		store, release := provider()
		defer release()
		testNotAliased(t, store, &TestDeepCopyerStruct{Value: 1})
	})
}

func testNotAliased[V comparable](t *testing.T, store l2cache.Store[uint8, V], original V) {
	t.Helper()

	if err := store.Put(t.Context(), Region, 1, original); err != nil {
		t.Fatal(err)
	}

	got, ok, err := store.Get(t.Context(), Region, 1)
	if err != nil {
		t.Fatal(err)
	} else if !ok {
		t.Fatal("should exist")
	}
	if got == original {
		t.Error("value must be cloned, but got same that")
	}
	if df := cmp.Diff(original, got); df != "" {
		t.Errorf("value diff=%s", df)
	}

	before := got
	got, _, err = store.Get(t.Context(), Region, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got == before {
		t.Error("value must be cloned, but got same that")
	}

	values, err := store.BatchGet(t.Context(), Region, []uint8{1})
	if err != nil {
		t.Fatal(err)
	}
	if values[1] == original || values[1] == got {
		t.Error("batch value must be cloned, but got same that")
	}
	if df := cmp.Diff(original, values[1]); df != "" {
		t.Errorf("batch value diff=%s", df)
	}
}

var patterns = []l2cache.Entry[uint8, int8]{
	{Key: 0, Value: 1},
	{Key: 1, Value: 2},
	{Key: 2, Value: 3},
	{Key: 3, Value: 4},
	{Key: 4, Value: 5},
	{Key: 251, Value: 124},
	{Key: 252, Value: 125},
	{Key: 253, Value: 126},
	{Key: 254, Value: 127},
	{Key: 255, Value: -128},
}

func shuffled() []l2cache.Entry[uint8, int8] {
	s := make([]l2cache.Entry[uint8, int8], len(patterns))
	copy(s, patterns)
	rand.Shuffle(len(s), func(i, j int) {
		s[i], s[j] = s[j], s[i]
	})
	return s
}

func putAll(ctx context.Context, store l2cache.Store[uint8, int8], region string, entries []l2cache.Entry[uint8, int8]) error {
	var eg errgroup.Group
	for _, entry := range entries {
		eg.Go(func() error {
			return store.Put(ctx, region, entry.Key, entry.Value)
		})
	}
	return eg.Wait()
}

// TestConsistency tests the basic read-after-write behavior of the store.
func TestConsistency(t *testing.T, provider func() (l2cache.Store[uint8, int8], func())) {
	t.Run("Consistency", func(t *testing.T) {
		t.Parallel()

		t.Run("PutAndGet", func(t *testing.T) {
			t.Parallel()

			store, release := provider()
			defer release()

			entries := shuffled()
			var eg errgroup.Group
			for _, entry := range entries {
				eg.Go(func() error {
					_, ok, err := store.Get(t.Context(), Region, entry.Key)
					if err != nil {
						return err
					} else if ok {
						return fmt.Errorf("unexpected exists value for key %d", entry.Key)
					}
					return nil
				})
			}
			if err := eg.Wait(); err != nil {
				t.Fatal(err)
			}

			if err := putAll(t.Context(), store, Region, entries); err != nil {
				t.Fatal(err)
			}

			eg = errgroup.Group{}
			got := make([]l2cache.Entry[uint8, int8], len(entries))
			for i, entry := range entries {
				eg.Go(func() error {
					value, ok, err := store.Get(t.Context(), Region, entry.Key)
					if err != nil {
						return err
					} else if !ok {
						return fmt.Errorf("missing value for key %d", entry.Key)
					}
					got[i] = l2cache.Entry[uint8, int8]{Key: entry.Key, Value: value}
					return nil
				})
			}
			if err := eg.Wait(); err != nil {
				t.Fatal(err)
			}
			if df := cmp.Diff(entries, got); df != "" {
				t.Errorf("entries diff=%s", df)
			}
		})

		t.Run("BatchGet", func(t *testing.T) {
			t.Parallel()

			store, release := provider()
			defer release()

			entries := shuffled()
			if err := putAll(t.Context(), store, Region, entries[:5]); err != nil {
				t.Fatal(err)
			}

			keys := make([]uint8, len(entries))
			want := map[uint8]int8{}
			for i, entry := range entries {
				keys[i] = entry.Key
				if i < 5 {
					want[entry.Key] = entry.Value
				}
			}
			got, err := store.BatchGet(t.Context(), Region, keys)
			if err != nil {
				t.Fatal(err)
			}
			if df := cmp.Diff(want, got); df != "" {
				t.Errorf("BatchGet diff=%s", df)
			}

			got, err = store.BatchGet(t.Context(), Region, nil)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != 0 {
				t.Errorf("BatchGet(nil) = %v, want empty", got)
			}
		})

		t.Run("Overwrite", func(t *testing.T) {
			t.Parallel()

			store, release := provider()
			defer release()

			for _, v := range []int8{1, 2, 3} {
				if err := store.Put(t.Context(), Region, 1, v); err != nil {
					t.Fatal(err)
				}
				got, ok, err := store.Get(t.Context(), Region, 1)
				if err != nil {
					t.Fatal(err)
				}
				if !ok || got != v {
					t.Errorf("Get() = (%d, %v), want (%d, true)", got, ok, v)
				}
			}
		})

		t.Run("Evict", func(t *testing.T) {
			t.Parallel()

			store, release := provider()
			defer release()

			if err := store.Evict(t.Context(), Region, 1); err != nil {
				t.Errorf("Evict of absent key should not fail: %v", err)
			}
			if err := store.Put(t.Context(), Region, 1, 1); err != nil {
				t.Fatal(err)
			}
			if err := store.Put(t.Context(), Region, 2, 2); err != nil {
				t.Fatal(err)
			}
			for range 2 {
				if err := store.Evict(t.Context(), Region, 1); err != nil {
					t.Fatal(err)
				}
			}
			if _, ok, err := store.Get(t.Context(), Region, 1); err != nil {
				t.Fatal(err)
			} else if ok {
				t.Error("evicted key should not exist")
			}
			if _, ok, err := store.Get(t.Context(), Region, 2); err != nil {
				t.Fatal(err)
			} else if !ok {
				t.Error("other key should still exist")
			}
		})

		t.Run("RegionIsolation", func(t *testing.T) {
			t.Parallel()

			store, release := provider()
			defer release()

			if err := store.Put(t.Context(), Region, 1, 1); err != nil {
				t.Fatal(err)
			}
			if err := store.Put(t.Context(), OtherRegion, 1, -1); err != nil {
				t.Fatal(err)
			}

			got, err := store.BatchGet(t.Context(), Region, []uint8{1})
			if err != nil {
				t.Fatal(err)
			}
			if df := cmp.Diff(map[uint8]int8{1: 1}, got); df != "" {
				t.Errorf("region diff=%s", df)
			}
			got, err = store.BatchGet(t.Context(), OtherRegion, []uint8{1})
			if err != nil {
				t.Fatal(err)
			}
			if df := cmp.Diff(map[uint8]int8{1: -1}, got); df != "" {
				t.Errorf("other region diff=%s", df)
			}

			if err := store.Evict(t.Context(), OtherRegion, 1); err != nil {
				t.Fatal(err)
			}
			if _, ok, err := store.Get(t.Context(), Region, 1); err != nil {
				t.Fatal(err)
			} else if !ok {
				t.Error("evicting from another region must not remove the key")
			}
		})
	})
}

// FixedClock is a l2cache.Clock that returns Time.
type FixedClock struct {
	Time time.Time
}

func (c *FixedClock) Now() time.Time {
	return c.Time
}

// TestExpiration tests that entries expire one hour after they are written.
// The provider must configure the store with the clock and a fixed one hour TTL.
func TestExpiration(t *testing.T, provider func(l2cache.Clock) (l2cache.Store[uint8, int8], func())) {
	t.Run("Expiration", func(t *testing.T) {
		t.Parallel()

		base := time.Now()
		clock := &FixedClock{Time: base}
		store, release := provider(clock)
		defer release()

		if err := store.Put(t.Context(), Region, 1, 1); err != nil {
			t.Fatal(err)
		}
		if err := store.Put(t.Context(), Region, 2, 2); err != nil {
			t.Fatal(err)
		}

		tests := []struct {
			at   time.Duration
			want map[uint8]int8
		}{
			{at: 0, want: map[uint8]int8{1: 1, 2: 2}},
			{at: time.Hour - time.Second, want: map[uint8]int8{1: 1, 2: 2}},
			{at: time.Hour, want: map[uint8]int8{}},
			{at: time.Hour + time.Second, want: map[uint8]int8{}},
		}
		for _, tt := range tests {
			clock.Time = base.Add(tt.at)

			value, ok, err := store.Get(t.Context(), Region, 1)
			if err != nil {
				t.Fatal(err)
			}
			if _, want := tt.want[1]; ok != want || (ok && value != 1) {
				t.Errorf("at %v: Get() = (%d, %v), want exists=%v", tt.at, value, ok, want)
			}

			got, err := store.BatchGet(t.Context(), Region, []uint8{1, 2, 3})
			if err != nil {
				t.Fatal(err)
			}
			if df := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); df != "" {
				t.Errorf("at %v: BatchGet diff=%s", tt.at, df)
			}
		}

		if err := store.Put(t.Context(), Region, 1, 3); err != nil {
			t.Fatal(err)
		}
		if value, ok, err := store.Get(t.Context(), Region, 1); err != nil {
			t.Fatal(err)
		} else if !ok || value != 3 {
			t.Errorf("rewritten entry Get() = (%d, %v), want (3, true)", value, ok)
		}
	})
}
