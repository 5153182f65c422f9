package memstore_test

import (
	"strconv"
	"testing"
	"time"

	"github.com/Johntang666/l2cache"
	"github.com/Johntang666/l2cache/expiration"
	"github.com/Johntang666/l2cache/storage/memstore"
	"github.com/Johntang666/l2cache/storage/storagetest"
)

func BenchmarkPut(b *testing.B) {
	keys := make([]uint8, 1024)
	for i := range keys {
		keys[i] = uint8(i % 256)
	}
	b.Run("SingleBucket", func(b *testing.B) {
		storagetest.BenchmarkPut(b, memstore.New(memstore.WithBucketsSize[uint8, int8](1)), keys)
	})
	b.Run("MultipleBucket", func(b *testing.B) {
		storagetest.BenchmarkPut(b, memstore.New[uint8, int8](), keys)
	})
}

func TestConsistency(t *testing.T) {
	t.Parallel()
	for i := range 7 {
		t.Run(strconv.Itoa(i+1), func(t *testing.T) {
			t.Parallel()

			storagetest.TestConsistency(t, func() (l2cache.Store[uint8, int8], func()) {
				return memstore.New(memstore.WithBucketsSize[uint8, int8](i + 1)), func() {}
			})
		})
	}
}

func TestKeyHash(t *testing.T) {
	t.Parallel()
	for i := range 7 {
		t.Run(strconv.Itoa(i+1), func(t *testing.T) {
			t.Parallel()

			storagetest.TestConsistency(t, func() (l2cache.Store[uint8, int8], func()) {
				bucketSize := i + 1
				return memstore.New(memstore.WithBucketsSize[uint8, int8](bucketSize), memstore.WithKeyHash[uint8, int8](func(key uint8) int {
					return int(key) % bucketSize
				})), func() {}
			})
		})
	}
}

func TestCloneStruct(t *testing.T) {
	t.Parallel()
	t.Run("SingleBucket", func(t *testing.T) {
		t.Parallel()

		storagetest.TestCloneStruct(t, func() (l2cache.Store[uint8, *storagetest.TestClonerStruct], func()) {
			return memstore.New(memstore.WithBucketsSize[uint8, *storagetest.TestClonerStruct](1)), func() {}
		})
	})
	t.Run("MultipleBucket", func(t *testing.T) {
		t.Parallel()

		storagetest.TestCloneStruct(t, func() (l2cache.Store[uint8, *storagetest.TestClonerStruct], func()) {
			return memstore.New(memstore.WithBucketsSize[uint8, *storagetest.TestClonerStruct](8)), func() {}
		})
	})
}

func TestDeepCopyStruct(t *testing.T) {
	t.Parallel()

	storagetest.TestDeepCopyStruct(t, func() (l2cache.Store[uint8, *storagetest.TestDeepCopyerStruct], func()) {
		return memstore.New[uint8, *storagetest.TestDeepCopyerStruct](), func() {}
	})
}

func TestExpiration(t *testing.T) {
	t.Parallel()

	storagetest.TestExpiration(t, func(clock l2cache.Clock) (l2cache.Store[uint8, int8], func()) {
		return memstore.New(
			memstore.WithClock[uint8, int8](clock),
			memstore.WithExpiration[uint8, int8](expiration.Fixed(time.Hour)),
		), func() {}
	})
}

func TestStore_DeleteExpired(t *testing.T) {
	t.Parallel()

	clock := &storagetest.FixedClock{Time: time.Now()}
	store := memstore.New(
		memstore.WithClock[string, int](clock),
		memstore.WithExpiration[string, int](expiration.Fixed(time.Minute)),
	)
	for i, key := range []string{"a", "b", "c"} {
		if err := store.Put(t.Context(), "brand", key, i); err != nil {
			t.Fatal(err)
		}
	}

	if n := store.DeleteExpired(); n != 0 {
		t.Errorf("DeleteExpired() = %d before expiry, want 0", n)
	}
	clock.Time = clock.Time.Add(time.Minute)
	if err := store.Put(t.Context(), "brand", "d", 3); err != nil {
		t.Fatal(err)
	}
	if n := store.DeleteExpired(); n != 3 {
		t.Errorf("DeleteExpired() = %d, want 3", n)
	}
	if n := store.Len(); n != 1 {
		t.Errorf("Len() = %d, want 1", n)
	}
}
