package l2cache_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Johntang666/l2cache"
	"github.com/Johntang666/l2cache/expiration"
	"github.com/Johntang666/l2cache/source"
	"github.com/Johntang666/l2cache/storage/memstore"
)

// Brand represents a brand entity
type Brand struct {
	ID   int
	Name string
}

func (b Brand) Clone() Brand {
	return Brand{ID: b.ID, Name: b.Name}
}

var brandTable = map[int]Brand{
	1: {ID: 1, Name: "Acme"},
	2: {ID: 2, Name: "Globex"},
	3: {ID: 3, Name: "Initech"},
}

func newBrandAccessor() *l2cache.CacheAccessor[int, Brand] {
	// Create an in-memory store whose entries live for ten minutes
	store := memstore.New(memstore.WithExpiration[int, Brand](expiration.Fixed(10 * time.Minute)))

	// Create a loader that simulates loading brands from a database
	loader := source.LoadManyFunc[int, Brand](func(_ context.Context, ids []int) (map[int]Brand, error) {
		fmt.Printf("load %v\n", ids)
		result := map[int]Brand{}
		for _, id := range ids {
			if b, ok := brandTable[id]; ok {
				result[id] = b
			}
		}
		return result, nil
	})

	accessor, err := l2cache.New[int, Brand]("brand", store, loader)
	if err != nil {
		panic(err)
	}
	return accessor
}

func ExampleCacheAccessor_GetOrLoad() {
	accessor := newBrandAccessor()
	ctx := context.Background()

	// The first call loads the brand
	b, err := accessor.GetOrLoad(ctx, 1)
	if err != nil {
		panic(err)
	}
	fmt.Println(b.Name)

	// The second call is served from the store
	b, err = accessor.GetOrLoad(ctx, 1)
	if err != nil {
		panic(err)
	}
	fmt.Println(b.Name)

	// Unknown brands are reported as not found
	_, err = accessor.GetOrLoad(ctx, 9)
	fmt.Println(errors.Is(err, l2cache.ErrNotFound))

	// Output:
	// load [1]
	// Acme
	// Acme
	// load [9]
	// true
}

func ExampleCacheAccessor_BatchGetOrLoad() {
	accessor := newBrandAccessor()
	ctx := context.Background()

	if _, err := accessor.GetOrLoad(ctx, 1); err != nil {
		panic(err)
	}

	// Only the misses are loaded, with one call; unknown brands are omitted
	brands, err := accessor.BatchGetOrLoad(ctx, []int{1, 2, 3, 9})
	if err != nil {
		panic(err)
	}
	ids := make([]int, 0, len(brands))
	for id := range brands {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		fmt.Println(id, brands[id].Name)
	}

	// Output:
	// load [1]
	// load [2 3 9]
	// 1 Acme
	// 2 Globex
	// 3 Initech
}

func ExampleCacheAccessor_Put() {
	accessor := newBrandAccessor()
	ctx := context.Background()

	// Write-through after updating the database
	if _, err := accessor.Put(ctx, 1, Brand{ID: 1, Name: "Acme Corp"}); err != nil {
		panic(err)
	}
	b, _ := accessor.GetOrLoad(ctx, 1)
	fmt.Println(b.Name)

	// Reload always reads the database
	b, _ = accessor.Reload(ctx, 1)
	fmt.Println(b.Name)

	// Evict drops the entry so that the next read loads it
	if err := accessor.Evict(ctx, 1); err != nil {
		panic(err)
	}
	b, _ = accessor.GetOrLoad(ctx, 1)
	fmt.Println(b.Name)

	// Output:
	// Acme Corp
	// load [1]
	// Acme
	// load [1]
	// Acme
}
