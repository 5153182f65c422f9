package keyhash

import (
	"encoding/binary"
	"fmt"
	"hash"
	"hash/fnv"
	"math"
	"sync"

	"github.com/goccy/go-reflect"
)

var (
	// funcsMutex is a mutex for funcs.
	funcsMutex = sync.RWMutex{}

	// funcs caches hash functions by key type name.
	funcs = map[string]any{}
)

// Func returns a hash function for keys of type K.
// Named types hash like their underlying kind. Other comparable kinds hash their printed form.
// The function is created once per type and shared.
func Func[K comparable]() func(K) int {
	var zero K
	name := reflect.TypeOf(zero).String()

	funcsMutex.RLock()
	if f, ok := funcs[name]; ok {
		funcsMutex.RUnlock()
		return f.(func(K) int)
	}
	funcsMutex.RUnlock()

	funcsMutex.Lock()
	defer funcsMutex.Unlock()
	if f, ok := funcs[name]; ok {
		return f.(func(K) int)
	}

	f := create[K](reflect.TypeOf(zero).Kind())
	funcs[name] = f
	return f
}

// String hashes a string, such as a region name.
func String(s string) int {
	return sum([]byte(s))
}

// Combine mixes a region hash and a key hash into a non-negative bucket hash.
func Combine(region, key int) int {
	h := uint64(region)*0x9e3779b97f4a7c15 ^ uint64(key)
	return int(h >> 1)
}

func create[K comparable](kind reflect.Kind) func(K) int {
	switch kind {
	case reflect.String:
		return func(k K) int {
			return String(reflect.ValueNoEscapeOf(k).String())
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(k K) int {
			return sumUint64(uint64(reflect.ValueNoEscapeOf(k).Int()))
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return func(k K) int {
			return sumUint64(reflect.ValueNoEscapeOf(k).Uint())
		}
	case reflect.Float32, reflect.Float64:
		return func(k K) int {
			return sumUint64(math.Float64bits(reflect.ValueNoEscapeOf(k).Float()))
		}
	case reflect.Bool:
		return func(k K) int {
			if reflect.ValueNoEscapeOf(k).Bool() {
				return sumUint64(1)
			}
			return sumUint64(0)
		}
	case reflect.Uintptr, reflect.UnsafePointer:
		panic(fmt.Sprintf("%s cannot be hash key", kind))
	default:
		return func(k K) int {
			return String(fmt.Sprintf("%#v", k))
		}
	}
}

var hashPool = sync.Pool{
	New: func() any {
		return fnv.New64a()
	},
}

func sumUint64(v uint64) int {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return sum(b[:])
}

// sum computes a non-negative FNV-1a hash of the given byte slice.
func sum(b []byte) int {
	h := hashPool.Get().(hash.Hash64)
	defer func() {
		h.Reset()
		hashPool.Put(h)
	}()
	_, _ = h.Write(b)
	return int(h.Sum64() >> 1)
}
