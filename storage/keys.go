package storage

import (
	"fmt"

	"github.com/Johntang666/l2cache"
)

// KeyFunc formats a key as a string for stores addressed by string keys.
// It must be injective: two different keys must not produce the same string.
type KeyFunc[K l2cache.KeyConstraint] func(K) string

// DefaultKeyFunc formats keys with fmt.Sprint.
func DefaultKeyFunc[K l2cache.KeyConstraint]() KeyFunc[K] {
	return func(key K) string {
		return fmt.Sprint(key)
	}
}

// EntryKey returns the string key of an entry, "<prefix><region>:<key>".
func EntryKey(prefix, region, key string) string {
	return prefix + region + ":" + key
}
