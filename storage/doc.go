// Package storage provides cache store adapters for l2cache.
//
// FunctionsStore builds a store from function callbacks, which is handy in tests.
// SilentErrorStore wraps any store and reports its errors to a callback instead of
// returning them, turning a failing tier into a permanent miss.
//
// Store implementations live in the sub packages: memstore, ristrettostore and
// bigcachestore for in-process tiers, redisstore and memcachestore for distributed
// tiers, and tiered for composing them.
package storage
