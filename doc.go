// Package l2cache provides a cache-aside access layer in front of an arbitrary backing store.
//
// A CacheAccessor is bound to one region of a Store. GetOrLoad returns the cached value
// or loads it through the Loader, writing the result back to the store; concurrent misses
// of the same key are collapsed into one load by a singleflight.Coordinator.
// BatchGetOrLoad splits the keys into hits and misses and loads all misses with a single
// bulk call. Put, Reload and Evict keep the cache consistent with writes performed on the
// backing store.
//
// Store implementations live under storage/, loader adapters under source/.
// The refresh package reloads hot keys in the background and the metrics package
// records accessor events to Prometheus.
package l2cache
