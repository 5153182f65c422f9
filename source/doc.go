// Package source provides adapters for implementing l2cache.Loader.
//
// Funcs builds a loader from two functions, LoadManyFunc derives a loader from a single
// bulk-load function, and PerKey derives one from a single-key function by fanning the
// bulk load out over a bounded number of goroutines.
package source
