// Package singleflight provides a coordinator that prevents duplicate concurrent loads
// of the same key within a region.
//
// When several goroutines ask the coordinator for the same (region, key) at the same time,
// only the first one starts the load function. The others attach to the in-flight load as
// waiters and all of them receive the same value or the same error. Once the outcome is
// published the record is removed, so a later call starts a fresh load instead of
// replaying a stale error.
//
// The load runs on its own goroutine with a context detached from the caller, so a caller
// that gives up waiting never aborts the load for the others.
package singleflight
