// Package memstore provides an in-memory implementation of the l2cache.Store interface.
//
// The store is distributed across multiple buckets for improved concurrency.
// Entries of every region share the buckets and are addressed by region and key.
// It supports custom key hashing, bucket sizing, clock implementation, value cloning
// strategies and an expiration.Policy that decides each entry's lifetime.
package memstore
