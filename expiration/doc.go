// Package expiration provides TTL policies for cache entries.
//
// A Policy decides when an entry written now expires. Stores call it on every
// write, so a Jittered policy spreads the expiration of entries loaded together
// and keeps them from expiring at the same moment.
package expiration
