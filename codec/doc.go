// Package codec converts cache values to bytes for the byte-oriented store tiers
// (bigcachestore, redisstore and memcachestore).
//
// Msgpack is the default of those tiers. JSON and CBOR suit values that are
// also read by other programs, and Protobuf suits generated message types.
package codec
