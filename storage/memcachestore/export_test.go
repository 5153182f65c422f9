package memcachestore

var ItemExpiration = itemExpiration
