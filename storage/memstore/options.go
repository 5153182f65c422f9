package memstore

import (
	"github.com/Johntang666/l2cache"
	"github.com/Johntang666/l2cache/expiration"
	"github.com/Johntang666/l2cache/internal/keyhash"
)

// DefaultBucketsSize is the default number of buckets in the store.
var DefaultBucketsSize = 256

// Option is the interface for the options of the in-memory store.
type Option[K l2cache.KeyConstraint, V l2cache.ValueConstraint] interface {
	apply(*options[K, V])
}

type optionFunc[K l2cache.KeyConstraint, V l2cache.ValueConstraint] func(*options[K, V])

func (f optionFunc[K, V]) apply(o *options[K, V]) {
	f(o)
}

// WithKeyHash sets the key hash function to the store.
// The region is mixed into the hash, so the function only needs to cover the key.
func WithKeyHash[K l2cache.KeyConstraint, V l2cache.ValueConstraint](f func(K) int) Option[K, V] {
	return optionFunc[K, V](func(o *options[K, V]) {
		o.hashKey = f
	})
}

// WithBucketsSize sets the number of buckets in the store.
// The number of buckets must be a natural number.
func WithBucketsSize[K l2cache.KeyConstraint, V l2cache.ValueConstraint](bucketsSize int) Option[K, V] {
	if bucketsSize <= 0 {
		panic("bucketSize must be natural number")
	}
	return optionFunc[K, V](func(o *options[K, V]) {
		o.bucketsSize = bucketsSize
	})
}

// WithClock sets the clock to the store.
func WithClock[K l2cache.KeyConstraint, V l2cache.ValueConstraint](clock l2cache.Clock) Option[K, V] {
	return optionFunc[K, V](func(o *options[K, V]) {
		o.clock = clock
	})
}

// WithCloner sets the value cloner to the store.
func WithCloner[K l2cache.KeyConstraint, V l2cache.ValueConstraint](cloner l2cache.ValueCloner[V]) Option[K, V] {
	return optionFunc[K, V](func(o *options[K, V]) {
		o.cloner = cloner
	})
}

// WithExpiration sets the expiration policy to the store. Entries never expire by default.
func WithExpiration[K l2cache.KeyConstraint, V l2cache.ValueConstraint](policy expiration.Policy) Option[K, V] {
	return optionFunc[K, V](func(o *options[K, V]) {
		o.expiration = policy
	})
}

type options[K l2cache.KeyConstraint, V l2cache.ValueConstraint] struct {
	hashKey     func(K) int
	bucketsSize int
	clock       l2cache.Clock
	cloner      l2cache.ValueCloner[V]
	expiration  expiration.Policy
}

func defaultOptions[K l2cache.KeyConstraint, V l2cache.ValueConstraint]() options[K, V] {
	return options[K, V]{
		hashKey:     keyhash.Func[K](),
		bucketsSize: DefaultBucketsSize,
		clock:       l2cache.SystemClock,
		cloner:      l2cache.DefaultValueCloner[V](),
		expiration:  expiration.Never{},
	}
}
