package l2cache

import (
	"github.com/Johntang666/l2cache/singleflight"
)

// Option is the interface for the options of the CacheAccessor.
type Option[K KeyConstraint, V ValueConstraint] interface {
	apply(*CacheAccessor[K, V])
}

type optionFunc[K KeyConstraint, V ValueConstraint] func(*CacheAccessor[K, V])

func (f optionFunc[K, V]) apply(a *CacheAccessor[K, V]) {
	f(a)
}

// WithCoordinator sets the single-flight coordinator.
// Accessors of different regions may share one coordinator.
// By default each accessor creates its own.
func WithCoordinator[K KeyConstraint, V ValueConstraint](c *singleflight.Coordinator) Option[K, V] {
	return optionFunc[K, V](func(a *CacheAccessor[K, V]) {
		a.coordinator = c
	})
}

// WithCloner sets the value cloner used for results shared between concurrent callers.
// The default is DefaultValueCloner.
func WithCloner[K KeyConstraint, V ValueConstraint](cloner ValueCloner[V]) Option[K, V] {
	return optionFunc[K, V](func(a *CacheAccessor[K, V]) {
		a.cloner = cloner
	})
}

// WithLogger sets the logger. The default is NopLogger.
func WithLogger[K KeyConstraint, V ValueConstraint](logger Logger) Option[K, V] {
	return optionFunc[K, V](func(a *CacheAccessor[K, V]) {
		a.logger = logger
	})
}

// WithRecorder sets the event recorder. The default is NopRecorder.
func WithRecorder[K KeyConstraint, V ValueConstraint](recorder Recorder) Option[K, V] {
	return optionFunc[K, V](func(a *CacheAccessor[K, V]) {
		a.recorder = recorder
	})
}
