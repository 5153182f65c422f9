package tiered

import (
	"github.com/Johntang666/l2cache"
)

// Option is the interface for the options of the tiered store.
type Option interface {
	apply(*options)
}

type optionFunc func(*options)

func (f optionFunc) apply(o *options) {
	f(o)
}

// WithLogger sets the logger that receives tier read failures. The default is l2cache.NopLogger.
func WithLogger(logger l2cache.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = logger
	})
}

// WithBackfill sets whether a hit in a lower tier is written to the tiers above it. It is on by default.
func WithBackfill(enabled bool) Option {
	return optionFunc(func(o *options) {
		o.backfill = enabled
	})
}

type options struct {
	logger   l2cache.Logger
	backfill bool
}

func defaultOptions() options {
	return options{
		logger:   l2cache.NopLogger{},
		backfill: true,
	}
}
