package singleflight

import "context"

// Option is the interface for the options of the Coordinator.
type Option interface {
	apply(*Coordinator)
}

type optionFunc func(*Coordinator)

func (f optionFunc) apply(c *Coordinator) {
	f(c)
}

// WithBackgroundContextProvider sets the provider of the context the load functions run with.
// The provider receives the context of the caller that started the load and must return a
// context that is not canceled together with it.
// The default provider is context.WithoutCancel.
func WithBackgroundContextProvider(provider func(context.Context) context.Context) Option {
	return optionFunc(func(c *Coordinator) {
		c.context = provider
	})
}
