package refresh

// DefaultMaxGoroutines bounds concurrent reloads within one round.
const DefaultMaxGoroutines = 8

// Option configures a Refresher.
type Option interface {
	apply(maxGoroutines *int)
}

type optionFunc func(*int)

func (f optionFunc) apply(n *int) { f(n) }

// WithMaxGoroutines limits concurrent reloads within one round. It panics if n < 1.
func WithMaxGoroutines(n int) Option {
	if n < 1 {
		panic("refresh: max goroutines must be at least 1")
	}
	return optionFunc(func(v *int) { *v = n })
}
