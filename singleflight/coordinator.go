package singleflight

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/Johntang666/l2cache/internal/panicutil"
)

var errGoexit = errors.New("runtime.Goexit is called")

// LoadFunc loads the value of one key.
type LoadFunc func(context.Context) (any, error)

type flightKey struct {
	region string
	key    any
}

type result struct {
	value  any
	err    error
	shared bool
}

// Coordinator tracks in-flight loads per (region, key).
// The zero value is not usable; use New.
type Coordinator struct {
	context func(context.Context) context.Context

	mu        sync.Mutex
	waitlists map[flightKey][]chan result
}

// New creates a new Coordinator.
func New(opts ...Option) *Coordinator {
	c := &Coordinator{
		context:   context.WithoutCancel,
		waitlists: map[flightKey][]chan result{},
	}
	for _, o := range opts {
		o.apply(c)
	}
	return c
}

// Do runs fn for (region, key) unless a load for the same pair is already in flight,
// in which case it waits for that load instead.
// The key must be comparable.
//
// Every caller attached to one load receives the same value and error.
// shared reports whether the value was produced for another caller.
// If ctx ends before the outcome is published, Do returns ctx.Err() and the load
// continues for the remaining waiters.
func (c *Coordinator) Do(ctx context.Context, region string, key any, fn LoadFunc) (value any, shared bool, err error) {
	ch := c.register(ctx, flightKey{region: region, key: key}, fn)
	select {
	case r := <-ch:
		if r.err != nil {
			if r.err == errGoexit {
				runtime.Goexit()
			}
			return nil, r.shared, r.err
		}
		return r.value, r.shared, nil
	case <-ctx.Done():
		go func() {
			<-ch
		}()
		return nil, false, ctx.Err()
	}
}

// InFlight returns the number of loads currently in flight.
func (c *Coordinator) InFlight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waitlists)
}

// register attaches a waiter to the flight and starts the load if it is the first one.
func (c *Coordinator) register(ctx context.Context, fk flightKey, fn LoadFunc) chan result {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan result, 1)
	c.waitlists[fk] = append(c.waitlists[fk], ch)
	if len(c.waitlists[fk]) == 1 {
		go c.run(c.context(ctx), fk, fn)
	}
	return ch
}

// run executes the load and publishes its outcome.
func (c *Coordinator) run(ctx context.Context, fk flightKey, fn LoadFunc) {
	var value any
	err := panicutil.Guard(func() (err error) {
		value, err = fn(ctx)
		return
	}, func() {
		c.publish(fk, nil, errGoexit)
	})
	c.publish(fk, value, err)
}

// publish sends the outcome to every waiter and removes the record.
func (c *Coordinator) publish(fk flightKey, value any, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, ch := range c.waitlists[fk] {
		if err != nil {
			ch <- result{err: err, shared: i != 0}
		} else {
			ch <- result{value: value, shared: i != 0}
		}
		close(ch)
	}
	delete(c.waitlists, fk)
}
