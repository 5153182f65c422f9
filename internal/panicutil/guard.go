// Package panicutil runs functions so that a panic, a runtime.Goexit and a normal return can be told apart.
package panicutil

import (
	"github.com/sourcegraph/conc/panics"
)

// Guard runs f and returns its error.
// A panic in f is recovered and returned as *panics.ErrRecovered.
// If f calls runtime.Goexit, onGoexit is called while the goroutine unwinds; Guard does not return in that case.
func Guard(f func() error, onGoexit func()) (err error) {
	var (
		returned bool
		panicked bool
		value    panics.Recovered
	)
	defer func() {
		if !returned && !panicked && onGoexit != nil {
			onGoexit()
		}
	}()

	func() {
		defer func() {
			if !returned {
				value = panics.NewRecovered(2, recover())
			}
		}()
		err = f()
		returned = true
	}()

	if !returned {
		panicked = true
		err = value.AsError()
	}
	return err
}
