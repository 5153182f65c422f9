package panicutil_test

import (
	"errors"
	"runtime"
	"sync"
	"testing"

	"github.com/Johntang666/l2cache/internal/panicutil"
	"github.com/sourcegraph/conc/panics"
)

func TestGuard(t *testing.T) {
	t.Parallel()

	t.Run("Normal return with no error", func(t *testing.T) {
		t.Parallel()

		if err := panicutil.Guard(func() error { return nil }, nil); err != nil {
			t.Errorf("expected no error, got: %v", err)
		}
	})

	t.Run("Normal return with error", func(t *testing.T) {
		t.Parallel()

		expectedErr := errors.New("expected error")
		err := panicutil.Guard(func() error { return expectedErr }, nil)
		if err != expectedErr {
			t.Errorf("expected error %v, got: %v", expectedErr, err)
		}
	})

	t.Run("Panic with string", func(t *testing.T) {
		t.Parallel()

		err := panicutil.Guard(func() error {
			panic("test panic")
		}, nil)
		var recoveredErr *panics.ErrRecovered
		if !errors.As(err, &recoveredErr) {
			t.Fatalf("expected error to be of type *panics.ErrRecovered, got: %T", err)
		}
		if recoveredErr.Value != "test panic" {
			t.Errorf("expected panic value 'test panic', got: %v", err)
		}
	})

	t.Run("Panic does not call onGoexit", func(t *testing.T) {
		t.Parallel()

		called := false
		_ = panicutil.Guard(func() error {
			panic(errors.New("boom"))
		}, func() { called = true })
		if called {
			t.Error("onGoexit must not be called on panic")
		}
	})

	t.Run("Runtime.Goexit", func(t *testing.T) {
		t.Parallel()

		var wg sync.WaitGroup
		var returned, called bool

		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = panicutil.Guard(func() error {
				runtime.Goexit()
				return nil // unreachable
			}, func() { called = true })
			returned = true
		}()
		wg.Wait()

		if !called {
			t.Error("expected onGoexit to be called")
		}
		if returned {
			t.Error("Guard must not return after runtime.Goexit")
		}
	})
}
