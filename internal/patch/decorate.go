package patch

import (
	"slices"

	"github.com/toejough/umock/internal/core"
)

// Func is the shape of a function Decorate can wrap.
type Func func(args ...any) (any, error)

// Decorate returns a decorator. Each call of a decorated function starts a
// fresh Patch of target, calls the function with the replacement appended to
// its arguments, and restores the target before returning, whether the
// function returns, fails or panics.
func Decorate(target string, opts ...Option) func(Func) Func {
	return func(fn Func) Func {
		return func(args ...any) (any, error) {
			var result any

			err := New(target, opts...).Do(func(replacement any) error {
				var err error

				result, err = fn(append(slices.Clone(args), replacement)...)

				return err
			})

			return result, err
		}
	}
}

// Apply starts a Patch of target for the rest of the test and restores it
// on cleanup. It fails the test if the patch cannot start or the reporter
// has no Cleanup.
func Apply(t core.TestReporter, target string, opts ...Option) any {
	t.Helper()

	cleaner, ok := t.(cleanupRegistrar)
	if !ok {
		t.Fatalf("umock: patching %s needs a reporter with Cleanup", target)

		return nil
	}

	p := New(target, opts...)

	replacement, err := p.Start()
	if err != nil {
		t.Fatalf("umock: %v", err)

		return nil
	}

	cleaner.Cleanup(func() {
		if err := p.Stop(); err != nil {
			t.Fatalf("umock: %v", err)
		}
	})

	return replacement
}

// cleanupRegistrar is the interface needed for registering cleanup functions.
// This is satisfied by *testing.T and *testing.B.
type cleanupRegistrar interface {
	Cleanup(cleanupFunc func())
}
