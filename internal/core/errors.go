package core

import (
	"errors"
	"fmt"
)

// Error kinds. Every error produced by this package matches exactly one of
// these with errors.Is, except side effect errors, which are returned as-is.
var (
	ErrAttribute     = errors.New("attribute error")
	ErrType          = errors.New("type error")
	ErrRuntime       = errors.New("runtime error")
	ErrStopIteration = errors.New("StopIteration")
	ErrAssertion     = errors.New("assertion error")
)

// AttributeError reports a name that is outside a spec, or missing on its
// owner.
type AttributeError struct {
	Owner  string
	Name   string
	Reason string
}

func (e *AttributeError) Error() string {
	return fmt.Sprintf("%s: attribute %q %s", e.Owner, e.Name, e.Reason)
}

func (e *AttributeError) Is(target error) bool {
	return target == ErrAttribute
}

// StopIterationError is returned when a sequence side effect runs out of
// values. Async distinguishes exhaustion inside an awaited call.
type StopIterationError struct {
	Async bool
}

func (e *StopIterationError) Error() string {
	if e.Async {
		return "coroutine raised StopIteration"
	}

	return "generator raised StopIteration"
}

// Is matches both ErrRuntime and ErrStopIteration.
func (e *StopIterationError) Is(target error) bool {
	return target == ErrRuntime || target == ErrStopIteration
}

// AssertionError is returned by every Assert* method on failure.
type AssertionError struct {
	Msg string
}

func (e *AssertionError) Error() string {
	return e.Msg
}

func (e *AssertionError) Is(target error) bool {
	return target == ErrAssertion
}

func newAttributeError(owner, name, reason string) error {
	return &AttributeError{Owner: owner, Name: name, Reason: reason}
}

func assertionf(format string, args ...any) error {
	return &AssertionError{Msg: fmt.Sprintf(format, args...)}
}
