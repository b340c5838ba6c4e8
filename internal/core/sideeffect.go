package core

import (
	"fmt"
	"iter"
	"reflect"
	"sync"
)

// SideEffect determines a mock's response to invocation. When set it takes
// precedence over the return value. The variants are built with Func, Raise,
// RaiseNew, Values, FromSeq and SideEffectOf.
type SideEffect interface {
	sideEffect()
}

// Func makes fn compute the response from the invocation's arguments.
func Func(fn func(args []any, kwargs Kwargs) (any, error)) SideEffect {
	return funcEffect{fn: fn}
}

// Raise makes every invocation fail with err, returned unwrapped.
func Raise(err error) SideEffect {
	return raiseEffect{err: err}
}

// RaiseNew makes every invocation fail with a fresh error from newErr.
func RaiseNew(newErr func() error) SideEffect {
	return raiseNewEffect{newErr: newErr}
}

// Values makes successive invocations return vals in order. Once they run
// out, invocations fail with a *StopIterationError.
func Values(vals ...any) SideEffect {
	remaining := append([]any(nil), vals...)

	return &seqEffect{next: func() (any, bool) {
		if len(remaining) == 0 {
			return nil, false
		}

		v := remaining[0]
		remaining = remaining[1:]

		return v, true
	}}
}

// FromSeq makes successive invocations return the values yielded by seq.
// The sequence is pulled lazily, one value per invocation.
func FromSeq(seq iter.Seq[any]) SideEffect {
	var (
		next func() (any, bool)
		stop func()
	)

	return &seqEffect{next: func() (any, bool) {
		if next == nil {
			next, stop = iter.Pull(seq)
		}

		v, ok := next()
		if !ok {
			stop()
		}

		return v, ok
	}}
}

// SideEffectOf converts a dynamic value into a SideEffect:
//   - nil, or a nil func, clears the side effect (returns nil)
//   - func() error is an error constructor (RaiseNew)
//   - error is raised as-is (Raise)
//   - iter.Seq[any], slices and arrays are sequences of values
//   - any other func is a callable
//
// Anything else yields a side effect that fails with ErrType when invoked.
func SideEffectOf(value any) SideEffect {
	switch v := value.(type) {
	case nil:
		return nil
	case SideEffect:
		return v
	case func(args []any, kwargs Kwargs) (any, error):
		if v == nil {
			return nil
		}

		return Func(v)
	case func() error:
		if v == nil {
			return nil
		}

		return RaiseNew(v)
	case error:
		return Raise(v)
	case iter.Seq[any]:
		return FromSeq(v)
	case []any:
		return Values(v...)
	}

	rv := reflect.ValueOf(value)

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		vals := make([]any, rv.Len())
		for i := range vals {
			vals[i] = rv.Index(i).Interface()
		}

		return Values(vals...)
	case reflect.Func:
		if rv.IsNil() {
			return nil
		}

		return funcEffect{fn: reflectCallable(rv)}
	default:
		return invalidEffect{value: value}
	}
}

type funcEffect struct {
	fn func(args []any, kwargs Kwargs) (any, error)
}

func (funcEffect) sideEffect() {}

type invalidEffect struct {
	value any
}

func (invalidEffect) sideEffect() {}

type raiseEffect struct {
	err error
}

func (raiseEffect) sideEffect() {}

type raiseNewEffect struct {
	newErr func() error
}

func (raiseNewEffect) sideEffect() {}

type seqEffect struct {
	mu   sync.Mutex
	next func() (any, bool)
}

func (*seqEffect) sideEffect() {}

func (s *seqEffect) pull() (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.next()
}

// applySideEffect produces the response for call. async selects the
// exhaustion error reported by sequences.
func applySideEffect(effect SideEffect, call Call, async bool) (any, error) {
	switch e := effect.(type) {
	case funcEffect:
		return e.fn(call.Args, call.Kwargs)
	case raiseEffect:
		return nil, e.err
	case raiseNewEffect:
		return nil, e.newErr()
	case *seqEffect:
		v, ok := e.pull()
		if !ok {
			return nil, &StopIterationError{Async: async}
		}

		return v, nil
	case invalidEffect:
		return nil, fmt.Errorf("%w: invalid side effect %T", ErrType, e.value)
	default:
		return nil, fmt.Errorf("%w: unknown side effect %T", ErrType, effect)
	}
}

// reflectCallable adapts an arbitrary func value to the callable shape.
// Keyword arguments cannot be passed to a plain Go func.
func reflectCallable(fn reflect.Value) func([]any, Kwargs) (any, error) {
	fnType := fn.Type()

	return func(args []any, kwargs Kwargs) (any, error) {
		if len(kwargs) > 0 {
			return nil, fmt.Errorf("%w: %s takes no keyword arguments", ErrType, fnType)
		}

		in, err := reflectArgs(fnType, args)
		if err != nil {
			return nil, err
		}

		return collectResults(fnType, fn.Call(in))
	}
}

func reflectArgs(fnType reflect.Type, args []any) ([]reflect.Value, error) {
	numIn := fnType.NumIn()
	variadic := fnType.IsVariadic()

	if (!variadic && len(args) != numIn) || (variadic && len(args) < numIn-1) {
		return nil, fmt.Errorf("%w: %s called with %d args", ErrType, fnType, len(args))
	}

	in := make([]reflect.Value, len(args))

	for i, arg := range args {
		var paramType reflect.Type

		if variadic && i >= numIn-1 {
			paramType = fnType.In(numIn - 1).Elem()
		} else {
			paramType = fnType.In(i)
		}

		v, ok := assignable(arg, paramType)
		if !ok {
			return nil, fmt.Errorf("%w: arg %d: cannot use %T as %s", ErrType, i, arg, paramType)
		}

		in[i] = v
	}

	return in, nil
}

// collectResults folds a func's results into the callable shape: a trailing
// error result becomes the error, a single other result the value and
// several other results a []any.
func collectResults(fnType reflect.Type, out []reflect.Value) (any, error) {
	var err error

	if n := len(out); n > 0 && fnType.Out(n-1) == errorType {
		if !out[n-1].IsNil() {
			err, _ = out[n-1].Interface().(error)
		}

		out = out[:n-1]
	}

	switch len(out) {
	case 0:
		return nil, err
	case 1:
		return out[0].Interface(), err
	default:
		vals := make([]any, len(out))
		for i, v := range out {
			vals[i] = v.Interface()
		}

		return vals, err
	}
}
