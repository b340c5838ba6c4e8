package core

import (
	"context"
	"fmt"
	"math"
	"reflect"
)

// FuncOf returns a function of type F that forwards every call to m, so that a
// mock can stand in for a typed function value.
func FuncOf[F any](m *Mock) F {
	return makeFunc[F](m)
}

// AsyncFuncOf is FuncOf for an AsyncMock: each call is awaited before the
// function returns.
func AsyncFuncOf[F any](m *AsyncMock) F {
	return makeFunc[F](m)
}

func makeFunc[F any](maker interface{ MakeFunc(reflect.Type) reflect.Value }) F {
	//nolint:forcetypeassert // MakeFunc returns a value of exactly type F
	return maker.MakeFunc(reflect.TypeFor[F]()).Interface().(F)
}

// unexported variables.
var (
	//nolint:gochecknoglobals // cached reflect type
	errorType = reflect.TypeFor[error]()
)

// assignable converts v into a value of type t. nil becomes the zero value;
// numeric values convert between numeric kinds when no digits are lost.
func assignable(v any, t reflect.Type) (reflect.Value, bool) {
	if v == nil {
		return reflect.Zero(t), true
	}

	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		out := reflect.New(t).Elem()
		out.Set(rv)

		return out, true
	}

	if numericClass(rv.Kind()) != notNumeric && numericClass(t.Kind()) != notNumeric {
		return convertNumeric(rv, t)
	}

	return reflect.Value{}, false
}

type numeric int

const (
	notNumeric numeric = iota
	signed
	unsigned
	floating
)

// Float bounds of the 64-bit integer ranges. Both are exact powers of two.
const (
	twoTo63 = float64(1 << 63)
	twoTo64 = 2 * twoTo63
)

func numericClass(k reflect.Kind) numeric {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return signed
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return unsigned
	case reflect.Float32, reflect.Float64:
		return floating
	default:
		return notNumeric
	}
}

// convertNumeric converts rv to t unless that would overflow, change the
// sign or drop a fraction. Between float kinds only range is checked.
func convertNumeric(rv reflect.Value, t reflect.Type) (reflect.Value, bool) {
	target := reflect.Zero(t)

	var fits bool

	switch from, to := numericClass(rv.Kind()), numericClass(t.Kind()); {
	case from == signed && to == signed:
		fits = !target.OverflowInt(rv.Int())
	case from == signed && to == unsigned:
		fits = rv.Int() >= 0 && !target.OverflowUint(uint64(rv.Int()))
	case from == unsigned && to == signed:
		fits = rv.Uint() <= math.MaxInt64 && !target.OverflowInt(int64(rv.Uint()))
	case from == unsigned && to == unsigned:
		fits = !target.OverflowUint(rv.Uint())
	case from == floating && to == floating:
		fits = !target.OverflowFloat(rv.Float())
	case from == floating:
		fits = floatFits(rv.Float(), target)
	default:
		fits = intFitsFloat(rv, t)
	}

	if !fits {
		return reflect.Value{}, false
	}

	return rv.Convert(t), true
}

// floatFits reports whether f is a whole number in the range of target's
// integer kind.
func floatFits(f float64, target reflect.Value) bool {
	if math.IsInf(f, 0) || f != math.Trunc(f) {
		return false
	}

	if numericClass(target.Kind()) == signed {
		return f >= -twoTo63 && f < twoTo63 && !target.OverflowInt(int64(f))
	}

	return f >= 0 && f < twoTo64 && !target.OverflowUint(uint64(f))
}

// intFitsFloat reports whether the integer rv is exactly representable as t.
func intFitsFloat(rv reflect.Value, t reflect.Type) bool {
	f := rv.Convert(t).Float()

	if numericClass(rv.Kind()) == signed {
		return f >= -twoTo63 && f < twoTo63 && int64(f) == rv.Int()
	}

	return f < twoTo64 && uint64(f) == rv.Uint()
}

// makeTypedFunc creates a function of funcType that passes its arguments to
// invoke and converts the result back. Results that cannot be converted are
// left at their zero value. When funcType has no error result, an error from
// invoke panics.
func makeTypedFunc(
	funcType reflect.Type,
	invoke func(args []any) (any, error),
) reflect.Value {
	if funcType.Kind() != reflect.Func {
		panic(fmt.Sprintf("umock: cannot make a function of non-func type %s", funcType))
	}

	relayer := func(in []reflect.Value) []reflect.Value {
		result, err := invoke(unreflectValues(funcType, in))

		return toResults(funcType, result, err)
	}

	return reflect.MakeFunc(funcType, relayer)
}

func toResults(funcType reflect.Type, result any, err error) []reflect.Value {
	numOut := funcType.NumOut()
	hasErr := numOut > 0 && funcType.Out(numOut-1) == errorType

	if err != nil && !hasErr {
		panic(err)
	}

	numVals := numOut
	if hasErr {
		numVals--
	}

	vals := []any{result}

	if spread, ok := result.([]any); ok && numVals > 1 && len(spread) == numVals {
		vals = spread
	}

	out := make([]reflect.Value, numOut)

	for i := range numVals {
		out[i] = reflect.Zero(funcType.Out(i))

		if i < len(vals) {
			if v, ok := assignable(vals[i], funcType.Out(i)); ok {
				out[i] = v
			}
		}
	}

	if hasErr {
		out[numOut-1] = reflect.Zero(errorType)

		if err != nil {
			out[numOut-1] = reflect.ValueOf(&err).Elem()
		}
	}

	return out
}

// unreflectValues converts call arguments back to plain values, expanding a
// variadic tail into individual arguments.
func unreflectValues(funcType reflect.Type, in []reflect.Value) []any {
	args := make([]any, 0, len(in))

	for i, v := range in {
		if funcType.IsVariadic() && i == len(in)-1 {
			for j := range v.Len() {
				args = append(args, v.Index(j).Interface())
			}

			continue
		}

		args = append(args, v.Interface())
	}

	return args
}

func awaitNow(f *Future) (any, error) {
	return f.Await(context.Background())
}
