package registry

import (
	"fmt"
	"reflect"

	"github.com/toejough/umock/internal/core"
)

// AttrGetter is a handle that resolves its own attributes. Mocks and Modules
// implement it.
type AttrGetter interface {
	GetAttr(name string) (any, error)
}

// AttrSetter is a handle that binds its own attributes.
type AttrSetter interface {
	SetAttr(name string, value any) error
}

// AttrDeleter is a handle that can remove an attribute. Patching a missing
// attribute on an AttrDeleter is allowed: restoring removes it again.
type AttrDeleter interface {
	DelAttr(name string) error
}

// FuncMaker builds a function of a given type. Mocks implement it, which
// lets them be installed into typed func fields.
type FuncMaker interface {
	MakeFunc(funcType reflect.Type) reflect.Value
}

// GetAttr reads attribute name of handle. Handles that are not AttrGetters
// are inspected with reflection: string-keyed maps by key, structs (or
// pointers to them) by exported field, and any value by method.
func GetAttr(handle any, name string) (any, error) {
	if getter, ok := handle.(AttrGetter); ok {
		return getter.GetAttr(name)
	}

	rv := reflect.ValueOf(handle)
	if !rv.IsValid() {
		return nil, missing(handle, name)
	}

	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		v := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil, missing(handle, name)
		}

		return v.Interface(), nil
	}

	if field, ok := structField(rv, name); ok {
		return field.Interface(), nil
	}

	if method := rv.MethodByName(name); method.IsValid() {
		return method.Interface(), nil
	}

	return nil, missing(handle, name)
}

// SetAttr binds attribute name of handle to value. Struct fields must be
// exported and reachable through a pointer. A FuncMaker assigned to a func
// field is adapted to the field's type.
func SetAttr(handle any, name string, value any) error {
	if value == core.Unset {
		return DelAttr(handle, name)
	}

	if setter, ok := handle.(AttrSetter); ok {
		return setter.SetAttr(name, value)
	}

	rv := reflect.ValueOf(handle)
	if !rv.IsValid() {
		return missing(handle, name)
	}

	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		if rv.IsNil() {
			return fmt.Errorf("%w: cannot set %q on nil %T", core.ErrType, name, handle)
		}

		v, err := convert(value, rv.Type().Elem())
		if err != nil {
			return fmt.Errorf("setting %q: %w", name, err)
		}

		rv.SetMapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()), v)

		return nil
	}

	field, ok := structField(rv, name)
	if !ok {
		return missing(handle, name)
	}

	if !field.CanSet() {
		return fmt.Errorf("%w: field %q of %T is not settable", core.ErrType, name, handle)
	}

	v, err := convert(value, field.Type())
	if err != nil {
		return fmt.Errorf("setting %q: %w", name, err)
	}

	field.Set(v)

	return nil
}

// DelAttr removes attribute name from handle. Maps drop the key; struct
// fields are reset to their zero value.
func DelAttr(handle any, name string) error {
	if deleter, ok := handle.(AttrDeleter); ok {
		return deleter.DelAttr(name)
	}

	rv := reflect.ValueOf(handle)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String && !rv.IsNil() {
		rv.SetMapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()), reflect.Value{})

		return nil
	}

	field, ok := structField(rv, name)
	if !ok || !field.CanSet() {
		return missing(handle, name)
	}

	field.Set(reflect.Zero(field.Type()))

	return nil
}

// holdsKeys reports whether handle can gain and drop attributes by name: an
// AttrDeleter or a non-nil string-keyed map.
func holdsKeys(handle any) bool {
	if _, ok := handle.(AttrDeleter); ok {
		return true
	}

	rv := reflect.ValueOf(handle)

	return rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String && !rv.IsNil()
}

func convert(value any, t reflect.Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(t), nil
	}

	rv := reflect.ValueOf(value)
	if rv.Type().AssignableTo(t) {
		out := reflect.New(t).Elem()
		out.Set(rv)

		return out, nil
	}

	if maker, ok := value.(FuncMaker); ok && t.Kind() == reflect.Func {
		return maker.MakeFunc(t), nil
	}

	return reflect.Value{}, fmt.Errorf("%w: cannot use %T as %s", core.ErrType, value, t)
}

func missing(handle any, name string) error {
	return &core.AttributeError{Owner: fmt.Sprintf("%T", handle), Name: name, Reason: "does not exist"}
}

// structField finds the exported field name on a struct or on the struct
// behind a pointer.
func structField(rv reflect.Value, name string) (reflect.Value, bool) {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return reflect.Value{}, false
		}

		rv = rv.Elem()
	}

	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}

	sf, ok := rv.Type().FieldByName(name)
	if !ok || !sf.IsExported() {
		return reflect.Value{}, false
	}

	field, err := rv.FieldByIndexErr(sf.Index)
	if err != nil {
		return reflect.Value{}, false
	}

	return field, true
}
