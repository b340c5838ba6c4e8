package core

import (
	"fmt"
	"go/token"
	"reflect"
	"slices"
	"strings"

	"github.com/dave/dst"
	"github.com/dave/dst/decorator"
)

// Spec constrains the attribute names a mock accepts.
type Spec interface {
	// Allows reports whether name may be read or written.
	Allows(name string) bool
	// Names returns the allowed names in sorted order, or nil when every
	// name is allowed.
	Names() []string
}

// Unconstrained allows every name. Unknown names auto-vivify a child mock.
//
//nolint:gochecknoglobals // Intentional exported constant-like value
var Unconstrained Spec = unconstrained{}

// SpecOf returns a spec allowing exactly names.
func SpecOf(names ...string) Spec {
	allowed := make(map[string]struct{}, len(names))
	for _, name := range names {
		allowed[name] = struct{}{}
	}

	return constrained{allowed: allowed}
}

// SpecFrom derives a spec from a live value: its public members that are
// neither callable nor awaitable. A reflect.Type is treated as a class and
// only contributes names. Any other value is an instance, and the returned
// type is the reported type a mock built from it should carry.
//
// Public members are exported struct fields, or, for maps with string keys
// and attribute namespaces, keys that do not start with an underscore.
func SpecFrom(value any) (Spec, reflect.Type) {
	if t, ok := value.(reflect.Type); ok {
		return SpecOf(typeMembers(t)...), nil
	}

	if lister, ok := value.(attrLister); ok {
		return SpecOf(listedMembers(lister)...), reflect.TypeOf(value)
	}

	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}

	var names []string

	switch rv.Kind() {
	case reflect.Struct:
		names = typeMembers(rv.Type())
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			iter := rv.MapRange()
			for iter.Next() {
				name := iter.Key().String()
				if isPublicName(name) && !isCallableValue(iter.Value()) {
					names = append(names, name)
				}
			}
		}
	}

	return SpecOf(names...), reflect.TypeOf(value)
}

// SpecFromSource derives a spec from the declaration of struct typeName in
// Go source, using the same rule as SpecFrom: exported fields whose type is
// not a func or a channel. Embedded fields are named after their type.
func SpecFromSource(src []byte, typeName string) (Spec, error) {
	file, err := decorator.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parsing source for spec %s: %w", typeName, err)
	}

	var target *dst.StructType

	dst.Inspect(file, func(node dst.Node) bool {
		genDecl, ok := node.(*dst.GenDecl)
		if !ok || genDecl.Tok != token.TYPE || target != nil {
			return target == nil
		}

		for _, spec := range genDecl.Specs {
			typeSpec, isTypeSpec := spec.(*dst.TypeSpec)
			if !isTypeSpec || typeSpec.Name.Name != typeName {
				continue
			}

			if structType, isStruct := typeSpec.Type.(*dst.StructType); isStruct {
				target = structType

				return false
			}
		}

		return true
	})

	if target == nil {
		//nolint:err113 // Dynamic error message required for user-facing parse errors
		return nil, fmt.Errorf("struct type not found: %s", typeName)
	}

	var names []string

	for _, field := range target.Fields.List {
		switch field.Type.(type) {
		case *dst.FuncType, *dst.ChanType:
			continue
		}

		if len(field.Names) == 0 {
			if name := embeddedName(field.Type); token.IsExported(name) {
				names = append(names, name)
			}

			continue
		}

		for _, ident := range field.Names {
			if token.IsExported(ident.Name) {
				names = append(names, ident.Name)
			}
		}
	}

	return SpecOf(names...), nil
}

type attrLister interface {
	AttrNames() []string
	GetAttr(name string) (any, error)
}

type constrained struct {
	allowed map[string]struct{}
}

func (c constrained) Allows(name string) bool {
	_, ok := c.allowed[name]

	return ok
}

func (c constrained) Names() []string {
	names := make([]string, 0, len(c.allowed))
	for name := range c.allowed {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

type unconstrained struct{}

func (unconstrained) Allows(string) bool { return true }

func (unconstrained) Names() []string { return nil }

func embeddedName(expr dst.Expr) string {
	switch t := expr.(type) {
	case *dst.Ident:
		return t.Name
	case *dst.StarExpr:
		return embeddedName(t.X)
	case *dst.SelectorExpr:
		return t.Sel.Name
	case *dst.IndexExpr:
		return embeddedName(t.X)
	case *dst.IndexListExpr:
		return embeddedName(t.X)
	default:
		return ""
	}
}

func isCallableValue(v reflect.Value) bool {
	if v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Func, reflect.Chan:
		return true
	case reflect.Invalid:
		return false
	}

	switch v.Interface().(type) {
	case *Mock, *AsyncMock, *Future:
		return true
	default:
		return false
	}
}

func isPublicName(name string) bool {
	return name != "" && !strings.HasPrefix(name, "_")
}

func listedMembers(lister attrLister) []string {
	var names []string

	for _, name := range lister.AttrNames() {
		if !isPublicName(name) {
			continue
		}

		v, err := lister.GetAttr(name)
		if err != nil || isCallableValue(reflect.ValueOf(v)) {
			continue
		}

		names = append(names, name)
	}

	return names
}

// typeMembers lists the exported, non-func, non-chan direct fields of a
// struct type (or pointer to one).
func typeMembers(t reflect.Type) []string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t.Kind() != reflect.Struct {
		return nil
	}

	var names []string

	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		switch field.Type.Kind() {
		case reflect.Func, reflect.Chan:
			continue
		}

		names = append(names, field.Name)
	}

	return names
}
