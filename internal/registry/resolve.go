package registry

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/toejough/umock/internal/core"
)

// Path is a parsed target path.
//
//	"a.b.c"   Module "a.b.c"
//	"a.b:c.d" Module "a.b", Attrs ["c", "d"], Colon true
type Path struct {
	Module string
	Attrs  []string
	Colon  bool
}

// ParsePath splits target at its first colon. Text after a second colon is
// kept in the attribute chain as-is.
func ParsePath(target string) Path {
	module, attrs, colon := strings.Cut(target, ":")
	if !colon {
		return Path{Module: target}
	}

	p := Path{Module: module, Colon: true}
	if attrs != "" {
		p.Attrs = strings.Split(attrs, ".")
	}

	return p
}

func (p Path) String() string {
	if !p.Colon {
		return p.Module
	}

	return p.Module + ":" + strings.Join(p.Attrs, ".")
}

// Resolve returns the object target denotes. A target that is not a string
// is returned unchanged. Without a colon, the longest importable prefix of
// the dotted path is the module and the remaining segments are attributes.
// With a colon, the left side is the module and the right side the
// attribute chain.
func Resolve(r Registry, target any) (any, error) {
	path, ok := target.(string)
	if !ok {
		return target, nil
	}

	p := ParsePath(path)
	if p.Colon {
		module, err := r.Import(p.Module)
		if err != nil {
			return nil, err
		}

		return walk(module, p.Attrs)
	}

	segments := strings.Split(p.Module, ".")

	for i := len(segments); i > 0; i-- {
		module, err := r.Import(strings.Join(segments[:i], "."))
		if errors.Is(err, ErrModuleNotFound) {
			continue
		}

		if err != nil {
			return nil, err
		}

		return walk(module, segments[i:])
	}

	return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, path)
}

// Lookup resolves target and returns it as an F. A mock found at the target
// is adapted when F is a func type, so code that fetches its collaborators
// through the registry calls whatever is patched in.
func Lookup[F any](r Registry, target string) (F, error) {
	var zero F

	v, err := Resolve(r, target)
	if err != nil {
		return zero, err
	}

	out, err := convert(v, reflect.TypeFor[F]())
	if err != nil {
		return zero, fmt.Errorf("looking up %s: %w", target, err)
	}

	//nolint:forcetypeassert // convert returns a value of exactly type F
	return out.Interface().(F), nil
}

// PatchTarget installs replacement at target and returns what was there.
//
// Without a colon the module registered under target is replaced; the
// previous module is returned, imported first if it was not registered.
// With a colon the last attribute of the chain is rebound on its parent. If
// the attribute did not exist and the parent can delete attributes (an
// AttrDeleter or a string-keyed map), core.Unset is returned, and patching
// core.Unset back removes it.
//
// Calling PatchTarget again with the returned value restores the original
// binding.
func PatchTarget(r Registry, target string, replacement any) (any, error) {
	p := ParsePath(target)

	if !p.Colon {
		previous, err := r.Import(p.Module)
		if err != nil {
			return nil, fmt.Errorf("patching %s: %w", target, err)
		}

		r.Register(p.Module, replacement)

		return previous, nil
	}

	if len(p.Attrs) == 0 {
		return nil, fmt.Errorf("patching %s: %w",
			target, &core.AttributeError{Owner: "module " + p.Module, Name: "", Reason: "is an empty attribute path"})
	}

	module, err := r.Import(p.Module)
	if err != nil {
		return nil, fmt.Errorf("patching %s: %w", target, err)
	}

	parent, err := walk(module, p.Attrs[:len(p.Attrs)-1])
	if err != nil {
		return nil, fmt.Errorf("patching %s: %w", target, err)
	}

	name := p.Attrs[len(p.Attrs)-1]

	previous, err := GetAttr(parent, name)
	if err != nil {
		if !holdsKeys(parent) || !errors.Is(err, core.ErrAttribute) {
			return nil, fmt.Errorf("patching %s: %w", target, err)
		}

		previous = core.Unset
	}

	if err := SetAttr(parent, name, replacement); err != nil {
		return nil, fmt.Errorf("patching %s: %w", target, err)
	}

	return previous, nil
}

func walk(handle any, names []string) (any, error) {
	for _, name := range names {
		next, err := GetAttr(handle, name)
		if err != nil {
			return nil, err
		}

		handle = next
	}

	return handle, nil
}
