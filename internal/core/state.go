package core

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Reserved attribute names. They address the response configuration and are
// never subject to spec filtering or auto-vivification.
const (
	ReturnValueName = "return_value"
	SideEffectName  = "side_effect"
)

// Unset is the absence sentinel returned for unconfigured reserved names.
// Assigning it to a reserved name clears that configuration.
//
//nolint:gochecknoglobals // Intentional exported constant-like value
var Unset any = unset{}

type unset struct{}

func (unset) String() string { return "<unset>" }

type flavor int

const (
	syncFlavor flavor = iota
	asyncFlavor
)

// attr is one entry of a mock's attribute table: either a plain value or a
// child mock created on first read.
type attr struct {
	value any
	child bool
}

// state is the data model shared by Mock and AsyncMock.
type state struct {
	mu sync.Mutex

	flavor flavor
	name   string
	id     uuid.UUID
	// path is this mock's name relative to root, "" for the root itself.
	path string
	root *state

	spec         Spec
	reportedType reflect.Type
	sideEffect   SideEffect
	returnValue  any
	hasReturn    bool
	differ       Differ

	attrs     map[string]attr
	autoChild any

	calls     []Call
	mockCalls []Call

	// owner is the *Mock or *AsyncMock wrapping this state.
	owner any
}

func newState(f flavor, cfg config) *state {
	s := &state{
		flavor:       f,
		name:         cfg.name,
		id:           uuid.New(),
		spec:         cfg.spec,
		reportedType: cfg.reportedType,
		differ:       cfg.differ,
		attrs:        make(map[string]attr),
	}
	s.root = s

	if s.spec == nil {
		s.spec = Unconstrained
	}

	if s.differ == nil {
		s.differ = UnifiedDiff
	}

	return s
}

// apply finishes construction with the response configuration and the
// extra attributes. Attributes outside the spec are a programmer error.
func (s *state) apply(cfg config) {
	if cfg.sideEffect != nil {
		s.sideEffect = cfg.sideEffect
	}

	if cfg.hasReturn {
		s.returnValue = cfg.returnValue
		s.hasReturn = true
	}

	for _, name := range slices.Sorted(maps.Keys(cfg.attrs)) {
		err := s.setAttr(name, cfg.attrs[name])
		if err != nil {
			panic(fmt.Sprintf("umock: configuring %s: %v", s.displayName(), err))
		}
	}
}

func (s *state) displayName() string {
	if s.path == "" {
		return s.root.name
	}

	if strings.HasPrefix(s.path, "()") {
		return s.root.name + s.path
	}

	return s.root.name + "." + s.path
}

func (s *state) String() string {
	kind := "Mock"
	if s.flavor == asyncFlavor {
		kind = "AsyncMock"
	}

	return fmt.Sprintf("<%s name=%q id=%q>", kind, s.displayName(), s.id.String())
}

// spawn creates a child of the same flavor at the given relative path.
func (s *state) spawn(path string) any {
	child := newState(s.flavor, config{name: s.root.name, differ: s.differ})
	child.root = s.root
	child.path = path

	return wrap(child)
}

func childPath(parent, name string) string {
	if parent == "" {
		return name
	}

	if name == "()" {
		return parent + name
	}

	return parent + "." + name
}

// record appends the invocation to this mock's log and to the root's
// mock_calls before any response is computed.
func (s *state) record(args []any) Call {
	positional, kwargs := splitArgs(args)
	c := Call{Args: positional, Kwargs: kwargs}

	s.mu.Lock()
	s.calls = append(s.calls, c)
	s.mu.Unlock()

	entry := c
	entry.Name = s.path

	s.root.mu.Lock()
	s.root.mockCalls = append(s.root.mockCalls, entry)
	s.root.mu.Unlock()

	return c
}

// respond computes the result of an invocation: side effect, then return
// value, then the cached auto child.
func (s *state) respond(c Call) (any, error) {
	s.mu.Lock()
	effect := s.sideEffect
	returnValue, hasReturn := s.returnValue, s.hasReturn
	s.mu.Unlock()

	if effect != nil {
		return applySideEffect(effect, c, s.flavor == asyncFlavor)
	}

	if hasReturn {
		return returnValue, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.autoChild == nil {
		s.autoChild = s.spawn(childPath(s.path, "()"))
	}

	return s.autoChild, nil
}

func (s *state) getAttr(name string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch name {
	case ReturnValueName:
		if !s.hasReturn {
			return Unset, nil
		}

		return s.returnValue, nil
	case SideEffectName:
		if s.sideEffect == nil {
			return Unset, nil
		}

		return s.sideEffect, nil
	}

	if a, ok := s.attrs[name]; ok {
		return a.value, nil
	}

	if !s.spec.Allows(name) {
		return nil, newAttributeError(s.displayName(), name, "is not in the mock's spec")
	}

	child := s.spawn(childPath(s.path, name))
	s.attrs[name] = attr{value: child, child: true}

	return child, nil
}

func (s *state) setAttr(name string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch name {
	case ReturnValueName:
		s.returnValue, s.hasReturn = value, value != Unset
		if !s.hasReturn {
			s.returnValue = nil
		}

		return nil
	case SideEffectName:
		if value == Unset {
			value = nil
		}

		s.sideEffect = SideEffectOf(value)

		return nil
	}

	if !s.spec.Allows(name) {
		return newAttributeError(s.displayName(), name, "is not in the mock's spec")
	}

	s.attrs[name] = attr{value: value}

	return nil
}

func (s *state) delAttr(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch name {
	case ReturnValueName:
		s.returnValue, s.hasReturn = nil, false

		return nil
	case SideEffectName:
		s.sideEffect = nil

		return nil
	}

	if !s.spec.Allows(name) {
		return newAttributeError(s.displayName(), name, "is not in the mock's spec")
	}

	if _, ok := s.attrs[name]; !ok {
		return newAttributeError(s.displayName(), name, "does not exist")
	}

	delete(s.attrs, name)

	return nil
}

func (s *state) attrNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Sorted(maps.Keys(s.attrs))
}

// reset clears the invocation logs. Configuration and attributes survive.
func (s *state) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = nil
	s.mockCalls = nil
}

func (s *state) log() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.calls)
}

func (s *state) mockLog() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.mockCalls)
}

func (s *state) last() (Call, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.calls) == 0 {
		return Call{}, false
	}

	return s.calls[len(s.calls)-1], true
}

func (s *state) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.calls)
}

func (s *state) setReturnValue(value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.returnValue, s.hasReturn = value, true
}

func (s *state) getReturnValue() (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.returnValue, s.hasReturn
}

func (s *state) setSideEffect(effect SideEffect) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sideEffect = effect
}

func (s *state) getSideEffect() SideEffect {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sideEffect
}

func (s *state) typ() reflect.Type {
	if s.reportedType != nil {
		return s.reportedType
	}

	return reflect.TypeOf(s.owner)
}

// stateOf returns the state behind a *Mock or *AsyncMock.
func stateOf(v any) (*state, bool) {
	switch m := v.(type) {
	case *Mock:
		if m == nil {
			return nil, false
		}

		return m.s, true
	case *AsyncMock:
		if m == nil {
			return nil, false
		}

		return m.s, true
	default:
		return nil, false
	}
}

func wrap(s *state) any {
	if s.flavor == asyncFlavor {
		m := &AsyncMock{s: s}
		s.owner = m

		return m
	}

	m := &Mock{s: s}
	s.owner = m

	return m
}
