package core

import (
	"fmt"
	"reflect"

	"github.com/google/uuid"
)

// Mock is a call-recording stand-in with configurable responses.
//
// Reading an unknown attribute creates a child Mock on first access and
// returns that same child afterwards. With a spec, reads and writes of names
// outside the spec fail with ErrAttribute.
type Mock struct {
	s *state
}

// NewMock creates a Mock. Options are applied in order; attributes set with
// WithAttr are applied last and must satisfy the spec, or NewMock panics.
func NewMock(opts ...Option) *Mock {
	cfg := newConfig("mock", opts)

	//nolint:forcetypeassert // wrap returns the flavor it is given
	m := wrap(newState(syncFlavor, cfg)).(*Mock)
	m.s.apply(cfg)

	return m
}

// Call invokes the mock. The call is logged before the response is computed.
// A side effect error is returned exactly as configured.
func (m *Mock) Call(args ...any) (any, error) {
	return m.s.respond(m.s.record(args))
}

// MakeFunc returns a function of funcType that invokes the mock.
func (m *Mock) MakeFunc(funcType reflect.Type) reflect.Value {
	return makeTypedFunc(funcType, func(args []any) (any, error) {
		return m.Call(args...)
	})
}

// GetAttr reads an attribute, creating a child Mock for unknown names.
// Reserved names return their configuration or Unset.
func (m *Mock) GetAttr(name string) (any, error) {
	return m.s.getAttr(name)
}

// SetAttr assigns an attribute. Reserved names update the configuration.
func (m *Mock) SetAttr(name string, value any) error {
	return m.s.setAttr(name, value)
}

// DelAttr removes an attribute. A later read creates a fresh child.
func (m *Mock) DelAttr(name string) error {
	return m.s.delAttr(name)
}

// AttrNames lists the names currently stored on the mock.
func (m *Mock) AttrNames() []string {
	return m.s.attrNames()
}

// Attr reads an attribute that is expected to be a *Mock.
func (m *Mock) Attr(name string) (*Mock, error) {
	v, err := m.GetAttr(name)
	if err != nil {
		return nil, err
	}

	child, ok := v.(*Mock)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s is %T, not a *Mock", ErrType, m.s.displayName(), name, v)
	}

	return child, nil
}

// Configure sets attributes by dotted path. Intermediate names are read as
// child mocks; the final name is assigned, so reserved names configure the
// response of nested children:
//
//	m.Configure(map[string]any{"db.query.return_value": 3})
func (m *Mock) Configure(attrs map[string]any) error {
	return m.s.configure(attrs)
}

// ConfigureYAML decodes a YAML mapping of dotted paths and applies it as
// Configure does.
func (m *Mock) ConfigureYAML(data []byte) error {
	return m.s.configureYAML(data)
}

// ResetMock clears the invocation logs, keeping configuration and attributes.
func (m *Mock) ResetMock() {
	m.s.reset()
}

// ReturnValue returns the configured return value, if one is set.
func (m *Mock) ReturnValue() (any, bool) {
	return m.s.getReturnValue()
}

// SetReturnValue sets the value returned when no side effect is set.
func (m *Mock) SetReturnValue(value any) {
	m.s.setReturnValue(value)
}

// SideEffect returns the configured side effect, or nil.
func (m *Mock) SideEffect() SideEffect {
	return m.s.getSideEffect()
}

// SetSideEffect sets the side effect. nil clears it.
func (m *Mock) SetSideEffect(effect SideEffect) {
	m.s.setSideEffect(effect)
}

// Spec returns the mock's spec.
func (m *Mock) Spec() Spec {
	return m.s.spec
}

// ReportedType is the type the mock claims to be. It is the instance's type
// when the spec came from an instance, and *Mock otherwise.
func (m *Mock) ReportedType() reflect.Type {
	return m.s.typ()
}

// Name returns the mock's name, including its path from the root mock.
func (m *Mock) Name() string {
	return m.s.displayName()
}

// ID returns the mock's unique id.
func (m *Mock) ID() uuid.UUID {
	return m.s.id
}

func (m *Mock) String() string {
	return m.s.String()
}

// CallCount returns the number of calls since construction or the last reset.
func (m *Mock) CallCount() int {
	return m.s.count()
}

// Called reports whether the mock was called at least once.
func (m *Mock) Called() bool {
	return m.s.count() > 0
}

// CallArgs returns the last call, or false if there was none.
func (m *Mock) CallArgs() (Call, bool) {
	return m.s.last()
}

// CallArgsList returns every call in order.
func (m *Mock) CallArgsList() []Call {
	return m.s.log()
}

// MockCalls returns the calls made to this mock and all its descendants,
// each named by its path relative to this mock. Only root mocks collect
// them.
func (m *Mock) MockCalls() []Call {
	return m.s.mockLog()
}

// AssertCalled fails unless the mock was called.
func (m *Mock) AssertCalled() error {
	return m.s.assertCalled(callVerbs)
}

// AssertCalledOnce fails unless the mock was called exactly once.
func (m *Mock) AssertCalledOnce() error {
	return m.s.assertCalledOnce(callVerbs)
}

// AssertCalledWith fails unless the last call had the given arguments.
func (m *Mock) AssertCalledWith(args ...any) error {
	return m.s.assertCalledWith(callVerbs, args)
}

// AssertCalledOnceWith fails unless the mock was called exactly once, with
// the given arguments.
func (m *Mock) AssertCalledOnceWith(args ...any) error {
	return m.s.assertCalledOnceWith(callVerbs, args)
}

// AssertAnyCall fails unless some call had the given arguments.
func (m *Mock) AssertAnyCall(args ...any) error {
	return m.s.assertAnyCall(callVerbs, args)
}

// AssertHasCalls fails unless the log holds the expected calls. In order,
// each expected call must match the logged call at the same index; with
// anyOrder each only needs to appear somewhere.
func (m *Mock) AssertHasCalls(expected []Call, anyOrder bool) error {
	return m.s.assertHasCalls(callVerbs, expected, anyOrder)
}

// AssertNeverCalled fails if the mock was called.
func (m *Mock) AssertNeverCalled() error {
	return m.s.assertNotCalled(callVerbs)
}
