package core

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"
)

// Future is the pending result of an AsyncMock invocation. The response is
// computed by the first Await, which is the single suspension point.
type Future struct {
	once    sync.Once
	compute func() (any, error)
	done    chan struct{}
	value   any
	err     error
}

// Resolved returns a Future that is already resolved with value and err.
func Resolved(value any, err error) *Future {
	f := &Future{done: make(chan struct{}), value: value, err: err}
	close(f.done)

	return f
}

// Await returns the result, computing it on the first call. If the result is
// itself a *Future, it is awaited too. A canceled ctx stops an Await that
// would still have to compute or wait; a result that is already available is
// returned regardless.
func (f *Future) Await(ctx context.Context) (any, error) {
	select {
	case <-f.done:
	default:
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		f.resolve()

		select {
		case <-f.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if inner, ok := f.value.(*Future); ok && f.err == nil {
		return inner.Await(ctx)
	}

	return f.value, f.err
}

// Done is closed once the result is available.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

func (f *Future) resolve() {
	if f.compute == nil {
		return
	}

	f.once.Do(func() {
		f.value, f.err = f.compute()
		close(f.done)
	})
}

func pending(compute func() (any, error)) *Future {
	return &Future{compute: compute, done: make(chan struct{})}
}

// AsyncMock is the awaitable counterpart of Mock. Invoking it returns a
// Future; auto-vivified children and the default result are AsyncMocks, so
// every level of an attribute chain stays awaitable.
type AsyncMock struct {
	s *state
}

// NewAsyncMock creates an AsyncMock. Options behave as for NewMock.
func NewAsyncMock(opts ...Option) *AsyncMock {
	cfg := newConfig("mock", opts)

	//nolint:forcetypeassert // wrap returns the flavor it is given
	m := wrap(newState(asyncFlavor, cfg)).(*AsyncMock)
	m.s.apply(cfg)

	return m
}

// Call invokes the mock. The await is logged synchronously; the response,
// including any side effect, is computed when the Future is first awaited.
func (m *AsyncMock) Call(args ...any) *Future {
	c := m.s.record(args)

	return pending(func() (any, error) {
		return m.s.respond(c)
	})
}

// Await invokes the mock and awaits the result.
func (m *AsyncMock) Await(ctx context.Context, args ...any) (any, error) {
	return m.Call(args...).Await(ctx)
}

// MakeFunc returns a function of funcType that invokes and awaits the mock.
func (m *AsyncMock) MakeFunc(funcType reflect.Type) reflect.Value {
	return makeTypedFunc(funcType, func(args []any) (any, error) {
		return awaitNow(m.Call(args...))
	})
}

// GetAttr reads an attribute, creating a child AsyncMock for unknown names.
func (m *AsyncMock) GetAttr(name string) (any, error) {
	return m.s.getAttr(name)
}

// SetAttr assigns an attribute. Reserved names update the configuration.
func (m *AsyncMock) SetAttr(name string, value any) error {
	return m.s.setAttr(name, value)
}

// DelAttr removes an attribute.
func (m *AsyncMock) DelAttr(name string) error {
	return m.s.delAttr(name)
}

// AttrNames lists the names currently stored on the mock.
func (m *AsyncMock) AttrNames() []string {
	return m.s.attrNames()
}

// Attr reads an attribute that is expected to be an *AsyncMock.
func (m *AsyncMock) Attr(name string) (*AsyncMock, error) {
	v, err := m.GetAttr(name)
	if err != nil {
		return nil, err
	}

	child, ok := v.(*AsyncMock)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s is %T, not an *AsyncMock", ErrType, m.s.displayName(), name, v)
	}

	return child, nil
}

// Configure sets attributes by dotted path, as Mock.Configure.
func (m *AsyncMock) Configure(attrs map[string]any) error {
	return m.s.configure(attrs)
}

// ConfigureYAML applies a YAML mapping of dotted paths.
func (m *AsyncMock) ConfigureYAML(data []byte) error {
	return m.s.configureYAML(data)
}

// ResetMock clears the await logs, keeping configuration and attributes.
func (m *AsyncMock) ResetMock() {
	m.s.reset()
}

// ReturnValue returns the configured return value, if one is set.
func (m *AsyncMock) ReturnValue() (any, bool) {
	return m.s.getReturnValue()
}

// SetReturnValue sets the value awaits resolve to when no side effect is set.
func (m *AsyncMock) SetReturnValue(value any) {
	m.s.setReturnValue(value)
}

// SideEffect returns the configured side effect, or nil.
func (m *AsyncMock) SideEffect() SideEffect {
	return m.s.getSideEffect()
}

// SetSideEffect sets the side effect. nil clears it.
func (m *AsyncMock) SetSideEffect(effect SideEffect) {
	m.s.setSideEffect(effect)
}

// Spec returns the mock's spec.
func (m *AsyncMock) Spec() Spec {
	return m.s.spec
}

// ReportedType is the type the mock claims to be.
func (m *AsyncMock) ReportedType() reflect.Type {
	return m.s.typ()
}

// Name returns the mock's name, including its path from the root mock.
func (m *AsyncMock) Name() string {
	return m.s.displayName()
}

// ID returns the mock's unique id.
func (m *AsyncMock) ID() uuid.UUID {
	return m.s.id
}

func (m *AsyncMock) String() string {
	return m.s.String()
}

// AwaitCount returns the number of awaits since construction or the last
// reset.
func (m *AsyncMock) AwaitCount() int {
	return m.s.count()
}

// Awaited reports whether the mock was awaited at least once.
func (m *AsyncMock) Awaited() bool {
	return m.s.count() > 0
}

// AwaitArgs returns the last await, or false if there was none.
func (m *AsyncMock) AwaitArgs() (Call, bool) {
	return m.s.last()
}

// AwaitArgsList returns every await in order.
func (m *AsyncMock) AwaitArgsList() []Call {
	return m.s.log()
}

// MockCalls returns the awaits made on this mock and its descendants.
func (m *AsyncMock) MockCalls() []Call {
	return m.s.mockLog()
}

// AssertAwaited fails unless the mock was awaited.
func (m *AsyncMock) AssertAwaited() error {
	return m.s.assertCalled(awaitVerbs)
}

// AssertAwaitedOnce fails unless the mock was awaited exactly once.
func (m *AsyncMock) AssertAwaitedOnce() error {
	return m.s.assertCalledOnce(awaitVerbs)
}

// AssertAwaitedWith fails unless the last await had the given arguments.
func (m *AsyncMock) AssertAwaitedWith(args ...any) error {
	return m.s.assertCalledWith(awaitVerbs, args)
}

// AssertAwaitedOnceWith fails unless the mock was awaited exactly once,
// with the given arguments.
func (m *AsyncMock) AssertAwaitedOnceWith(args ...any) error {
	return m.s.assertCalledOnceWith(awaitVerbs, args)
}

// AssertAnyAwait fails unless some await had the given arguments.
func (m *AsyncMock) AssertAnyAwait(args ...any) error {
	return m.s.assertAnyCall(awaitVerbs, args)
}

// AssertHasAwaits is AssertHasCalls for awaits.
func (m *AsyncMock) AssertHasAwaits(expected []Call, anyOrder bool) error {
	return m.s.assertHasCalls(awaitVerbs, expected, anyOrder)
}

// AssertNotAwaited fails if the mock was awaited.
func (m *AsyncMock) AssertNotAwaited() error {
	return m.s.assertNotCalled(awaitVerbs)
}
