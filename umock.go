// Package umock is a small mocking library: call-recording mocks with
// auto-vivified attributes, specs and side effects, plus patching of
// objects addressed by path in an injectable registry.
//
// This is the public API entry point. Implementation lives in internal/core,
// internal/registry and internal/patch.
package umock

import (
	"iter"
	"reflect"

	"github.com/toejough/umock/internal/core"
	"github.com/toejough/umock/internal/patch"
	"github.com/toejough/umock/internal/registry"
)

// Types re-exported from internal/core.

// AsyncMock is the awaitable counterpart of Mock.
type AsyncMock = core.AsyncMock

// Call is one entry of an invocation log.
type Call = core.Call

// Differ renders the difference between expected and actual call lists.
type Differ = core.Differ

// Future is the pending result of an AsyncMock invocation.
type Future = core.Future

// Kwargs holds keyword arguments; pass it last to Call or Assert* methods.
type Kwargs = core.Kwargs

// Logger receives diagnostics. *testing.T satisfies it.
type Logger = core.Logger

// Matcher defines the interface for flexible value matching.
type Matcher = core.Matcher

// Mock is a call-recording stand-in with configurable responses.
type Mock = core.Mock

// Option configures a Mock or AsyncMock.
type Option = core.Option

// SideEffect determines a mock's response to invocation.
type SideEffect = core.SideEffect

// Spec constrains the attribute names a mock accepts.
type Spec = core.Spec

// TestReporter is the minimal interface umock needs from test frameworks.
type TestReporter = core.TestReporter

// Error kinds.
var (
	ErrAttribute      = core.ErrAttribute
	ErrType           = core.ErrType
	ErrRuntime        = core.ErrRuntime
	ErrStopIteration  = core.ErrStopIteration
	ErrAssertion      = core.ErrAssertion
	ErrModuleNotFound = registry.ErrModuleNotFound
	ErrPatchActive    = patch.ErrPatchActive
	ErrPatchInactive  = patch.ErrPatchInactive
)

// Unset is the absence sentinel for unconfigured reserved names and for
// attributes that did not exist before a patch.
//
//nolint:gochecknoglobals // Intentional exported constant-like value
var Unset = core.Unset

// Unconstrained is the spec of a mock that accepts every name.
//
//nolint:gochecknoglobals // Intentional exported constant-like value
var Unconstrained = core.Unconstrained

// Reserved attribute names addressing a mock's response configuration.
const (
	ReturnValueName = core.ReturnValueName
	SideEffectName  = core.SideEffectName
)

// NewMock creates a Mock.
func NewMock(opts ...Option) *Mock {
	return core.NewMock(opts...)
}

// NewAsyncMock creates an AsyncMock.
func NewAsyncMock(opts ...Option) *AsyncMock {
	return core.NewAsyncMock(opts...)
}

// NewCall builds an expected call for AssertHasCalls and friends.
func NewCall(args ...any) Call {
	return core.NewCall(args...)
}

// FuncOf returns a function of type F that forwards every call to m.
func FuncOf[F any](m *Mock) F {
	return core.FuncOf[F](m)
}

// AsyncFuncOf returns a function of type F that invokes and awaits m.
func AsyncFuncOf[F any](m *AsyncMock) F {
	return core.AsyncFuncOf[F](m)
}

// IsInstance reports whether value is of type t, honouring a mock's
// reported type.
func IsInstance(value any, t reflect.Type) bool {
	return core.IsInstance(value, t)
}

// Require fails the test with err when it is non-nil.
func Require(t TestReporter, err error) {
	t.Helper()
	core.Require(t, err)
}

// Mock options.

// WithSpec constrains a mock to the given attribute names.
func WithSpec(names ...string) Option {
	return core.WithSpec(names...)
}

// WithSpecFrom constrains a mock to the public, non-callable members of value.
func WithSpecFrom(value any) Option {
	return core.WithSpecFrom(value)
}

// WithSpecOf uses an already built Spec.
func WithSpecOf(spec Spec) Option {
	return core.WithSpecOf(spec)
}

// WithSideEffect sets a mock's side effect.
func WithSideEffect(effect any) Option {
	return core.WithSideEffect(effect)
}

// WithReturnValue sets a mock's return value.
func WithReturnValue(value any) Option {
	return core.WithReturnValue(value)
}

// WithAttr sets an attribute on a new mock.
func WithAttr(name string, value any) Option {
	return core.WithAttr(name, value)
}

// WithAttrs sets several attributes on a new mock.
func WithAttrs(attrs map[string]any) Option {
	return core.WithAttrs(attrs)
}

// WithName names a mock.
func WithName(name string) Option {
	return core.WithName(name)
}

// WithDiffer replaces the call list formatter of assertion failures.
func WithDiffer(differ Differ) Option {
	return core.WithDiffer(differ)
}

// Specs.

// SpecOf returns a spec allowing exactly names.
func SpecOf(names ...string) Spec {
	return core.SpecOf(names...)
}

// SpecFrom derives a spec from a live value or a reflect.Type, along with the
// type a mock built from it reports.
func SpecFrom(value any) (Spec, reflect.Type) {
	return core.SpecFrom(value)
}

// SpecFromSource derives a spec from a struct declared in Go source.
func SpecFromSource(src []byte, typeName string) (Spec, error) {
	return core.SpecFromSource(src, typeName)
}

// Side effects.

// Func computes responses from the invocation's arguments.
func Func(fn func(args []any, kwargs Kwargs) (any, error)) SideEffect {
	return core.Func(fn)
}

// Raise fails every invocation with err.
func Raise(err error) SideEffect {
	return core.Raise(err)
}

// RaiseNew fails every invocation with a fresh error from newErr.
func RaiseNew(newErr func() error) SideEffect {
	return core.RaiseNew(newErr)
}

// Values returns vals in order, one per invocation.
func Values(vals ...any) SideEffect {
	return core.Values(vals...)
}

// FromSeq returns the values of seq in order, pulled one per invocation.
func FromSeq(seq iter.Seq[any]) SideEffect {
	return core.FromSeq(seq)
}

// SideEffectOf converts a func, error, error constructor or sequence into a
// SideEffect.
func SideEffectOf(value any) SideEffect {
	return core.SideEffectOf(value)
}

// Resolved returns an already resolved Future, for callables of an
// AsyncMock that produce their own.
func Resolved(value any, err error) *Future {
	return core.Resolved(value, err)
}

// Types re-exported from internal/registry.

// Registry is the object registry targets are resolved against.
type Registry = registry.Registry

// Loader produces a module on import.
type Loader = registry.Loader

// MapRegistry is the in-memory Registry.
type MapRegistry = registry.Map

// Module is a named attribute namespace.
type Module = registry.Module

// NewRegistry returns an empty in-memory registry.
func NewRegistry() *MapRegistry {
	return registry.NewMap()
}

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *MapRegistry {
	return registry.Default
}

// NewModule returns a Module holding a copy of attrs.
func NewModule(name string, attrs map[string]any) *Module {
	return registry.NewModule(name, attrs)
}

// Resolve returns the object target denotes in r.
func Resolve(r Registry, target any) (any, error) {
	return registry.Resolve(r, target)
}

// PatchTarget installs replacement at target in r and returns what was
// there.
func PatchTarget(r Registry, target string, replacement any) (any, error) {
	return registry.PatchTarget(r, target, replacement)
}

// Lookup resolves target in r as an F, adapting mocks to func types.
func Lookup[F any](r Registry, target string) (F, error) {
	return registry.Lookup[F](r, target)
}

// Types re-exported from internal/patch.

// PatchOption configures a Patch.
type PatchOption = patch.Option

// PatchController is one scoped substitution of a target.
type PatchController = patch.Patch

// PatchFunc is the shape of a function Decorate can wrap.
type PatchFunc = patch.Func

// Patch returns an idle controller for target.
func Patch(target string, opts ...PatchOption) *PatchController {
	return patch.New(target, opts...)
}

// Decorate returns a decorator that patches target around each call.
func Decorate(target string, opts ...PatchOption) func(PatchFunc) PatchFunc {
	return patch.Decorate(target, opts...)
}

// Apply patches target until the test ends.
func Apply(t TestReporter, target string, opts ...PatchOption) any {
	t.Helper()

	return patch.Apply(t, target, opts...)
}

// WithNew installs value instead of a synthesized mock.
func WithNew(value any) PatchOption {
	return patch.WithNew(value)
}

// WithMockOptions configures the synthesized mock.
func WithMockOptions(opts ...Option) PatchOption {
	return patch.WithMockOptions(opts...)
}

// WithAsync synthesizes an AsyncMock.
func WithAsync() PatchOption {
	return patch.WithAsync()
}

// WithRegistry resolves the target in r.
func WithRegistry(r Registry) PatchOption {
	return patch.WithRegistry(r)
}

// WithLogger reports patch activation and restoration.
func WithLogger(logger Logger) PatchOption {
	return patch.WithLogger(logger)
}
