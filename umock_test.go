package umock_test

import (
	"errors"
	"reflect"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/toejough/umock"
	"github.com/toejough/umock/match"
)

var errRaised = errors.New("raised inside test body")

// mailer is a collaborator reached through the registry, the way code under
// test finds dependencies it expects to be patched.
type mailer struct {
	Host string
	Send func(to, body string) error
}

type handler struct {
	name string
}

func newRegistry() *umock.MapRegistry {
	r := umock.NewRegistry()
	r.Register("pkg.mod", umock.NewModule("pkg.mod", map[string]any{
		"func": &handler{name: "original"},
		"mailer": &mailer{
			Host: "smtp.local",
			Send: func(string, string) error { return nil },
		},
	}))

	return r
}

// notify is code under test: it looks up its collaborator on every call.
func notify(r umock.Registry, to string) error {
	send, err := umock.Lookup[func(to, body string) error](r, "pkg.mod:mailer.Send")
	if err != nil {
		return err
	}

	return send(to, "hello "+to)
}

func TestScenario_SideEffectSequence(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	m := umock.NewMock(umock.WithSideEffect([]int{1, 2, 3}))

	g.Expect(m.Call()).To(Equal(1))
	g.Expect(m.Call()).To(Equal(2))
	g.Expect(m.Call()).To(Equal(3))

	_, err := m.Call()
	g.Expect(err).To(MatchError(umock.ErrStopIteration))
}

func TestScenario_ReturnValue(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	m := umock.NewMock(umock.WithReturnValue(42))

	g.Expect(m.Call()).To(Equal(42))
	g.Expect(m.Call("any", umock.Kwargs{"thing": 1})).To(Equal(42))
}

func TestScenario_AssertCalledWith(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	m := umock.NewMock()
	_, _ = m.Call(1, 2, umock.Kwargs{"a": 3})
	g.Expect(m.AssertCalledWith(1, 2, umock.Kwargs{"a": 3})).To(Succeed())

	other := umock.NewMock()
	_, _ = other.Call(1, 3, umock.Kwargs{"a": 3})
	g.Expect(other.AssertCalledWith(1, 2, umock.Kwargs{"a": 3})).To(MatchError(umock.ErrAssertion))
}

// TestScenario_DecoratorRestores verifies a decorated test body sees the
// replacement and the original is back afterwards, also when the body fails.
func TestScenario_DecoratorRestores(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	r := newRegistry()
	original, err := umock.Resolve(r, "pkg.mod:func")
	g.Expect(err).NotTo(HaveOccurred())

	decorate := umock.Decorate("pkg.mod:func", umock.WithRegistry(r))

	body := decorate(func(args ...any) (any, error) {
		replacement := args[len(args)-1]
		g.Expect(umock.Resolve(r, "pkg.mod:func")).To(BeIdenticalTo(replacement))

		return nil, errRaised
	})

	_, err = body()
	g.Expect(err).To(MatchError(errRaised))

	restored, err := umock.Resolve(r, "pkg.mod:func")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(restored).To(BeIdenticalTo(original))
}

func TestScenario_AssertHasCallsOrder(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	callA := umock.NewCall("a")
	callB := umock.NewCall("b")

	m := umock.NewMock()
	_, _ = m.Call("b")
	_, _ = m.Call("a")
	_, _ = m.Call("c")

	g.Expect(m.AssertHasCalls([]umock.Call{callA, callB}, true)).To(Succeed())
	g.Expect(m.AssertHasCalls([]umock.Call{callA, callB}, false)).To(MatchError(umock.ErrAssertion))
	g.Expect(m.AssertHasCalls([]umock.Call{callB, callA}, false)).To(Succeed())
}

// TestPatchTarget_RoundTrip verifies identity is restored after patching the
// previous value back.
func TestPatchTarget_RoundTrip(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	r := newRegistry()
	before, err := umock.Resolve(r, "pkg.mod:mailer")
	g.Expect(err).NotTo(HaveOccurred())

	old, err := umock.PatchTarget(r, "pkg.mod:mailer", umock.NewMock())
	g.Expect(err).NotTo(HaveOccurred())

	_, err = umock.PatchTarget(r, "pkg.mod:mailer", old)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(umock.Resolve(r, "pkg.mod:mailer")).To(BeIdenticalTo(before))
}

// TestApply_TypedCollaborator patches a func field for the duration of a
// test and asserts on what the code under test sent.
func TestApply_TypedCollaborator(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	r := newRegistry()

	send, ok := umock.Apply(t, "pkg.mod:mailer.Send", umock.WithRegistry(r)).(*umock.Mock)
	g.Expect(ok).To(BeTrue())

	g.Expect(notify(r, "ann")).To(Succeed())
	g.Expect(send).To(match.HaveBeenCalledWith("ann", match.BeAny))
	umock.Require(t, send.AssertCalledOnceWith("ann", "hello ann"))

	send.SetSideEffect(umock.Raise(errRaised))
	g.Expect(notify(r, "bob")).To(MatchError(errRaised))
}

// TestPatch_AsyncCollaborator patches in an AsyncMock and awaits it through
// a typed function.
func TestPatch_AsyncCollaborator(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	r := newRegistry()
	p := umock.Patch("pkg.mod:fetch",
		umock.WithRegistry(r),
		umock.WithAsync(),
		umock.WithMockOptions(umock.WithReturnValue("payload")),
	)

	g.Expect(p.Do(func(replacement any) error {
		fetch, err := umock.Lookup[func(url string) (string, error)](r, "pkg.mod:fetch")
		if err != nil {
			return err
		}

		g.Expect(fetch("/x")).To(Equal("payload"))

		mock, ok := replacement.(*umock.AsyncMock)
		g.Expect(ok).To(BeTrue())
		g.Expect(mock.AssertAwaitedOnceWith("/x")).To(Succeed())

		return nil
	})).To(Succeed())

	_, err := umock.Resolve(r, "pkg.mod:fetch")
	g.Expect(err).To(MatchError(umock.ErrAttribute))
}

// TestMock_SpecFromInstance verifies a mock built from an instance passes
// for it and only allows its data fields.
func TestMock_SpecFromInstance(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	m := umock.NewMock(umock.WithSpecFrom(&mailer{}))

	g.Expect(umock.IsInstance(m, reflect.TypeFor[*mailer]())).To(BeTrue())

	_, err := m.GetAttr("Host")
	g.Expect(err).NotTo(HaveOccurred())

	_, err = m.GetAttr("Send")
	g.Expect(err).To(MatchError(umock.ErrAttribute))
}
