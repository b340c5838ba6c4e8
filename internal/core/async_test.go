package core_test

import (
	"context"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/toejough/umock/internal/core"
)

// TestAsyncMock_Await_ReturnValue verifies awaiting yields the configured
// value and logs the await.
func TestAsyncMock_Await_ReturnValue(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	m := core.NewAsyncMock(core.WithReturnValue("ok"))

	g.Expect(m.Await(context.Background(), 1, core.Kwargs{"k": "v"})).To(Equal("ok"))
	g.Expect(m.AwaitCount()).To(Equal(1))
	g.Expect(m.Awaited()).To(BeTrue())
	g.Expect(m.AssertAwaitedOnceWith(1, core.Kwargs{"k": "v"})).To(Succeed())
}

// TestAsyncMock_Call_LogsBeforeAwait verifies the await is recorded when the
// mock is invoked, while the response waits for the future to be awaited.
func TestAsyncMock_Call_LogsBeforeAwait(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	ran := 0
	m := core.NewAsyncMock(core.WithSideEffect(func([]any, core.Kwargs) (any, error) {
		ran++

		return ran, nil
	}))

	future := m.Call("x")
	g.Expect(m.AwaitCount()).To(Equal(1))
	g.Expect(ran).To(Equal(0))
	g.Expect(future.Done()).NotTo(BeClosed())

	g.Expect(future.Await(context.Background())).To(Equal(1))
	g.Expect(future.Done()).To(BeClosed())
	g.Expect(future.Await(context.Background())).To(Equal(1))
	g.Expect(ran).To(Equal(1))
}

// TestAsyncMock_Call_NeverAwaited verifies an abandoned future leaves its
// side effect unrun, and a canceled await does not run it either.
func TestAsyncMock_Call_NeverAwaited(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	m := core.NewAsyncMock(core.WithSideEffect([]int{1, 2}))

	_ = m.Call()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Call().Await(ctx)
	g.Expect(err).To(MatchError(context.Canceled))

	g.Expect(m.Await(context.Background())).To(Equal(1))
	g.Expect(m.AwaitCount()).To(Equal(3))
}

// TestAsyncMock_DefaultResult verifies unconfigured awaits resolve to a
// stable child AsyncMock.
func TestAsyncMock_DefaultResult(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	m := core.NewAsyncMock()

	first, err := m.Await(context.Background())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(first).To(BeAssignableToTypeOf(&core.AsyncMock{}))

	second, err := m.Await(context.Background())
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(second).To(BeIdenticalTo(first))
}

// TestAsyncMock_Children verifies attribute chains stay awaitable.
func TestAsyncMock_Children(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	m := core.NewAsyncMock()

	fetch, err := m.Attr("client")
	g.Expect(err).NotTo(HaveOccurred())

	fetch, err = fetch.Attr("fetch")
	g.Expect(err).NotTo(HaveOccurred())
	fetch.SetReturnValue([]byte("body"))

	g.Expect(fetch.Await(context.Background(), "/path")).To(Equal([]byte("body")))
	g.Expect(m.MockCalls()).To(Equal([]core.Call{{Name: "client.fetch", Args: []any{"/path"}}}))
	g.Expect(fetch.String()).To(HavePrefix(`<AsyncMock name="mock.client.fetch"`))
}

// TestAsyncMock_SideEffect verifies each side effect kind through an await.
func TestAsyncMock_SideEffect(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)
	ctx := context.Background()

	raising := core.NewAsyncMock(core.WithSideEffect(errBoom))
	_, err := raising.Await(ctx)
	g.Expect(err).To(BeIdenticalTo(errBoom))
	g.Expect(raising.AwaitCount()).To(Equal(1))

	calling := core.NewAsyncMock(core.WithSideEffect(func(args []any, _ core.Kwargs) (any, error) {
		return args[0].(string) + "!", nil
	}))
	g.Expect(calling.Await(ctx, "hi")).To(Equal("hi!"))

	sequenced := core.NewAsyncMock(core.WithSideEffect([]string{"a"}))
	g.Expect(sequenced.Await(ctx)).To(Equal("a"))

	_, err = sequenced.Await(ctx)
	g.Expect(err).To(MatchError("coroutine raised StopIteration"))
	g.Expect(err).To(MatchError(core.ErrStopIteration))
	g.Expect(err).To(MatchError(core.ErrRuntime))
}

// TestAsyncMock_CallableReturningFuture verifies a future produced by the
// callable is awaited too.
func TestAsyncMock_CallableReturningFuture(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	m := core.NewAsyncMock(core.WithSideEffect(func([]any, core.Kwargs) (any, error) {
		return core.Resolved(7, nil), nil
	}))

	g.Expect(m.Await(context.Background())).To(Equal(7))
}

// TestFuture_Await_Canceled verifies an unresolved future honours its
// context, while a resolved one ignores it.
func TestFuture_Await_Canceled(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resolved := core.Resolved(1, nil)
	g.Expect(resolved.Await(ctx)).To(Equal(1))

	var pending core.Future

	_, err := pending.Await(ctx)
	g.Expect(err).To(MatchError(context.Canceled))
}

// TestAsyncMock_Assertions verifies the await vocabulary of failures.
func TestAsyncMock_Assertions(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	m := core.NewAsyncMock(core.WithName("fetch"))

	err := m.AssertAwaited()
	g.Expect(err).To(MatchError(core.ErrAssertion))
	g.Expect(err.Error()).To(ContainSubstring("expected fetch to have been awaited"))
	g.Expect(m.AssertNotAwaited()).To(Succeed())

	_ = m.Call(1)
	_ = m.Call(2)

	g.Expect(m.AssertAwaited()).To(Succeed())
	g.Expect(m.AssertAwaitedOnce()).To(MatchError(ContainSubstring("got 2 awaits")))
	g.Expect(m.AssertAwaitedWith(2)).To(Succeed())
	g.Expect(m.AssertAnyAwait(1)).To(Succeed())
	g.Expect(m.AssertAnyAwait(3)).To(MatchError(ContainSubstring("Await call(3) not found")))
	g.Expect(m.AssertHasAwaits([]core.Call{core.NewCall(1), core.NewCall(2)}, false)).To(Succeed())
	g.Expect(m.AssertNotAwaited()).To(MatchError(ContainSubstring("to not have been awaited")))

	args, ok := m.AwaitArgs()
	g.Expect(ok).To(BeTrue())
	g.Expect(args).To(Equal(core.NewCall(2)))
	g.Expect(m.AwaitArgsList()).To(HaveLen(2))

	m.ResetMock()
	g.Expect(m.AwaitCount()).To(Equal(0))
}

// TestAsyncFuncOf verifies a typed function awaits the mock.
func TestAsyncFuncOf(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	m := core.NewAsyncMock(core.WithReturnValue(3))
	fetch := core.AsyncFuncOf[func(string) (int, error)](m)

	g.Expect(fetch("key")).To(Equal(3))
	g.Expect(m.AssertAwaitedOnceWith("key")).To(Succeed())
}
