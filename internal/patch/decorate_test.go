package patch_test

import (
	"testing"

	. "github.com/onsi/gomega"

	"github.com/toejough/umock/internal/core"
	"github.com/toejough/umock/internal/patch"
)

// TestDecorate_AppendsReplacement verifies the replacement follows the
// caller's arguments and the target is restored after the call.
func TestDecorate_AppendsReplacement(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	r, mod, _ := newRegistry()
	decorate := patch.Decorate("svc:greeting", patch.WithRegistry(r))

	var seen []any

	wrapped := decorate(func(args ...any) (any, error) {
		seen = args

		current, err := mod.GetAttr("greeting")
		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(current).To(BeIdenticalTo(args[len(args)-1]))

		return "done", nil
	})

	g.Expect(wrapped("a", 1)).To(Equal("done"))
	g.Expect(seen).To(HaveLen(3))
	g.Expect(seen[:2]).To(Equal([]any{"a", 1}))
	g.Expect(seen[2]).To(BeAssignableToTypeOf(&core.Mock{}))
	g.Expect(mod.GetAttr("greeting")).To(Equal("hello"))
}

// TestDecorate_FreshPatchPerCall verifies each call gets its own mock.
func TestDecorate_FreshPatchPerCall(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	r, _, _ := newRegistry()

	var replacements []any

	wrapped := patch.Decorate("svc:greeting", patch.WithRegistry(r))(func(args ...any) (any, error) {
		replacements = append(replacements, args[0])

		return nil, nil
	})

	for range 2 {
		_, err := wrapped()
		g.Expect(err).NotTo(HaveOccurred())
	}

	g.Expect(replacements).To(HaveLen(2))
	g.Expect(replacements[0]).NotTo(BeIdenticalTo(replacements[1]))
}

// TestDecorate_RestoresOnFailure verifies errors and panics propagate after
// the target is restored.
func TestDecorate_RestoresOnFailure(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	r, mod, _ := newRegistry()
	decorate := patch.Decorate("svc:greeting", patch.WithRegistry(r), patch.WithNew("temp"))

	failing := decorate(func(...any) (any, error) { return "partial", errBody })

	result, err := failing()
	g.Expect(err).To(MatchError(errBody))
	g.Expect(result).To(Equal("partial"))
	g.Expect(mod.GetAttr("greeting")).To(Equal("hello"))

	panicking := decorate(func(...any) (any, error) { panic("boom") })

	g.Expect(func() { _, _ = panicking() }).To(PanicWith("boom"))
	g.Expect(mod.GetAttr("greeting")).To(Equal("hello"))
}

// TestDecorate_StartFailure verifies the wrapped function is not called when
// the target cannot be patched.
func TestDecorate_StartFailure(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	r, _, _ := newRegistry()
	called := false

	wrapped := patch.Decorate("missing:thing", patch.WithRegistry(r))(func(...any) (any, error) {
		called = true

		return nil, nil
	})

	_, err := wrapped()
	g.Expect(err).To(HaveOccurred())
	g.Expect(called).To(BeFalse())
}

type fakeT struct {
	cleanups []func()
	fatal    string
}

func (f *fakeT) Helper() {}

func (f *fakeT) Fatalf(format string, _ ...any) {
	f.fatal = format
}

func (f *fakeT) Cleanup(fn func()) {
	f.cleanups = append(f.cleanups, fn)
}

func (f *fakeT) runCleanups() {
	for i := len(f.cleanups) - 1; i >= 0; i-- {
		f.cleanups[i]()
	}
}

type reporterOnly struct {
	fatal string
}

func (r *reporterOnly) Helper() {}

func (r *reporterOnly) Fatalf(format string, _ ...any) {
	r.fatal = format
}

// TestApply verifies the patch lasts until cleanup runs.
func TestApply(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	r, mod, _ := newRegistry()
	ft := &fakeT{}

	replacement := patch.Apply(ft, "svc:greeting", patch.WithRegistry(r), patch.WithNew("applied"))
	g.Expect(replacement).To(Equal("applied"))
	g.Expect(mod.GetAttr("greeting")).To(Equal("applied"))
	g.Expect(ft.cleanups).To(HaveLen(1))

	ft.runCleanups()
	g.Expect(mod.GetAttr("greeting")).To(Equal("hello"))
	g.Expect(ft.fatal).To(BeEmpty())
}

func TestApply_WithTestingT(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	r, mod, _ := newRegistry()

	t.Run("patched", func(t *testing.T) {
		m := patch.Apply(t, "svc:greeting", patch.WithRegistry(r))
		NewWithT(t).Expect(mod.GetAttr("greeting")).To(BeIdenticalTo(m))
	})

	g.Expect(mod.GetAttr("greeting")).To(Equal("hello"))
}

func TestApply_Failures(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	r, _, _ := newRegistry()

	noCleanup := &reporterOnly{}
	g.Expect(patch.Apply(noCleanup, "svc:greeting", patch.WithRegistry(r))).To(BeNil())
	g.Expect(noCleanup.fatal).To(ContainSubstring("needs a reporter with Cleanup"))

	ft := &fakeT{}
	g.Expect(patch.Apply(ft, "missing:thing", patch.WithRegistry(r))).To(BeNil())
	g.Expect(ft.fatal).To(Equal("umock: %v"))
	g.Expect(ft.cleanups).To(BeEmpty())
}
