package registry_test

import (
	"errors"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/toejough/umock/internal/registry"
)

var errLoad = errors.New("load failed")

func TestMap_Import(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	r := registry.NewMap()
	mod := registry.NewModule("app", nil)
	r.Register("app", mod)

	g.Expect(r.Import("app")).To(BeIdenticalTo(mod))
	g.Expect(r.IsRegistered("app")).To(BeTrue())

	_, err := r.Import("missing")
	g.Expect(err).To(MatchError(registry.ErrModuleNotFound))
}

// TestMap_Provide verifies a loader runs once and registers its module.
func TestMap_Provide(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	r := registry.NewMap()
	loads := 0
	r.Provide("lazy", func() (any, error) {
		loads++

		return registry.NewModule("lazy", nil), nil
	})

	g.Expect(r.IsRegistered("lazy")).To(BeFalse())

	first, err := r.Import("lazy")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(r.IsRegistered("lazy")).To(BeTrue())

	second, err := r.Import("lazy")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(second).To(BeIdenticalTo(first))
	g.Expect(loads).To(Equal(1))

	r.Unregister("lazy")
	g.Expect(r.IsRegistered("lazy")).To(BeFalse())

	third, err := r.Import("lazy")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(third).NotTo(BeIdenticalTo(first))
	g.Expect(loads).To(Equal(2))
}

func TestMap_Provide_Error(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	r := registry.NewMap()
	r.Provide("broken", func() (any, error) { return nil, errLoad })

	_, err := r.Import("broken")
	g.Expect(err).To(MatchError(errLoad))
	g.Expect(err).To(MatchError(ContainSubstring("importing broken")))
	g.Expect(r.IsRegistered("broken")).To(BeFalse())
}

func TestModule(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	attrs := map[string]any{"a": 1}
	mod := registry.NewModule("pkg", attrs)
	attrs["b"] = 2

	g.Expect(mod.Name()).To(Equal("pkg"))
	g.Expect(mod.AttrNames()).To(Equal([]string{"a"}))
	g.Expect(mod.GetAttr("a")).To(Equal(1))

	_, err := mod.GetAttr("b")
	g.Expect(err).To(MatchError(ContainSubstring(`module pkg: attribute "b" does not exist`)))

	g.Expect(mod.SetAttr("b", 3)).To(Succeed())
	g.Expect(mod.AttrNames()).To(Equal([]string{"a", "b"}))
	g.Expect(mod.DelAttr("a")).To(Succeed())
	g.Expect(mod.DelAttr("a")).NotTo(Succeed())
}
