package core_test

import (
	"fmt"
	"reflect"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/toejough/umock/internal/core"
)

// TestIsInstance verifies mocks pass for the type they were specced from.
func TestIsInstance(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	fromInstance := core.NewMock(core.WithSpecFrom(account{}))
	g.Expect(core.IsInstance(fromInstance, reflect.TypeFor[account]())).To(BeTrue())
	g.Expect(core.IsInstance(fromInstance, reflect.TypeFor[*core.Mock]())).To(BeFalse())

	fromClass := core.NewMock(core.WithSpecFrom(reflect.TypeFor[account]()))
	g.Expect(core.IsInstance(fromClass, reflect.TypeFor[account]())).To(BeFalse())
	g.Expect(core.IsInstance(fromClass, reflect.TypeFor[*core.Mock]())).To(BeTrue())

	plain := core.NewAsyncMock()
	g.Expect(core.IsInstance(plain, reflect.TypeFor[*core.AsyncMock]())).To(BeTrue())
	g.Expect(core.IsInstance(plain, reflect.TypeFor[fmt.Stringer]())).To(BeTrue())

	g.Expect(core.IsInstance(3, reflect.TypeFor[int]())).To(BeTrue())
	g.Expect(core.IsInstance(nil, reflect.TypeFor[int]())).To(BeFalse())
}

// TestChild_ReportsOwnType verifies specs do not propagate to children.
func TestChild_ReportsOwnType(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	m := core.NewMock(core.WithSpecFrom(account{}))
	owner, err := m.Attr("Owner")
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(owner.ReportedType()).To(Equal(reflect.TypeFor[*core.Mock]()))

	_, err = owner.GetAttr("anything")
	g.Expect(err).NotTo(HaveOccurred())
}
