package registry

import (
	"maps"
	"slices"
	"sync"

	"github.com/toejough/umock/internal/core"
)

// Module is a named attribute namespace, the registry's equivalent of a
// loaded module. Programs that resolve collaborators through a Module can
// have them patched by path.
type Module struct {
	mu    sync.Mutex
	name  string
	attrs map[string]any
}

// NewModule returns a Module holding a copy of attrs.
func NewModule(name string, attrs map[string]any) *Module {
	m := &Module{name: name, attrs: maps.Clone(attrs)}
	if m.attrs == nil {
		m.attrs = make(map[string]any)
	}

	return m
}

// Name returns the module's path.
func (m *Module) Name() string {
	return m.name
}

// GetAttr returns the attribute name, failing with ErrAttribute when it is
// missing.
func (m *Module) GetAttr(name string) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.attrs[name]
	if !ok {
		return nil, &core.AttributeError{Owner: "module " + m.name, Name: name, Reason: "does not exist"}
	}

	return v, nil
}

// SetAttr binds name to value.
func (m *Module) SetAttr(name string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.attrs[name] = value

	return nil
}

// DelAttr removes name.
func (m *Module) DelAttr(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.attrs[name]; !ok {
		return &core.AttributeError{Owner: "module " + m.name, Name: name, Reason: "does not exist"}
	}

	delete(m.attrs, name)

	return nil
}

// AttrNames lists the module's attribute names in sorted order.
func (m *Module) AttrNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return slices.Sorted(maps.Keys(m.attrs))
}
