// Package registry locates objects by target path and substitutes them.
//
// The object registry is injectable: Registry abstracts "import a module by
// path", and attribute access works on any handle through GetAttr/SetAttr.
package registry

import (
	"errors"
	"fmt"
	"sync"
)

// ErrModuleNotFound is returned by Import when no module is registered or
// provided under a path.
var ErrModuleNotFound = errors.New("module not found")

// Registry is the object registry targets are resolved against.
type Registry interface {
	// Import returns the module registered under path, importing (and
	// registering) it first if needed.
	Import(path string) (any, error)
	// IsRegistered reports whether a module is registered under path.
	IsRegistered(path string) bool
	// Register installs handle as the module under path.
	Register(path string, handle any)
}

// Loader produces a module on import.
type Loader func() (any, error)

// Map is an in-memory Registry: registered handles plus lazy loaders that
// stand in for importing a module that is not loaded yet.
type Map struct {
	mu      sync.Mutex
	modules map[string]any
	loaders map[string]Loader
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{
		modules: make(map[string]any),
		loaders: make(map[string]Loader),
	}
}

// Default is the process-wide registry used when none is given.
//
//nolint:gochecknoglobals // Package-level registry is intentional, like a module table
var Default = NewMap()

// Import implements Registry. A registered module wins over its loader.
func (r *Map) Import(path string) (any, error) {
	r.mu.Lock()

	if handle, ok := r.modules[path]; ok {
		r.mu.Unlock()

		return handle, nil
	}

	loader, ok := r.loaders[path]
	r.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, path)
	}

	handle, err := loader()
	if err != nil {
		return nil, fmt.Errorf("importing %s: %w", path, err)
	}

	r.Register(path, handle)

	return handle, nil
}

// IsRegistered implements Registry.
func (r *Map) IsRegistered(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.modules[path]

	return ok
}

// Provide sets the loader used to import path when it is not registered.
func (r *Map) Provide(path string, loader Loader) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.loaders[path] = loader
}

// Register implements Registry.
func (r *Map) Register(path string, handle any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.modules[path] = handle
}

// Unregister forgets the module under path. Its loader, if any, stays, so
// the next Import loads a fresh module.
func (r *Map) Unregister(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.modules, path)
}
