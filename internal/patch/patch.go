// Package patch substitutes an object in the registry for the duration of
// a scope and restores it afterwards.
package patch

import (
	"errors"
	"fmt"

	"github.com/toejough/umock/internal/core"
	"github.com/toejough/umock/internal/registry"
)

// Errors returned when a Patch is used out of order.
var (
	ErrPatchActive   = errors.New("patch is already active")
	ErrPatchInactive = errors.New("patch is not active")
)

// Option configures a Patch.
type Option func(*Patch)

// WithNew installs value instead of a synthesized mock.
func WithNew(value any) Option {
	return func(p *Patch) {
		p.replacement = value
		p.hasReplacement = true
	}
}

// WithMockOptions configures the mock synthesized when no replacement is
// given.
func WithMockOptions(opts ...core.Option) Option {
	return func(p *Patch) {
		p.mockOpts = append(p.mockOpts, opts...)
	}
}

// WithAsync makes the synthesized replacement an AsyncMock.
func WithAsync() Option {
	return func(p *Patch) {
		p.async = true
	}
}

// WithRegistry resolves the target in r instead of registry.Default.
func WithRegistry(r registry.Registry) Option {
	return func(p *Patch) {
		p.registry = r
	}
}

// WithLogger reports activation and restoration to logger.
func WithLogger(logger core.Logger) Option {
	return func(p *Patch) {
		p.logger = logger
	}
}

// Patch is one substitution of the object at a target path. It moves from
// idle to active on Start and back on Stop. previous is held only while
// active.
type Patch struct {
	target         string
	replacement    any
	hasReplacement bool
	mockOpts       []core.Option
	async          bool
	registry       registry.Registry
	logger         core.Logger

	active   bool
	previous any
}

// New returns an idle Patch for target.
func New(target string, opts ...Option) *Patch {
	p := &Patch{target: target, registry: registry.Default}
	for _, o := range opts {
		o(p)
	}

	return p
}

// Target returns the patched target path.
func (p *Patch) Target() string {
	return p.target
}

// Active reports whether the substitution is installed.
func (p *Patch) Active() bool {
	return p.active
}

// Start installs the replacement and returns it. Without an explicit
// replacement a new mock is built from the mock options on every Start.
func (p *Patch) Start() (any, error) {
	if p.active {
		return nil, fmt.Errorf("starting patch of %s: %w", p.target, ErrPatchActive)
	}

	replacement := p.replacement
	if !p.hasReplacement {
		replacement = p.newMock()
	}

	previous, err := registry.PatchTarget(p.registry, p.target, replacement)
	if err != nil {
		return nil, err
	}

	p.active = true
	p.previous = previous
	p.logf("umock: patched %s with %v", p.target, replacement)

	return replacement, nil
}

// Stop restores the original binding. The patch is idle afterwards even if
// restoring fails.
func (p *Patch) Stop() error {
	if !p.active {
		return fmt.Errorf("stopping patch of %s: %w", p.target, ErrPatchInactive)
	}

	previous := p.previous
	p.active = false
	p.previous = nil

	if _, err := registry.PatchTarget(p.registry, p.target, previous); err != nil {
		p.logf("umock: restoring %s failed: %v", p.target, err)

		return fmt.Errorf("restoring %s: %w", p.target, err)
	}

	p.logf("umock: restored %s", p.target)

	return nil
}

// Do runs fn with the patch active and always restores afterwards, on
// return, error and panic. A failing body and a failing restore are joined.
func (p *Patch) Do(fn func(replacement any) error) (err error) {
	replacement, err := p.Start()
	if err != nil {
		return err
	}

	defer func() {
		if stopErr := p.Stop(); stopErr != nil {
			err = errors.Join(err, stopErr)
		}
	}()

	return fn(replacement)
}

func (p *Patch) logf(format string, args ...any) {
	if p.logger != nil {
		p.logger.Logf(format, args...)
	}
}

func (p *Patch) newMock() any {
	if p.async {
		return core.NewAsyncMock(p.mockOpts...)
	}

	return core.NewMock(p.mockOpts...)
}
