package core

import "reflect"

// Option configures a Mock or AsyncMock at construction.
type Option func(*config)

// WithSpec constrains the mock to the given attribute names.
func WithSpec(names ...string) Option {
	return func(c *config) {
		c.spec = SpecOf(names...)
		c.reportedType = nil
	}
}

// WithSpecFrom constrains the mock to the public, non-callable members of
// value. See SpecFrom for how instances and classes differ.
func WithSpecFrom(value any) Option {
	return func(c *config) {
		c.spec, c.reportedType = SpecFrom(value)
	}
}

// WithSpecOf uses an already built Spec.
func WithSpecOf(spec Spec) Option {
	return func(c *config) {
		c.spec = spec
	}
}

// WithSideEffect sets the side effect. Plain values are converted with
// SideEffectOf.
func WithSideEffect(effect any) Option {
	return func(c *config) {
		c.sideEffect = SideEffectOf(effect)
	}
}

// WithReturnValue sets the value returned by every invocation that has no
// side effect. Zero values count as set.
func WithReturnValue(value any) Option {
	return func(c *config) {
		c.returnValue = value
		c.hasReturn = true
	}
}

// WithAttr sets an attribute after the spec and response are configured.
func WithAttr(name string, value any) Option {
	return func(c *config) {
		if c.attrs == nil {
			c.attrs = make(map[string]any)
		}

		c.attrs[name] = value
	}
}

// WithAttrs sets several attributes, as WithAttr.
func WithAttrs(attrs map[string]any) Option {
	return func(c *config) {
		for name, value := range attrs {
			WithAttr(name, value)(c)
		}
	}
}

// WithName names the mock in failure messages and String output.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithDiffer replaces the formatter used to show expected and actual call
// lists in assertion failures.
func WithDiffer(differ Differ) Option {
	return func(c *config) {
		c.differ = differ
	}
}

type config struct {
	name         string
	spec         Spec
	reportedType reflect.Type
	sideEffect   SideEffect
	returnValue  any
	hasReturn    bool
	attrs        map[string]any
	differ       Differ
}

func newConfig(defaultName string, opts []Option) config {
	cfg := config{name: defaultName}
	for _, o := range opts {
		o(&cfg)
	}

	return cfg
}
