package core

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Kwargs holds keyword arguments. When passed as the last argument to Call
// or to an Assert* method, it is taken as the keyword mapping rather than a
// positional argument.
type Kwargs map[string]any

// Call is one entry of an invocation log.
type Call struct {
	// Name is the path of the invoked mock relative to the mock whose log
	// holds the entry. It is empty in a mock's own log.
	Name   string
	Args   []any
	Kwargs Kwargs
}

// NewCall builds the expected form of an invocation. A trailing Kwargs value
// becomes the keyword arguments.
func NewCall(args ...any) Call {
	positional, kwargs := splitArgs(args)

	return Call{Args: positional, Kwargs: kwargs}
}

// Match reports why actual differs from c, or nil when they are equal.
// Expected values that implement Matcher are evaluated instead of compared.
func (c Call) Match(actual Call) error {
	if len(c.Args) != len(actual.Args) {
		//nolint:err113 // validation error with dynamic context
		return fmt.Errorf("expected %d args, got %d", len(c.Args), len(actual.Args))
	}

	for i, expected := range c.Args {
		ok, msg := MatchValue(actual.Args[i], expected)
		if !ok {
			//nolint:err113 // validation error with dynamic context
			return fmt.Errorf("arg %d: %s", i, msg)
		}
	}

	if len(c.Kwargs) != len(actual.Kwargs) {
		//nolint:err113 // validation error with dynamic context
		return fmt.Errorf("expected keywords %v, got %v", sortedKeys(c.Kwargs), sortedKeys(actual.Kwargs))
	}

	for _, key := range sortedKeys(c.Kwargs) {
		got, present := actual.Kwargs[key]
		if !present {
			//nolint:err113 // validation error with dynamic context
			return fmt.Errorf("missing keyword %q", key)
		}

		ok, msg := MatchValue(got, c.Kwargs[key])
		if !ok {
			//nolint:err113 // validation error with dynamic context
			return fmt.Errorf("keyword %q: %s", key, msg)
		}
	}

	return nil
}

func (c Call) String() string {
	parts := make([]string, 0, len(c.Args)+len(c.Kwargs))

	for _, arg := range c.Args {
		parts = append(parts, fmt.Sprintf("%#v", arg))
	}

	for _, key := range sortedKeys(c.Kwargs) {
		parts = append(parts, fmt.Sprintf("%s=%#v", key, c.Kwargs[key]))
	}

	name := c.Name
	if name == "" {
		name = "call"
	}

	return name + "(" + strings.Join(parts, ", ") + ")"
}

func formatCalls(calls []Call) string {
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.String()
	}

	return strings.Join(lines, "\n") + "\n"
}

func sortedKeys(kwargs Kwargs) []string {
	return slices.Sorted(maps.Keys(kwargs))
}

// splitArgs separates a trailing Kwargs from positional args. Empty parts
// come back nil so that logged calls compare equal however they were built.
func splitArgs(args []any) ([]any, Kwargs) {
	var kwargs Kwargs

	if len(args) > 0 {
		if kw, ok := args[len(args)-1].(Kwargs); ok {
			args = args[:len(args)-1]

			if len(kw) > 0 {
				kwargs = maps.Clone(kw)
			}
		}
	}

	if len(args) == 0 {
		return nil, kwargs
	}

	return slices.Clone(args), kwargs
}
