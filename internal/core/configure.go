package core

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// raiseKey marks a YAML side effect that fails with the given message:
//
//	close.side_effect: {raise: connection closed}
const raiseKey = "raise"

func (s *state) configure(attrs map[string]any) error {
	for _, path := range slices.Sorted(maps.Keys(attrs)) {
		if err := s.configurePath(path, attrs[path]); err != nil {
			return err
		}
	}

	return nil
}

func (s *state) configurePath(path string, value any) error {
	names := strings.Split(path, ".")
	target := s

	for _, name := range names[:len(names)-1] {
		v, err := target.getAttr(name)
		if err != nil {
			return fmt.Errorf("configuring %q: %w", path, err)
		}

		child, ok := stateOf(v)
		if !ok {
			return fmt.Errorf("configuring %q: %w",
				path, newAttributeError(target.displayName(), name, fmt.Sprintf("holds %T, not a mock", v)))
		}

		target = child
	}

	if err := target.setAttr(names[len(names)-1], value); err != nil {
		return fmt.Errorf("configuring %q: %w", path, err)
	}

	return nil
}

func (s *state) configureYAML(data []byte) error {
	var attrs map[string]any

	if err := yaml.Unmarshal(data, &attrs); err != nil {
		return fmt.Errorf("decoding mock configuration: %w", err)
	}

	for path, value := range attrs {
		if path != SideEffectName && !strings.HasSuffix(path, "."+SideEffectName) {
			continue
		}

		if fields, ok := value.(map[string]any); ok {
			if msg, ok := fields[raiseKey].(string); ok {
				//nolint:err113 // error text comes from the fixture
				attrs[path] = Raise(errors.New(msg))
			}
		}
	}

	return s.configure(attrs)
}
