package core

import (
	"strings"

	"github.com/akedrou/textdiff"
)

// Differ renders the difference between the expected and actual call lists
// of a failed assertion.
type Differ func(expected, actual string) string

// UnifiedDiff is the default Differ.
func UnifiedDiff(expected, actual string) string {
	return textdiff.Unified("expected", "actual", expected, actual)
}

// TestReporter is the minimal interface umock needs from test frameworks.
type TestReporter interface {
	Helper()
	Fatalf(format string, args ...any)
}

// Logger receives diagnostics. *testing.T satisfies it.
type Logger interface {
	Logf(format string, args ...any)
}

// Require fails the test with err when it is non-nil. It is meant to wrap
// an Assert* call:
//
//	core.Require(t, m.AssertCalledOnce())
func Require(t TestReporter, err error) {
	if err == nil {
		return
	}

	t.Helper()
	t.Fatalf("%v", err)
}

// verbs carries the vocabulary of failure messages, which differs between
// plain calls and awaits.
type verbs struct {
	noun   string
	past   string
	plural string
}

// unexported variables.
var (
	//nolint:gochecknoglobals // message vocabulary
	callVerbs = verbs{noun: "call", past: "called", plural: "calls"}
	//nolint:gochecknoglobals // message vocabulary
	awaitVerbs = verbs{noun: "await", past: "awaited", plural: "awaits"}
)

func (s *state) assertCalled(v verbs) error {
	if s.count() == 0 {
		return assertionf("expected %s to have been %s at least once, got 0 %s",
			s.displayName(), v.past, v.plural)
	}

	return nil
}

func (s *state) assertCalledOnce(v verbs) error {
	if n := s.count(); n != 1 {
		return assertionf("expected %s to have been %s once, got %d %s",
			s.displayName(), v.past, n, v.plural)
	}

	return nil
}

func (s *state) assertNotCalled(v verbs) error {
	if n := s.count(); n != 0 {
		return assertionf("expected %s to not have been %s, got %d %s:\n%s",
			s.displayName(), v.past, n, v.plural, formatCalls(s.log()))
	}

	return nil
}

func (s *state) assertCalledWith(v verbs, args []any) error {
	expected := NewCall(args...)

	last, ok := s.last()
	if !ok {
		return assertionf("expected %s %s not found.\nexpected: %s\n  actual: not %s",
			s.displayName(), v.noun, expected, v.past)
	}

	return mismatch(s, v, expected, last)
}

func (s *state) assertCalledOnceWith(v verbs, args []any) error {
	if err := s.assertCalledOnce(v); err != nil {
		return err
	}

	return mismatch(s, v, NewCall(args...), s.log()[0])
}

func (s *state) assertAnyCall(v verbs, args []any) error {
	expected := NewCall(args...)
	log := s.log()

	for _, c := range log {
		if expected.Match(c) == nil {
			return nil
		}
	}

	return assertionf("%s %s not found on %s.\nexpected: %s\n  actual:\n%s",
		strings.ToUpper(v.noun[:1])+v.noun[1:], expected, s.displayName(), expected, indent(formatCalls(log)))
}

// assertHasCalls checks expected against the log. In order, expected must
// match the log entry at the same index. With anyOrder, every expected
// call must be present somewhere in the log.
func (s *state) assertHasCalls(v verbs, expected []Call, anyOrder bool) error {
	log := s.log()

	if !anyOrder {
		if len(log) < len(expected) {
			return assertionf("expected at least %d %s on %s, got %d.\n%s",
				len(expected), v.plural, s.displayName(), len(log), s.diff(expected, log))
		}

		for i, e := range expected {
			if err := e.Match(log[i]); err != nil {
				return assertionf("%s list mismatch on %s at index %d: %v\n%s",
					v.noun, s.displayName(), i, err, s.diff(expected, log))
			}
		}

		return nil
	}

	for _, e := range expected {
		found := false

		for _, c := range log {
			if e.Match(c) == nil {
				found = true

				break
			}
		}

		if !found {
			return assertionf("%s not all found on %s: missing %s\n%s",
				v.plural, s.displayName(), e, s.diff(expected, log))
		}
	}

	return nil
}

func (s *state) diff(expected, actual []Call) string {
	return s.differ(formatCalls(expected), formatCalls(actual))
}

func indent(text string) string {
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = "    " + line
	}

	return strings.Join(lines, "\n")
}

func mismatch(s *state, v verbs, expected, actual Call) error {
	err := expected.Match(actual)
	if err == nil {
		return nil
	}

	return assertionf("expected %s %s not found.\nexpected: %s\n  actual: %s\n  reason: %v",
		s.displayName(), v.noun, expected, actual, err)
}
