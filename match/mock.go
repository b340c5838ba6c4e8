package match

import (
	"fmt"

	"github.com/onsi/gomega/format"
	"github.com/onsi/gomega/types"

	"github.com/toejough/umock/internal/core"
)

// HaveBeenCalled succeeds when a *Mock was called, or an *AsyncMock
// awaited, at least once.
func HaveBeenCalled() types.GomegaMatcher {
	return &historyMatcher{
		check: func(calls []core.Call) bool { return len(calls) > 0 },
		describe: func(verb string) string {
			return "to have been " + verb
		},
	}
}

// HaveBeenCalledTimes succeeds when the mock was called (or awaited)
// exactly n times.
func HaveBeenCalledTimes(n int) types.GomegaMatcher {
	return &historyMatcher{
		check: func(calls []core.Call) bool { return len(calls) == n },
		describe: func(verb string) string {
			return fmt.Sprintf("to have been %s %d times", verb, n)
		},
	}
}

// HaveBeenCalledWith succeeds when some call (or await) had the given
// arguments. A trailing core.Kwargs is the keyword mapping; arguments may be
// matchers.
func HaveBeenCalledWith(args ...any) types.GomegaMatcher {
	expected := core.NewCall(args...)

	return &historyMatcher{
		check: func(calls []core.Call) bool {
			for _, c := range calls {
				if expected.Match(c) == nil {
					return true
				}
			}

			return false
		},
		describe: func(verb string) string {
			return fmt.Sprintf("to have been %s with %s", verb, expected)
		},
	}
}

// HaveBeenAwaited is HaveBeenCalled, read naturally for an *AsyncMock.
func HaveBeenAwaited() types.GomegaMatcher {
	return HaveBeenCalled()
}

// HaveBeenAwaitedWith is HaveBeenCalledWith, read naturally for an
// *AsyncMock.
func HaveBeenAwaitedWith(args ...any) types.GomegaMatcher {
	return HaveBeenCalledWith(args...)
}

type historyMatcher struct {
	check    func(calls []core.Call) bool
	describe func(verb string) string
	verb     string
	calls    []core.Call
}

func (m *historyMatcher) FailureMessage(actual any) string {
	return format.Message(m.render(actual), m.describe(m.verb))
}

func (m *historyMatcher) Match(actual any) (bool, error) {
	switch mock := actual.(type) {
	case *core.Mock:
		m.verb, m.calls = "called", mock.CallArgsList()
	case *core.AsyncMock:
		m.verb, m.calls = "awaited", mock.AwaitArgsList()
	default:
		return false, fmt.Errorf("%w: expected *Mock or *AsyncMock, got %T", errTypeMismatch, actual)
	}

	return m.check(m.calls), nil
}

func (m *historyMatcher) NegatedFailureMessage(actual any) string {
	return format.Message(m.render(actual), "not "+m.describe(m.verb))
}

// render shows the mock by name together with its call log, which is more
// useful than gomega's dump of the mock's internals.
func (m *historyMatcher) render(actual any) string {
	text := fmt.Sprintf("%v, %s %d times", actual, m.verb, len(m.calls))
	for _, c := range m.calls {
		text += "\n  " + c.String()
	}

	return text
}
