package core

import "reflect"

// IsInstance reports whether value is of type t. Mocks answer with their
// reported type, so a mock specced from an instance passes for that
// instance's type. Interface types match any implementing value.
func IsInstance(value any, t reflect.Type) bool {
	actual := reflect.TypeOf(value)

	if reporter, ok := value.(interface{ ReportedType() reflect.Type }); ok {
		actual = reporter.ReportedType()
	}

	if actual == nil || t == nil {
		return false
	}

	if actual == t {
		return true
	}

	return t.Kind() == reflect.Interface && actual.Implements(t)
}
