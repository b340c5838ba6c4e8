// Package core provides the internal implementation of umock's mock objects:
// call recording, attribute auto-vivification, specs, side effects and
// assertions.
package core
