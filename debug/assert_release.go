//go:build !debug

// Package debug provides invariant checks that are compiled in with the debug
// build tag and are no-ops otherwise.
//
// Hardware faults are never reported through this package. Those are always
// fatal, see package display.
package debug

// Enabled reports whether the debug build tag is set.
const Enabled = false

// Assert panics with message if b is false.
func Assert(b bool, message string) {}
