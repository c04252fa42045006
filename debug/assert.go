//go:build debug

package debug

// Enabled reports whether the debug build tag is set.
const Enabled = true

// Assert panics with message if b is false.
func Assert(b bool, message string) {
	if !b {
		panic("assertion failed: " + message)
	}
}
