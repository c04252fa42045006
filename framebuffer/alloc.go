package framebuffer

import (
	"unsafe"

	"golang.org/x/exp/constraints"
)

// AlignUp rounds x up to the next multiple of align, which must be a power
// of two.
func AlignUp[T constraints.Integer](x, align T) T {
	return (x + align - 1) &^ (align - 1)
}

// makeAligned returns a zeroed slice of size bytes starting at an address
// aligned to align. Using append() on the result might move it to an
// unaligned address.
func makeAligned(size int, align uintptr) []byte {
	buf := make([]byte, size+int(align))
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(buf)))
	shift := int(AlignUp(addr, align) - addr)
	return buf[shift : shift+size : shift+size]
}

// isAligned reports whether p starts at an address aligned to align.
func isAligned(p []byte, align uintptr) bool {
	return uintptr(unsafe.Pointer(unsafe.SliceData(p)))%align == 0
}
