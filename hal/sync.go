package hal

import "sync/atomic"

// Mailbox passes the latest value from a writer goroutine to a reader in the
// Device's own context, e.g. its refresh thread. Only a single reader is
// allowed. Values stored before the reader got to them are overwritten.
type Mailbox[T any] struct {
	ptr     atomic.Pointer[T]
	current T // owned by reader
}

// Store makes v the next value returned by Load.
func (p *Mailbox[T]) Store(v T) {
	p.ptr.Store(&v)
}

// Load returns the most recently stored value and whether it changed since
// the last call. Before the first Store it returns the zero value.
func (p *Mailbox[T]) Load() (v T, updated bool) {
	ptr := p.ptr.Swap(nil)
	if ptr == nil {
		return p.current, false
	}
	p.current = *ptr
	return p.current, true
}
