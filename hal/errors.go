package hal

import (
	"errors"
	"fmt"
)

// Error reports a non-success status returned by the compositor.
type Error struct {
	Op     string // the rejected call
	Status int    // hardware status, never zero
}

func (e *Error) Error() string {
	return fmt.Sprintf("hal: %s failed with status %d", e.Op, e.Status)
}

// Status codes used by the implementations in this module.
const (
	StatusOK      = 0
	StatusFailed  = -1
	StatusInvalid = -2 // unknown or stale handle
	StatusRange   = -3 // rect or size out of bounds
)

// ErrNoHandle is returned if a handle argument is the zero value.
var ErrNoHandle = errors.New("hal: no handle")

// StatusOf returns the status carried by err, StatusOK for nil and
// StatusFailed for errors not created by a Device.
func StatusOf(err error) int {
	if err == nil {
		return StatusOK
	}
	var herr *Error
	if errors.As(err, &herr) {
		return herr.Status
	}
	return StatusFailed
}
