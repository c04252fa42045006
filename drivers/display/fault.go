package display

import (
	"errors"
	"fmt"
)

var (
	ErrConfig    = errors.New("display: invalid config")
	ErrStarted   = errors.New("display: already started")
	ErrClosed    = errors.New("display: closed")
	ErrDrawPanic = errors.New("display: draw callback panicked")
)

// Fault is a runtime failure of the render loop. Either the device rejected
// a call or the draw callback panicked. Hardware state is undefined after a
// Fault, the loop never continues.
type Fault struct {
	Op    string // device call or "draw"
	Cycle uint64 // 1 for the first cycle after Start
	Err   error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("display: cycle %d: %s: %v", f.Cycle, f.Op, f.Err)
}

func (f *Fault) Unwrap() error { return f.Err }

// FaultFunc handles a Fault of the render loop. It's called from the loop's
// goroutine, which exits once the handler returns.
type FaultFunc func(err error)

// Panic is the default FaultFunc. A fault leaves the compositor in an
// undefined state, so the process must not continue.
func Panic(err error) {
	panic(err)
}
