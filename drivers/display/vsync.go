package display

import "github.com/clktmr/vsyncfb/hal"

// notifier carries vsync events from the device's callback context to the
// render loop. It holds at most one pending event, further events are
// dropped until the loop received it. The loop only needs to know that a
// vsync happened, not how many.
type notifier chan struct{}

func newNotifier() notifier {
	return make(notifier, 1)
}

// callback returns the function registered with the device. It captures only
// the send side of the channel and never blocks.
func (n notifier) callback() hal.VsyncFunc {
	var c chan<- struct{} = n
	return func() {
		select {
		case c <- struct{}{}:
		default:
		}
	}
}

// wait blocks until the next vsync.
func (n notifier) wait() {
	<-n
}
