package display

import "time"

// WithSleep replaces time.Sleep for the delay after each swap.
func WithSleep(fn func(time.Duration)) Option {
	return func(c *config) { c.sleep = fn }
}
