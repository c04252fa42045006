package display

import (
	"fmt"
	"time"

	"github.com/clktmr/vsyncfb/framebuffer"
	"github.com/clktmr/vsyncfb/hal"
)

// DefaultDelay is slept after each swap if no delay or a negative one was
// configured.
//
// Some compositor firmware applies a submitted swap late. Writing the hidden
// surface right after the swap then tears the visible frame. The right value
// depends on the firmware revision.
const DefaultDelay = 2000 * time.Millisecond

// Defaults for the remaining options.
const (
	DefaultLevel    = framebuffer.MaxLevel
	DefaultBuffers  = 2
	DefaultLayer    = 2000
	DefaultPriority = 10
)

// DrawFunc renders the next frame into fb. next is the index of the surface
// fb will be uploaded to. fb must not be retained after returning.
type DrawFunc func(fb *framebuffer.CI8, next int)

// InitFunc renders the initial image, which is written to all surfaces
// before the display is shown.
type InitFunc func(fb *framebuffer.CI8)

// Option configures a Display in New.
type Option func(*config)

type config struct {
	device   uint32
	offset   int
	margin   int
	delay    time.Duration
	level    int
	buffers  int
	layer    int
	priority int
	dst      *hal.Rect
	init     InitFunc
	onFault  FaultFunc
	sleep    func(time.Duration)
}

func defaultConfig() config {
	return config{
		delay:    DefaultDelay,
		level:    DefaultLevel,
		buffers:  DefaultBuffers,
		layer:    DefaultLayer,
		priority: DefaultPriority,
		onFault:  Panic,
		sleep:    time.Sleep,
	}
}

// WithDevice selects the physical display output.
func WithDevice(id uint32) Option {
	return func(c *config) { c.device = id }
}

// WithOffset reserves px columns on the left, which are never written after
// the initial image.
func WithOffset(px int) Option {
	return func(c *config) { c.offset = px }
}

// WithMargin reserves another px columns right of the offset.
func WithMargin(px int) Option {
	return func(c *config) { c.margin = px }
}

// WithDelay sets the time slept after each swap. A negative d selects
// DefaultDelay, zero disables the delay.
func WithDelay(d time.Duration) Option {
	return func(c *config) {
		if d < 0 {
			d = DefaultDelay
		}
		c.delay = d
	}
}

// WithLevel sets the foreground brightness in [0, 100].
func WithLevel(level int) Option {
	return func(c *config) { c.level = level }
}

// WithBuffers sets the number of surfaces rotated through, at least 2.
func WithBuffers(n int) Option {
	return func(c *config) { c.buffers = n }
}

// WithLayer sets the compositor layer of the element.
func WithLayer(layer int) Option {
	return func(c *config) { c.layer = layer }
}

// WithPriority sets the priority of the display's updates.
func WithPriority(prio int) Option {
	return func(c *config) { c.priority = prio }
}

// WithDestination places the element at dst on the display. By default it's
// shown unscaled at the origin.
func WithDestination(dst hal.Rect) Option {
	return func(c *config) { c.dst = &dst }
}

// WithInitFunc sets the function rendering the initial image. Without it
// the initial image is blank.
func WithInitFunc(fn InitFunc) Option {
	return func(c *config) { c.init = fn }
}

// WithFaultHandler replaces Panic as the handler for runtime faults. The
// render loop exits after the handler returned, it never continues. Close
// then only revokes the vsync registration, the remaining device resources
// of the display are not released.
func WithFaultHandler(fn FaultFunc) Option {
	return func(c *config) { c.onFault = fn }
}

func (c *config) validate(width, height int, draw DrawFunc) error {
	switch {
	case width <= 0 || height <= 0:
		return fmt.Errorf("%w: size %dx%d", ErrConfig, width, height)
	case draw == nil:
		return fmt.Errorf("%w: no draw callback", ErrConfig)
	case c.offset < 0 || c.margin < 0:
		return fmt.Errorf("%w: negative offset %d or margin %d", ErrConfig, c.offset, c.margin)
	case c.offset+c.margin >= width:
		return fmt.Errorf("%w: offset %d and margin %d leave no room in width %d",
			ErrConfig, c.offset, c.margin, width)
	case c.level < 0 || c.level > framebuffer.MaxLevel:
		return fmt.Errorf("%w: level %d not in [0, %d]", ErrConfig, c.level, framebuffer.MaxLevel)
	case c.buffers < 2:
		return fmt.Errorf("%w: %d buffers", ErrConfig, c.buffers)
	case c.dst != nil && c.dst.Empty():
		return fmt.Errorf("%w: empty destination %v", ErrConfig, *c.dst)
	case c.onFault == nil:
		return fmt.Errorf("%w: no fault handler", ErrConfig)
	}
	return nil
}
