// Package display implements a vsynced, double buffered display on top of a
// hal.Device.
//
// A Display owns a single CPU side frame buffer and two or more surfaces on
// the device, one of which is shown at any time. A dedicated goroutine waits
// for each vsync, makes the most recently uploaded surface visible, lets the
// application redraw the frame buffer and uploads it to the now hidden
// surface.
package display

import (
	"errors"
	"fmt"
	"image"
	"sync/atomic"
	"time"

	"github.com/clktmr/vsyncfb/framebuffer"
	"github.com/clktmr/vsyncfb/hal"
)

// Display is the render controller. Its methods aren't safe for concurrent
// use, except for Stop and the statistics.
type Display struct {
	dev  hal.Device
	cfg  config
	draw DrawFunc

	display  hal.Display
	element  hal.Element
	surfaces []hal.Resource
	palette  framebuffer.Palette
	region   hal.Rect

	fb    *framebuffer.CI8 // owned by the loop while running
	vsync notifier

	// Owned by the loop after Start
	next  int // surface shown by the next commit
	cycle uint64

	registered bool
	started    atomic.Bool
	terminate  atomic.Bool
	closed     atomic.Bool
	done       chan struct{}
	fault      error // valid after done is closed

	frames, swaps atomic.Uint64
}

// New allocates all resources on dev and writes the initial image to every
// surface. The display isn't shown before the first vsync after Start.
//
// If any device call fails, everything allocated so far is released and the
// error is returned.
func New(dev hal.Device, width, height int, draw DrawFunc, opts ...Option) (*Display, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.validate(width, height, draw); err != nil {
		return nil, err
	}

	p := &Display{
		dev:      dev,
		cfg:      cfg,
		draw:     draw,
		surfaces: make([]hal.Resource, cfg.buffers),
		palette:  framebuffer.NewPalette(cfg.level),
		region: hal.Rect{
			X:      cfg.offset + cfg.margin,
			Width:  width - (cfg.offset + cfg.margin),
			Height: height,
		},
		vsync: newNotifier(),
		done:  make(chan struct{}),
	}
	p.fb = framebuffer.NewCI8(image.Rect(0, 0, width, height), p.palette)

	if err := p.setup(); err != nil {
		if rerr := p.release(); rerr != nil {
			Logger().Error("release after failed setup", "err", rerr)
		}
		return nil, fmt.Errorf("display: setup: %w", err)
	}
	return p, nil
}

func (p *Display) setup() (err error) {
	width, height := p.fb.Rect.Dx(), p.fb.Rect.Dy()

	if p.display, err = p.dev.OpenDisplay(p.cfg.device); err != nil {
		return err
	}

	if p.cfg.init != nil {
		p.cfg.init(p.fb)
	}

	full := hal.Rect{Width: width, Height: height}
	for i := range p.surfaces {
		if p.surfaces[i], err = p.dev.CreateResource(hal.Image8BPP, width, height); err != nil {
			return err
		}
		if err = p.dev.SetPalette(p.surfaces[i], p.palette.Words()); err != nil {
			return err
		}
		if err = p.dev.WritePixels(p.surfaces[i], hal.Image8BPP, p.fb.Stride, p.fb.Bytes(), full); err != nil {
			return err
		}
	}

	dst := full
	if p.cfg.dst != nil {
		dst = *p.cfg.dst
	}
	u, err := p.dev.BeginUpdate(p.cfg.priority)
	if err != nil {
		return err
	}
	if p.element, err = p.dev.AddElement(u, p.display, p.cfg.layer, dst, full, p.surfaces[0]); err != nil {
		return err
	}
	return p.dev.SubmitUpdate(u, nil)
}

// release frees all allocated device resources, skipping those that were
// never allocated. The vsync registration is revoked first.
func (p *Display) release() error {
	var errs []error
	if p.registered {
		errs = append(errs, p.dev.SetVsyncCallback(p.display, nil))
		p.registered = false
	}
	if p.element != 0 {
		u, err := p.dev.BeginUpdate(p.cfg.priority)
		if err == nil {
			err = p.dev.RemoveElement(u, p.element)
		}
		if err == nil {
			err = p.dev.SubmitUpdate(u, nil)
		}
		errs = append(errs, err)
		p.element = 0
	}
	for i, r := range p.surfaces {
		if r != 0 {
			errs = append(errs, p.dev.DeleteResource(r))
			p.surfaces[i] = 0
		}
	}
	if p.display != 0 {
		errs = append(errs, p.dev.CloseDisplay(p.display))
		p.display = 0
	}
	return errors.Join(errs...)
}

// Start registers for vsync notifications and starts the render loop. It
// returns immediately.
func (p *Display) Start() error {
	if p.closed.Load() {
		return ErrClosed
	}
	if p.started.Load() {
		return ErrStarted
	}
	if err := p.dev.SetVsyncCallback(p.display, p.vsync.callback()); err != nil {
		return fmt.Errorf("display: register vsync: %w", err)
	}
	p.registered = true
	p.started.Store(true)

	Logger().Info("display started",
		"size", p.fb.Rect.Size(), "pitch", p.fb.Stride, "region", p.region,
		"buffers", len(p.surfaces), "delay", p.cfg.delay)
	go p.loop()
	return nil
}

// Stop requests the render loop to exit. A cycle in progress is completed,
// then the loop runs exactly one more full cycle on the next vsync and exits
// after it. If the device stops delivering vsyncs, the loop never exits.
func (p *Display) Stop() {
	p.terminate.Store(true)
}

// Wait blocks until the render loop exited and returns the fault that ended
// it, or nil if it was stopped. Returns immediately if never started.
func (p *Display) Wait() error {
	if !p.started.Load() {
		return nil
	}
	<-p.done
	return p.fault
}

// Done is closed once the render loop exited.
func (p *Display) Done() <-chan struct{} {
	return p.done
}

// Close stops the render loop, waits for it to exit and releases all device
// resources. After a fault only the vsync registration is revoked, the
// element, surfaces and display are left to the device, and the fault is
// returned.
func (p *Display) Close() error {
	if p.closed.Swap(true) {
		return ErrClosed
	}
	p.Stop()
	if fault := p.Wait(); fault != nil {
		if p.registered {
			if err := p.dev.SetVsyncCallback(p.display, nil); err != nil {
				Logger().Error("revoke vsync after fault", "err", err)
			}
			p.registered = false
		}
		p.fb = nil
		return fault
	}
	err := p.release()
	p.fb = nil
	Logger().Info("display closed", "frames", p.frames.Load())
	return err
}

// Delay returns the time slept after each swap.
func (p *Display) Delay() time.Duration { return p.cfg.delay }

// Region returns the part of the frame buffer uploaded each frame.
func (p *Display) Region() hal.Rect { return p.region }

// Buffers returns the number of surfaces.
func (p *Display) Buffers() int { return len(p.surfaces) }

// Palette returns the palette written to every surface.
func (p *Display) Palette() framebuffer.Palette { return p.palette }

// Frames returns the number of completed cycles. It stops increasing if the
// device stops delivering vsyncs, which can be used to detect a stall.
func (p *Display) Frames() uint64 { return p.frames.Load() }

// Swaps returns the number of swaps the device reported as applied.
func (p *Display) Swaps() uint64 { return p.swaps.Load() }
