package display

import (
	"fmt"

	"github.com/clktmr/vsyncfb/hal"
)

// loop runs the render cycle until a fault occurred or a cycle started after
// Stop completed. The channel receive and the delay are the only points where
// it blocks.
func (p *Display) loop() {
	defer close(p.done)
	log := Logger()

	for {
		p.vsync.wait()
		stopping := p.terminate.Load()

		if err := p.cycleOnce(); err != nil {
			p.fault = err
			log.Error("display fault", "err", err)
			p.cfg.onFault(err)
			return
		}

		if stopping {
			log.Info("display stopped", "frames", p.frames.Load())
			return
		}
	}
}

// cycleOnce commits the surface uploaded in the previous cycle, then renders
// and uploads the next one.
func (p *Display) cycleOnce() error {
	p.cycle++
	log := Logger()

	live := p.next
	u, err := p.dev.BeginUpdate(p.cfg.priority)
	if err != nil {
		return p.faultf("BeginUpdate", err)
	}
	if err := p.dev.ChangeSource(u, p.element, p.surfaces[live]); err != nil {
		return p.faultf("ChangeSource", err)
	}
	if err := p.dev.SubmitUpdate(u, p.applied); err != nil {
		return p.faultf("SubmitUpdate", err)
	}
	log.Debug("commit", "cycle", p.cycle, "surface", live)

	if p.cfg.delay > 0 {
		p.cfg.sleep(p.cfg.delay)
	}

	p.next = (live + 1) % len(p.surfaces)
	if err := p.redraw(); err != nil {
		return err
	}

	err = p.dev.WritePixels(p.surfaces[p.next], hal.Image8BPP, p.fb.Stride, p.fb.Bytes(), p.region)
	if err != nil {
		return p.faultf("WritePixels", err)
	}
	log.Debug("upload", "cycle", p.cycle, "surface", p.next)

	p.frames.Add(1)
	return nil
}

// redraw runs the draw callback. A panic is turned into a Fault, so it ends
// the loop like any hardware fault instead of leaving stale pixels behind.
func (p *Display) redraw() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = p.faultf("draw", fmt.Errorf("%w: %v", ErrDrawPanic, r))
		}
	}()
	p.draw(p.fb, p.next)
	return nil
}

// applied is the completion callback of each swap. It runs in the device's
// callback context.
func (p *Display) applied(hal.Update) {
	p.swaps.Add(1)
}

func (p *Display) faultf(op string, err error) error {
	return &Fault{Op: op, Cycle: p.cycle, Err: err}
}
