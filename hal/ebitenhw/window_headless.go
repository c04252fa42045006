//go:build headless

package ebitenhw

import "time"

// refreshRate of the simulated monitor without a window.
const refreshRate = 60

// Run refreshes the screen at 60 Hz without showing it until Shutdown is
// called.
func (p *Device) Run(title string, scale int) error {
	t := time.NewTicker(time.Second / refreshRate)
	defer t.Stop()

	var frame []byte
	for range t.C {
		if p.quit.Load() {
			return nil
		}
		frame = p.Refresh(frame)
	}
	return nil
}
