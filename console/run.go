// Package console runs a game loop on top of a vsynced display.
package console

import (
	"github.com/clktmr/vsyncfb/drivers/display"
	"github.com/clktmr/vsyncfb/framebuffer"
	"github.com/clktmr/vsyncfb/hal"
)

// Gamelooper represents a game instance that can be updated and drawn.
type Gamelooper interface {
	// Update is called once per frame before Draw. Return an error to
	// exit the game loop, nil to continue.
	Update() error

	// Draw is called every frame to render the game. Everything drawn
	// becomes visible with the vsync after next.
	Draw(screen *display.Screen)
}

// Run creates a display on dev and calls Update and Draw once per vsync
// until Update returns an error, which is then returned. Neither is called
// again afterwards.
//
// With the default fault handler a display fault panics and ends the
// process. Faults are only returned if opts install a FaultFunc with
// display.WithFaultHandler that returns.
func Run(dev hal.Device, width, height int, g Gamelooper, opts ...display.Option) error {
	var (
		d       *display.Display
		screen  *display.Screen
		exitErr error // written by the render loop only
	)

	draw := func(fb *framebuffer.CI8, next int) {
		if exitErr != nil {
			return
		}
		if screen == nil {
			screen = display.NewScreen(fb)
		}
		if err := g.Update(); err != nil {
			exitErr = err
			d.Stop()
			return
		}
		screen.BeginDrawing(next)
		g.Draw(screen)
		screen.EndDrawing()
	}

	d, err := display.New(dev, width, height, draw, opts...)
	if err != nil {
		return err
	}
	if err := d.Start(); err != nil {
		d.Close()
		return err
	}

	<-d.Done()
	if err := d.Close(); err != nil {
		return err
	}
	return exitErr
}
