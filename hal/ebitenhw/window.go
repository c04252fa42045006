//go:build !headless

package ebitenhw

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// game adapts a Device to ebiten.Game.
type game struct {
	dev   *Device
	img   *ebiten.Image
	frame []byte
}

func (g *game) Update() error {
	if g.dev.quit.Load() {
		return ebiten.Termination
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	if g.img == nil {
		g.img = ebiten.NewImage(g.dev.width, g.dev.height)
	}
	g.frame = g.dev.Refresh(g.frame)
	g.img.WritePixels(g.frame)
	screen.DrawImage(g.img, nil)
}

func (g *game) Layout(_, _ int) (int, int) {
	return g.dev.width, g.dev.height
}

// Run opens a window showing the device's screen, scaled by scale, and
// blocks until the window is closed or Shutdown is called. It must be called
// from the main goroutine.
func (p *Device) Run(title string, scale int) error {
	if scale < 1 {
		scale = 1
	}
	ebiten.SetWindowSize(p.width*scale, p.height*scale)
	ebiten.SetWindowTitle(title)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetVsyncEnabled(true)
	return ebiten.RunGame(&game{dev: p})
}
