package main

import (
	"errors"
	"image"
	"image/draw"
	"time"

	"golang.org/x/image/colornames"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/clktmr/vsyncfb/drivers/display"
	"github.com/clktmr/vsyncfb/framebuffer"
)

var errDone = errors.New("all frames shown")

// demo draws a splash image, a bar sweeping across the screen and a clock.
type demo struct {
	frames int
	limit  int

	palette   framebuffer.Palette
	splashSrc image.Image
	splash    *framebuffer.CI8
	dither    bool

	face font.Face
}

func newDemo(cfg *Config, splash image.Image) *demo {
	return &demo{
		limit:     cfg.Frames,
		palette:   framebuffer.NewPalette(cfg.Level),
		splashSrc: splash,
		dither:    cfg.Dither,
		face:      basicfont.Face7x13,
	}
}

func (d *demo) Update() error {
	if d.limit > 0 && d.frames >= d.limit {
		return errDone
	}
	d.frames++
	return nil
}

func (d *demo) Draw(screen *display.Screen) {
	fb := screen.Framebuffer()
	bounds := screen.Bounds()

	screen.ClearBackground(colornames.Black)

	if d.splashSrc != nil {
		if d.splash == nil {
			d.splash = framebuffer.NewCI8(bounds, d.palette)
			framebuffer.Convert(d.splash, bounds, d.splashSrc, d.splashSrc.Bounds().Min, d.dither)
		}
		draw.Draw(fb, bounds, d.splash, bounds.Min, draw.Src)
	}

	a := screen.Area()
	x := bounds.Min.X + d.frames%bounds.Dx()
	a.SetColor(framebuffer.Index(framebuffer.Foreground))
	a.Fill(image.Rect(x, bounds.Min.Y, x+4, bounds.Max.Y))

	drawer := font.Drawer{
		Dst:  fb,
		Src:  image.NewUniform(framebuffer.Index(framebuffer.Overlay)),
		Face: d.face,
		Dot:  fixed.P(bounds.Min.X+4, bounds.Max.Y-4),
	}
	drawer.DrawString(time.Now().Format("15:04:05"))
}
