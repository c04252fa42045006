package framebuffer_test

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/embeddedgo/display/pix"
	"github.com/stretchr/testify/assert"

	"github.com/clktmr/vsyncfb/framebuffer"
)

func TestDriverFillIndex(t *testing.T) {
	fb := framebuffer.NewCI8(image.Rect(0, 0, 48, 16), framebuffer.NewPalette(0))
	disp := pix.NewDisplay(framebuffer.NewDriver(fb))
	a := disp.NewArea(disp.Bounds())

	a.SetColor(framebuffer.Index(framebuffer.Overlay))
	a.Fill(image.Rect(4, 4, 8, 8))
	a.Flush()

	assert.Equal(t, uint8(framebuffer.Overlay), fb.ColorIndexAt(4, 4))
	assert.Equal(t, uint8(framebuffer.Overlay), fb.ColorIndexAt(7, 7))
	assert.Equal(t, uint8(framebuffer.Background), fb.ColorIndexAt(8, 8))
}

func TestDriverMask(t *testing.T) {
	fb := framebuffer.NewCI8(image.Rect(0, 0, 8, 8), framebuffer.NewPalette(100))
	d := framebuffer.NewDriver(fb)

	mask := image.NewAlpha(image.Rect(0, 0, 4, 4))
	mask.SetAlpha(1, 1, color.Alpha{0xff})
	mask.SetAlpha(2, 2, color.Alpha{0x10})

	// Partially outside on the left, the mask must be shifted accordingly.
	d.Draw(image.Rect(-1, 0, 3, 4), &image.Uniform{framebuffer.Index(framebuffer.Foreground)},
		image.Point{}, mask, image.Point{}, draw.Over)

	assert.Equal(t, uint8(framebuffer.Foreground), fb.ColorIndexAt(0, 1))
	assert.Equal(t, uint8(framebuffer.Background), fb.ColorIndexAt(1, 2))
	assert.Equal(t, uint8(framebuffer.Background), fb.ColorIndexAt(1, 1))
}

func TestDriverNearestColor(t *testing.T) {
	fb := framebuffer.NewCI8(image.Rect(0, 0, 8, 8), framebuffer.NewPalette(100))
	d := framebuffer.NewDriver(fb)

	d.SetColor(color.White)
	d.Fill(image.Rect(0, 0, 2, 2))
	d.SetColor(color.RGBA{0xf0, 0, 0, 0xff})
	d.Fill(image.Rect(2, 2, 4, 4))

	assert.Equal(t, uint8(framebuffer.Foreground), fb.ColorIndexAt(1, 1))
	assert.Equal(t, uint8(framebuffer.Overlay), fb.ColorIndexAt(3, 3))
	assert.Equal(t, fb.Bounds(), d.SetDir(0))
	assert.NoError(t, d.Err(true))
}
