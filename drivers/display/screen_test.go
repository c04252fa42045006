package display_test

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clktmr/vsyncfb/drivers/display"
	"github.com/clktmr/vsyncfb/framebuffer"
)

func TestScreen(t *testing.T) {
	fb := framebuffer.NewCI8(image.Rect(0, 0, 40, 10), framebuffer.NewPalette(100))
	s := display.NewScreen(fb)
	assert.Same(t, fb, s.Framebuffer())
	assert.Equal(t, image.Rect(0, 0, 40, 10), s.Bounds())

	s.BeginDrawing(1)
	s.ClearBackground(color.White)
	s.EndDrawing()
	assert.Equal(t, 1, s.Next())
	assert.Equal(t, uint8(framebuffer.Foreground), fb.ColorIndexAt(0, 0))
	assert.Equal(t, uint8(framebuffer.Foreground), fb.ColorIndexAt(39, 9))

	s.BeginDrawing(0)
	s.Area().SetColor(framebuffer.Index(framebuffer.Overlay))
	s.Area().Fill(image.Rect(2, 2, 4, 4))
	s.EndDrawing()
	assert.Equal(t, 0, s.Next())
	assert.Equal(t, uint8(framebuffer.Overlay), fb.ColorIndexAt(3, 3))
	assert.Equal(t, uint8(framebuffer.Foreground), fb.ColorIndexAt(4, 4))
}
