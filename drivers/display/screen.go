package display

import (
	"image"
	"image/color"

	"github.com/embeddedgo/display/pix"

	"github.com/clktmr/vsyncfb/framebuffer"
)

// Screen is the drawing surface handed to game loops. It wraps the frame
// buffer of a Display with a pix.Area, so the whole pix API is available.
type Screen struct {
	fb   *framebuffer.CI8
	disp *pix.Display
	area *pix.Area
	next int
}

// NewScreen returns a Screen drawing to fb.
func NewScreen(fb *framebuffer.CI8) *Screen {
	disp := pix.NewDisplay(framebuffer.NewDriver(fb))
	return &Screen{
		fb:   fb,
		disp: disp,
		area: disp.NewArea(disp.Bounds()),
	}
}

// BeginDrawing prepares the screen for drawing the frame that will be
// uploaded to surface next.
func (s *Screen) BeginDrawing(next int) {
	s.next = next
}

// EndDrawing flushes everything drawn through the area.
func (s *Screen) EndDrawing() {
	s.area.Flush()
}

// ClearBackground fills the screen with the palette entry closest to c.
func (s *Screen) ClearBackground(c color.Color) {
	s.area.SetColor(c)
	s.area.Fill(s.disp.Bounds())
}

// Area returns the pix.Area covering the whole screen.
func (s *Screen) Area() *pix.Area { return s.area }

// Framebuffer returns the underlying frame buffer.
func (s *Screen) Framebuffer() *framebuffer.CI8 { return s.fb }

// Bounds returns the screen bounds.
func (s *Screen) Bounds() image.Rectangle { return s.fb.Rect }

// Next returns the index of the surface the current frame goes to.
func (s *Screen) Next() int { return s.next }
