package framebuffer

import "image/color"

// Palette indices written by the display driver.
const (
	Background = 0
	Foreground = 1 // scaled by the configured brightness level
	Overlay    = 2
)

// MaxLevel is the highest brightness level, MaxIntensity the 5-bit hardware
// value it maps to.
const (
	MaxLevel     = 100
	MaxIntensity = 31
)

// Fixed palette entries.
const (
	BackgroundColor RGB565 = 0x0000
	OverlayColor    RGB565 = 0xf000
)

// Intensity scales a brightness level in [0, MaxLevel] to the 5-bit
// intensity used by the compositor. Levels out of range are clamped.
func Intensity(level int) uint16 {
	level = min(max(level, 0), MaxLevel)
	return uint16(level * MaxIntensity / MaxLevel)
}

// ForegroundColor returns the foreground entry for a brightness level. The
// intensity is written to all three channels, with the lowest green bit set.
func ForegroundColor(level int) RGB565 {
	l := Intensity(level)
	return RGB565(0x0020 | l | l<<6 | l<<11)
}

// Palette is an ordered list of colors indexed by the frame buffer.
type Palette []RGB565

// NewPalette returns the palette used for a brightness level.
func NewPalette(level int) Palette {
	return Palette{
		Background: BackgroundColor,
		Foreground: ForegroundColor(level),
		Overlay:    OverlayColor,
	}
}

// Words returns the palette as expected by hal.Device.SetPalette.
func (p Palette) Words() []uint16 {
	words := make([]uint16, len(p))
	for i, c := range p {
		words[i] = uint16(c)
	}
	return words
}

// Colors returns the palette as a color.Palette.
func (p Palette) Colors() color.Palette {
	cp := make(color.Palette, len(p))
	for i, c := range p {
		cp[i] = c
	}
	return cp
}

// Stores a color in 16bit (5:6:5)
type RGB565 uint16

func (c RGB565) RGBA() (r, g, b, a uint32) {
	r5 := uint32(c>>11) & 0x1f
	g6 := uint32(c>>5) & 0x3f
	b5 := uint32(c) & 0x1f
	return r5 * 0xffff / 0x1f, g6 * 0xffff / 0x3f, b5 * 0xffff / 0x1f, 0xffff
}

var RGB565Model color.Model = color.ModelFunc(rgb565Model)

func rgb565Model(c color.Color) color.Color {
	if _, ok := c.(RGB565); ok {
		return c
	}
	r, g, b, _ := c.RGBA()
	return RGB565((r & 0xf800) | (g&0xfc00)>>5 | b>>11)
}

// Index is a color given by its palette index. Drawing an Index with the
// pix Driver writes the index directly instead of matching the nearest
// palette color. Its RGBA value is taken from the palette at MaxLevel.
type Index uint8

func (c Index) RGBA() (r, g, b, a uint32) {
	if int(c) < len(defaultPalette) {
		return defaultPalette[c].RGBA()
	}
	return 0, 0, 0, 0xffff
}

var defaultPalette = NewPalette(MaxLevel)
