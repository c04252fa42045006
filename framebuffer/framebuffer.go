// Package framebuffer provides the CPU side frame buffer that is uploaded to
// the compositor each frame.
//
// The only supported format is 8-bit color indexed (CI8). The compositor
// requires every row to start at a multiple of Alignment bytes, so the stride
// of a CI8 is usually larger than its width. CI8 embeds an image.Paletted and
// thus works with image/draw and everything built on it.
package framebuffer

import (
	"image"

	"github.com/clktmr/vsyncfb/debug"
)

// Alignment of rows and of the first pixel in bytes.
const Alignment = 32

// Pitch returns the number of bytes between two rows of a frame buffer
// width pixels wide.
func Pitch(width int) int {
	return AlignUp(width, Alignment)
}

// CI8 stores pixels as 8-bit indices into a Palette.
type CI8 struct {
	image.Paletted
}

// NewCI8 returns a cleared frame buffer with the given bounds and palette.
func NewCI8(r image.Rectangle, p Palette) *CI8 {
	stride := Pitch(r.Dx())
	fb := &CI8{image.Paletted{
		Pix:     makeAligned(stride*r.Dy(), Alignment),
		Stride:  stride,
		Rect:    r,
		Palette: p.Colors(),
	}}
	debug.Assert(isAligned(fb.Pix, Alignment), "unaligned frame buffer")
	return fb
}

// Bytes returns all pixel data including row padding, ready to be passed to
// hal.Device.WritePixels together with Stride.
func (p *CI8) Bytes() []byte {
	return p.Pix
}

// Clear sets every pixel, including padding, to index idx.
func (p *CI8) Clear(idx uint8) {
	if idx == 0 {
		clear(p.Pix)
		return
	}
	for i := range p.Pix {
		p.Pix[i] = idx
	}
}

// FillIndex sets all pixels in r to index idx.
func (p *CI8) FillIndex(r image.Rectangle, idx uint8) {
	r = r.Intersect(p.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := p.Pix[p.PixOffset(r.Min.X, y):p.PixOffset(r.Max.X, y)]
		for i := range row {
			row[i] = idx
		}
	}
}

// SetPalette replaces the palette used to convert colors from and to
// indices. Pixel data is left untouched.
func (p *CI8) SetPalette(pal Palette) {
	p.Palette = pal.Colors()
}

// SubImage returns a frame buffer sharing pixels with p.
func (p *CI8) SubImage(r image.Rectangle) *CI8 {
	subImg, _ := p.Paletted.SubImage(r).(*image.Paletted)
	return &CI8{*subImg}
}
