package framebuffer

import (
	"image"
	"image/color"
	"image/draw"
)

// Driver implements pix.Driver for a CI8, so a draw callback can use the
// drawing and text functions of github.com/embeddedgo/display/pix.
//
// Uniform colors of type Index are written as is. All other colors are
// matched to the nearest palette entry by image/draw, which is slow.
type Driver struct {
	fb   *CI8
	fill color.Color
}

func NewDriver(fb *CI8) *Driver {
	return &Driver{fb: fb, fill: Index(Foreground)}
}

func (d *Driver) Draw(r image.Rectangle, src image.Image, sp image.Point,
	mask image.Image, mp image.Point, op draw.Op) {
	if u, ok := src.(*image.Uniform); ok {
		if idx, ok := u.C.(Index); ok {
			d.drawIndex(r, uint8(idx), mask, mp)
			return
		}
	}
	draw.DrawMask(&d.fb.Paletted, r, src, sp, mask, mp, op)
}

// drawIndex writes idx to all pixels in r that are at least half covered by
// mask. CI8 has no alpha, so draw.Src and draw.Over are the same.
func (d *Driver) drawIndex(r image.Rectangle, idx uint8, mask image.Image, mp image.Point) {
	if mask == nil {
		d.fb.FillIndex(r, idx)
		return
	}
	clipped := r.Intersect(d.fb.Rect)
	mp = mp.Add(clipped.Min.Sub(r.Min))
	for y := clipped.Min.Y; y < clipped.Max.Y; y++ {
		my := mp.Y + y - clipped.Min.Y
		for x := clipped.Min.X; x < clipped.Max.X; x++ {
			_, _, _, a := mask.At(mp.X+x-clipped.Min.X, my).RGBA()
			if a >= 0x8000 {
				d.fb.Pix[d.fb.PixOffset(x, y)] = idx
			}
		}
	}
}

func (d *Driver) Fill(r image.Rectangle) {
	d.Draw(r, &image.Uniform{d.fill}, image.Point{}, nil, image.Point{}, draw.Src)
}

func (d *Driver) SetColor(c color.Color) {
	d.fill = c
}

// SetDir only supports the native orientation.
func (d *Driver) SetDir(dir int) image.Rectangle {
	return d.fb.Bounds()
}

// Flush is a no-op, the display driver uploads the frame buffer after the
// draw callback returned.
func (d *Driver) Flush() {}

func (d *Driver) Err(clear bool) error {
	return nil
}
