package framebuffer

import (
	"image"
	"image/color"
	"image/draw"
	"slices"

	"github.com/ericpauley/go-quantize/quantize"
)

// Convert draws src into r of dst using only the colors of dst's palette.
//
// The colors of src are clustered into as many groups as the palette has
// entries, then the groups are assigned to palette entries in order of
// brightness. This keeps the contrast of the source, even if the palette's
// colors are very different from the source's.
func Convert(dst *CI8, r image.Rectangle, src image.Image, sp image.Point, dither bool) {
	r = r.Intersect(dst.Rect)
	if r.Empty() || len(dst.Palette) == 0 {
		return
	}

	q := quantize.MedianCutQuantizer{}
	qp := dedup(q.Quantize(make(color.Palette, 0, len(dst.Palette)), src))
	if len(qp) == 0 {
		return
	}

	tmp := image.NewPaletted(image.Rectangle{Max: r.Size()}, qp)
	var d draw.Drawer = draw.Src
	if dither {
		d = draw.FloydSteinberg
	}
	d.Draw(tmp, tmp.Bounds(), src, sp)

	remap := rankMap(qp, dst.Palette)
	for y := 0; y < tmp.Rect.Dy(); y++ {
		for x := 0; x < tmp.Rect.Dx(); x++ {
			idx := remap[tmp.Pix[tmp.PixOffset(x, y)]]
			dst.Pix[dst.PixOffset(r.Min.X+x, r.Min.Y+y)] = idx
		}
	}
}

// rankMap maps each index of from to an index of to with the same rank in
// brightness order. If from has fewer colors, ranks are spread over to.
func rankMap(from, to color.Palette) []uint8 {
	fromOrder := byLuma(from)
	toOrder := byLuma(to)

	remap := make([]uint8, len(from))
	span := max(len(from)-1, 1)
	for rank, i := range fromOrder {
		target := rank * (len(to) - 1) / span
		remap[i] = uint8(toOrder[target])
	}
	return remap
}

// dedup removes repeated colors, the quantizer may return the same color
// more than once for images with few colors.
func dedup(p color.Palette) color.Palette {
	var out color.Palette
	for _, c := range p {
		if !slices.ContainsFunc(out, func(o color.Color) bool { return sameColor(o, c) }) {
			out = append(out, c)
		}
	}
	return out
}

func sameColor(a, b color.Color) bool {
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	return ar == br && ag == bg && ab == bb && aa == ba
}

// byLuma returns the indices of p sorted from dark to bright.
func byLuma(p color.Palette) []int {
	order := make([]int, len(p))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return int(luma(p[a])) - int(luma(p[b]))
	})
	return order
}

func luma(c color.Color) uint32 {
	r, g, b, _ := c.RGBA()
	return (299*r + 587*g + 114*b) / 1000
}
