// internal/canvas/buffer.go
//
// Pixel buffer primitive backing the scratch overlay.
// The alpha channel encodes coverage: 0 = revealed, anything else = covered.
// The number of fully transparent pixels is tracked incrementally so a
// scratch can be measured exactly without rescanning the surface.

package canvas

import (
	"image"
	"image/color"
	"math"
)

// Buffer is an RGBA surface with an exact transparent-pixel counter.
type Buffer struct {
	img         *image.NRGBA
	transparent int
}

// NewBuffer allocates a fully transparent w×h buffer.
func NewBuffer(w, h int) *Buffer {
	w, h = max(w, 1), max(h, 1)
	return &Buffer{
		img:         image.NewNRGBA(image.Rect(0, 0, w, h)),
		transparent: w * h,
	}
}

func (b *Buffer) Width() int  { return b.img.Rect.Dx() }
func (b *Buffer) Height() int { return b.img.Rect.Dy() }
func (b *Buffer) Total() int  { return b.Width() * b.Height() }

// Transparent returns the tracked number of pixels with alpha 0.
func (b *Buffer) Transparent() int { return b.transparent }

// Image exposes the underlying surface. Callers must not write to it.
func (b *Buffer) Image() *image.NRGBA { return b.img }

// Fill paints every pixel with c.
func (b *Buffer) Fill(c color.NRGBA) {
	pix := b.img.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = c.R, c.G, c.B, c.A
	}
	if c.A == 0 {
		b.transparent = b.Total()
	} else {
		b.transparent = 0
	}
}

// Clear makes the whole surface transparent.
func (b *Buffer) Clear() { b.Fill(color.NRGBA{}) }

// Set writes c at (x, y), keeping the counter in sync. Out-of-range writes are dropped.
func (b *Buffer) Set(x, y int, c color.NRGBA) {
	if !(image.Point{x, y}.In(b.img.Rect)) {
		return
	}
	i := b.img.PixOffset(x, y)
	was := b.img.Pix[i+3] == 0
	b.img.Pix[i], b.img.Pix[i+1], b.img.Pix[i+2], b.img.Pix[i+3] = c.R, c.G, c.B, c.A
	switch now := c.A == 0; {
	case was && !now:
		b.transparent--
	case !was && now:
		b.transparent++
	}
}

// Alpha returns the alpha value at (x, y), or 0 outside the surface.
func (b *Buffer) Alpha(x, y int) uint8 {
	if !(image.Point{x, y}.In(b.img.Rect)) {
		return 0
	}
	return b.img.Pix[b.img.PixOffset(x, y)+3]
}

// FillRect paints the clipped rectangle r with c.
func (b *Buffer) FillRect(r image.Rectangle, c color.NRGBA) {
	r = r.Intersect(b.img.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			b.Set(x, y, c)
		}
	}
}

// EraseDisc sets alpha to 0 for every pixel whose centre lies within r of
// (cx, cy), clipped to the surface. Erasing only ever adds transparency.
// It returns the number of pixels that became transparent.
func (b *Buffer) EraseDisc(cx, cy, r float64) int {
	if !(r > 0) || math.IsNaN(cx) || math.IsNaN(cy) {
		return 0
	}
	// A disc wider than the diagonal covers the same pixels as one that wide,
	// and keeps the bounds below in int range.
	w, h := float64(b.Width()), float64(b.Height())
	r = math.Min(r, math.Hypot(w, h))
	if cx+r < 0 || cy+r < 0 || cx-r > w || cy-r > h {
		return 0
	}
	minX, maxX := clampInt(int(cx-r), 0, b.Width()-1), clampInt(int(cx+r)+1, 0, b.Width()-1)
	minY, maxY := clampInt(int(cy-r), 0, b.Height()-1), clampInt(int(cy+r)+1, 0, b.Height()-1)
	r2 := r * r
	erased := 0
	for y := minY; y <= maxY; y++ {
		dy := float64(y) + 0.5 - cy
		for x := minX; x <= maxX; x++ {
			dx := float64(x) + 0.5 - cx
			if dx*dx+dy*dy > r2 {
				continue
			}
			i := b.img.PixOffset(x, y) + 3
			if b.img.Pix[i] == 0 {
				continue
			}
			b.img.Pix[i] = 0
			erased++
		}
	}
	b.transparent += erased
	return erased
}

// CountTransparent scans the whole surface. It is the reference the
// incremental counter must agree with.
func (b *Buffer) CountTransparent() int {
	n := 0
	pix := b.img.Pix
	for i := 3; i < len(pix); i += 4 {
		if pix[i] == 0 {
			n++
		}
	}
	return n
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
