// internal/canvas/overlay.go
//
// Overlay renderer: paints the scratch-off cover over a poster.
// The pattern is a pink base with per-tile tint noise, diagonal scratch
// lines and a border. Only the coverage ratio matters to the game; the
// pattern is decoration and is fully determined by the seed.

package canvas

import (
	"image"
	"image/color"
	"math/rand/v2"
)

var (
	coverBase = color.NRGBA{R: 0xff, G: 0xb6, B: 0xc1, A: 0xff}
	coverTint = color.NRGBA{R: 0xff, G: 0xd1, B: 0xdc, A: 0xff}
)

const (
	lineSpace  = 40
	borderSize = 2
)

// RenderCover repaints buf for the given reveal percentage.
// reveal >= 100 clears the surface. Otherwise the cover is opaque except for
// whole tiles, picked in a seeded order, cleared until the transparent share
// equals reveal percent of the surface.
func RenderCover(buf *Buffer, reveal, tile int, seed int64) {
	if reveal >= 100 {
		buf.Clear()
		return
	}
	if tile <= 0 {
		tile = 20
	}
	rng := rand.New(rand.NewPCG(uint64(seed), 0x9e3779b97f4a7c15))
	w, h := buf.Width(), buf.Height()

	buf.Fill(coverBase)
	var tiles []image.Rectangle
	for y := 0; y < h; y += tile {
		for x := 0; x < w; x += tile {
			r := image.Rect(x, y, x+tile, y+tile)
			tiles = append(tiles, r)
			buf.FillRect(r, blend(coverBase, coverTint, rng.Float64()*0.2))
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x-y)%lineSpace == 0 {
				buf.Set(x, y, coverTint)
			}
		}
	}
	for i := 0; i < borderSize; i++ {
		buf.FillRect(image.Rect(0, i, w, i+1), coverTint)
		buf.FillRect(image.Rect(0, h-1-i, w, h-i), coverTint)
		buf.FillRect(image.Rect(i, 0, i+1, h), coverTint)
		buf.FillRect(image.Rect(w-1-i, 0, w-i, h), coverTint)
	}

	if reveal <= 0 {
		return
	}
	want := buf.Total() * reveal / 100
	rng.Shuffle(len(tiles), func(i, j int) { tiles[i], tiles[j] = tiles[j], tiles[i] })
	for _, r := range tiles {
		r = r.Intersect(image.Rect(0, 0, w, h))
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				if buf.Transparent() >= want {
					return
				}
				buf.Set(x, y, color.NRGBA{})
			}
		}
	}
}

// blend returns base with c laid over it at opacity a, kept fully opaque.
func blend(base, c color.NRGBA, a float64) color.NRGBA {
	mix := func(b, o uint8) uint8 { return uint8(float64(b)*(1-a) + float64(o)*a + 0.5) }
	return color.NRGBA{R: mix(base.R, c.R), G: mix(base.G, c.G), B: mix(base.B, c.B), A: 0xff}
}

// placeholder draws the "loading poster" frame shown before decode completes.
func placeholder(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	bg := color.NRGBA{R: 0x4a, G: 0x4a, B: 0x6a, A: 0xff}
	stripe := color.NRGBA{R: 0x5a, G: 0x5a, B: 0x7c, A: 0xff}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := bg
			if (x+y)/12%2 == 0 {
				c = stripe
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}
