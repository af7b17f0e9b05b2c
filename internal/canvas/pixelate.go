package canvas

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
)

// PixelBlock returns the pixelation block size for a reveal percentage:
// 20px at 0%, shrinking by one pixel per 5%, never below 3px.
func PixelBlock(reveal int) int {
	return max(3, int(20-float64(reveal)/5))
}

// Softening returns the blur strength, in pixels, applied after pixelation.
func Softening(reveal int) float64 {
	return math.Max(0.5, 5-float64(reveal)/20)
}

// Pixelate renders src as blocks of PixelBlock(reveal) pixels, softened by a
// bilinear down/up pass. reveal >= 100 returns src untouched.
func Pixelate(src image.Image, reveal int) image.Image {
	if reveal >= 100 {
		return src
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return src
	}

	block := PixelBlock(reveal)
	small := image.NewNRGBA(image.Rect(0, 0, max(1, w/block), max(1, h/block)))
	xdraw.NearestNeighbor.Scale(small, small.Bounds(), src, b, xdraw.Src, nil)
	blocky := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.NearestNeighbor.Scale(blocky, blocky.Bounds(), small, small.Bounds(), xdraw.Src, nil)

	f := 1 + Softening(reveal)
	soft := image.NewNRGBA(image.Rect(0, 0, max(1, int(float64(w)/f)), max(1, int(float64(h)/f))))
	xdraw.ApproxBiLinear.Scale(soft, soft.Bounds(), blocky, blocky.Bounds(), xdraw.Src, nil)
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.BiLinear.Scale(out, out.Bounds(), soft, soft.Bounds(), xdraw.Src, nil)
	return out
}
