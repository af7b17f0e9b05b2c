package canvas

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPixelBlock(t *testing.T) {
	assert.Equal(t, 20, PixelBlock(0))
	assert.Equal(t, 14, PixelBlock(30))
	assert.Equal(t, 11, PixelBlock(45))
	assert.Equal(t, 3, PixelBlock(90))
	assert.Equal(t, 3, PixelBlock(100))
}

func TestSoftening(t *testing.T) {
	assert.Equal(t, 5.0, Softening(0))
	assert.Equal(t, 2.0, Softening(60))
	assert.Equal(t, 0.5, Softening(95))
}

func TestPixelate(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 90, 120))

	assert.Same(t, src, Pixelate(src, 100).(*image.NRGBA))

	out := Pixelate(src, 30)
	assert.Equal(t, src.Bounds(), out.Bounds())
}

func TestStatusText(t *testing.T) {
	loaded := State{Loaded: true, Remaining: 10}

	assert.Equal(t, "Loading poster...", StatusText(State{}, 30, "playing"))
	assert.Equal(t, "Ta-da! Mystery solved!", StatusText(loaded, 100, "won"))
	assert.Equal(t, "Oh no! Better luck next time!", StatusText(loaded, 100, "lost"))
	assert.Equal(t, "Keep scratching, movie buff!", StatusText(loaded, 30, "playing"))
	assert.Equal(t, "Almost there, film fanatic!", StatusText(loaded, 60, "playing"))

	loaded.Scratched = 55
	assert.Equal(t, "The plot thickens... scratch more!", StatusText(loaded, 30, "playing"))

	loaded.Remaining = 0
	assert.Equal(t, "Scratch limit reached!", StatusText(loaded, 30, "playing"))
}
