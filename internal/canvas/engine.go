// internal/canvas/engine.go
//
// Scratch canvas engine.
// Responsibilities:
//   - Decode and scale a poster to the rendering width (aspect preserved).
//   - Keep an overlay whose opaque share tracks the algorithmic reveal.
//   - Let pointer input erase the overlay within a per-attempt budget,
//     measuring each erase exactly.
//   - Compose display frames (poster under overlay, or a loading placeholder).
//
// Notes:
//   - Every overlay render is destructive: manual scratch progress is dropped.
//   - Generation numbers guard against poster loads from a superseded round.
//   - An Engine is not safe for concurrent use.

package canvas

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Options configures an Engine. Zero fields take the defaults.
type Options struct {
	Width      int     // rendering width in pixels (300)
	Radius     float64 // erase radius, also the largest accepted (20)
	BaseLimit  float64 // scratch budget at attempt 0, in percent (20)
	PerAttempt float64 // budget added per attempt, in percent (10)
	TileSize   int     // overlay texture tile (20)
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 300
	}
	if o.Radius <= 0 {
		o.Radius = 20
	}
	if o.BaseLimit <= 0 {
		o.BaseLimit = 20
	}
	if o.PerAttempt <= 0 {
		o.PerAttempt = 10
	}
	if o.TileSize <= 0 {
		o.TileSize = 20
	}
	return o
}

// Poster is a decoded, scaled poster.
type Poster struct {
	Image  *image.NRGBA
	Width  int
	Height int
	Format string // decoder name: png, jpeg, gif, webp
}

// State is the observable scratch state.
type State struct {
	Loaded    bool    `json:"loaded"`
	Limit     float64 `json:"scratchLimit"`
	Remaining float64 `json:"scratchRemaining"`
	Scratched int     `json:"scratchedPercentage"`
	Width     int     `json:"width,omitempty"`
	Height    int     `json:"height,omitempty"`
}

// Delta is the outcome of one scratch.
type Delta struct {
	Erased    int     `json:"erasedPixels"`
	Percent   float64 `json:"percentErased"`
	Remaining float64 `json:"scratchRemaining"`
	Scratched int     `json:"scratchedPercentage"`
	Exhausted bool    `json:"exhausted"`
}

// Engine owns the overlay pixels for one round.
type Engine struct {
	opts Options

	generation uint64
	seed       int64
	poster     *Poster
	overlay    *Buffer
	tracker    Tracker

	reveal  int
	attempt int
	playing bool
}

// NewEngine returns an engine in the loading state.
func NewEngine(opts Options) *Engine {
	opts = opts.withDefaults()
	return &Engine{
		opts:    opts,
		tracker: NewTracker(opts.BaseLimit, opts.PerAttempt),
		playing: true,
	}
}

// Options returns the effective options.
func (e *Engine) Options() Options { return e.opts }

// Begin drops the current poster and enters the loading state for a new
// round identified by generation. reveal is the round's starting reveal.
func (e *Engine) Begin(generation uint64, seed int64, reveal int) {
	e.generation = generation
	e.seed = seed
	e.poster = nil
	e.overlay = nil
	e.reveal = reveal
	e.attempt = 0
	e.playing = true
	e.tracker.Reset(0)
}

// Generation returns the round the engine is currently bound to.
func (e *Engine) Generation() uint64 { return e.generation }

// Loaded reports whether a poster has been applied.
func (e *Engine) Loaded() bool { return e.poster != nil }

// MaxSourcePixels bounds the declared size of a poster before it is decoded.
const MaxSourcePixels = 24_000_000

// DecodePoster decodes data and scales it to width. The header is checked
// first so an oversized image is rejected without allocating it.
func DecodePoster(data []byte, width int) (*Poster, error) {
	if len(data) == 0 {
		return nil, ErrPosterUnavailable
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &ImageDecodeError{Err: err}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > MaxSourcePixels {
		return nil, &ImageDecodeError{Err: fmt.Errorf("%w: %dx%d", ErrPosterTooLarge, cfg.Width, cfg.Height)}
	}
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &ImageDecodeError{Err: err}
	}
	p := scalePoster(src, width)
	p.Format = format
	return p, nil
}

// LoadPoster decodes data and, when generation still matches, makes it the
// current poster and renders the overlay at the current reveal.
func (e *Engine) LoadPoster(generation uint64, data []byte) (*Poster, error) {
	p, err := DecodePoster(data, e.opts.Width)
	if err != nil {
		return nil, err
	}
	if err := e.ApplyPoster(generation, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ApplyPoster installs an already decoded poster for generation.
func (e *Engine) ApplyPoster(generation uint64, p *Poster) error {
	if generation != e.generation {
		return ErrStaleRound
	}
	e.poster = p
	e.overlay = NewBuffer(p.Width, p.Height)
	e.RenderOverlay(e.reveal)
	return nil
}

// scalePoster resizes src to width, preserving the aspect ratio.
func scalePoster(src image.Image, width int) *Poster {
	b := src.Bounds()
	height := max(1, int(float64(width)*float64(b.Dy())/float64(max(1, b.Dx()))+0.5))
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return &Poster{Image: dst, Width: width, Height: height}
}

// RenderOverlay repaints the overlay for reveal, discarding manual scratches.
// At 100 the overlay is cleared and the scratched share pinned to 100.
func (e *Engine) RenderOverlay(reveal int) {
	e.reveal = min(100, max(0, reveal))
	if e.reveal >= 100 {
		e.tracker.Force(100)
	}
	if e.overlay == nil {
		return
	}
	// Same seed every render, so a higher reveal uncovers a superset of tiles.
	RenderCover(e.overlay, e.reveal, e.opts.TileSize, e.seed)
}

// ApplyScratch erases a disc around (x, y). radius is capped at the
// configured radius, which is also used when radius <= 0. It is a no-op
// unless a poster is loaded, the round is playing, reveal is below 100 and
// budget remains.
func (e *Engine) ApplyScratch(x, y, radius float64) Delta {
	if e.overlay == nil || !e.playing || e.reveal >= 100 || e.tracker.Exhausted() {
		return e.delta(0, 0)
	}
	if !(radius > 0) || radius > e.opts.Radius {
		radius = e.opts.Radius
	}
	erased := e.overlay.EraseDisc(x, y, radius)
	pct := float64(erased) / float64(e.overlay.Total()) * 100
	e.tracker.Charge(pct)
	e.tracker.Observe(e.overlay.Transparent(), e.overlay.Total())
	return e.delta(erased, pct)
}

func (e *Engine) delta(erased int, pct float64) Delta {
	return Delta{
		Erased:    erased,
		Percent:   pct,
		Remaining: e.tracker.Remaining(),
		Scratched: e.tracker.Scratched(),
		Exhausted: e.tracker.Exhausted(),
	}
}

// OnAttemptChanged resets the budget for attempt n and re-renders the
// overlay at the current reveal.
func (e *Engine) OnAttemptChanged(n int) {
	e.attempt = n
	e.tracker.Reset(n)
	e.RenderOverlay(e.reveal)
}

// Sync applies the state machine's view: a new attempt number resets the
// budget and re-renders; otherwise a new reveal re-renders.
func (e *Engine) Sync(reveal, attempt int, playing bool) {
	e.playing = playing
	switch {
	case attempt != e.attempt:
		e.reveal = reveal
		e.OnAttemptChanged(attempt)
	case reveal != e.reveal:
		e.RenderOverlay(reveal)
	}
}

// State returns the observable scratch state.
func (e *Engine) State() State {
	s := State{
		Loaded:    e.poster != nil,
		Limit:     e.tracker.Limit(),
		Remaining: e.tracker.Remaining(),
		Scratched: e.tracker.Scratched(),
	}
	if e.poster != nil {
		s.Width, s.Height = e.poster.Width, e.poster.Height
	}
	return s
}

// Reveal returns the reveal percentage the overlay was last rendered for.
func (e *Engine) Reveal() int { return e.reveal }

// Poster returns the loaded poster or nil.
func (e *Engine) Poster() *Poster { return e.poster }

// Overlay returns the overlay buffer or nil while loading.
func (e *Engine) Overlay() *Buffer { return e.overlay }

// Frame composes the poster with the overlay on top. While loading it
// returns a placeholder of the rendering width at a 2:3 aspect.
func (e *Engine) Frame() image.Image {
	if e.poster == nil {
		return placeholder(e.opts.Width, e.opts.Width*3/2)
	}
	out := image.NewNRGBA(e.poster.Image.Bounds())
	draw.Draw(out, out.Bounds(), e.poster.Image, image.Point{}, draw.Src)
	if e.playing {
		draw.Draw(out, out.Bounds(), e.overlay.Image(), image.Point{}, draw.Over)
	}
	return out
}
