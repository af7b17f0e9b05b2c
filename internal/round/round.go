// internal/round/round.go
//
// Round controller: binds one game session to one scratch engine.
// Responsibilities:
//   - Route guesses to the state machine and feed the result to the engine.
//   - Route pointer input to the engine.
//   - Reset a round onto a new movie, bumping its generation.
//   - Accept poster bytes asynchronously, dropping completions for a
//     superseded generation.
//   - Produce the display view and PNG frames.
//
// All methods serialize on the round's mutex; the session and engine are
// never touched concurrently.

package round

import (
	"errors"
	"hash/fnv"
	"image/png"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/robalobadob/flickguess/internal/canvas"
	"github.com/robalobadob/flickguess/internal/game"
	"github.com/robalobadob/flickguess/internal/movies"
)

// Mode distinguishes free play from the daily challenge.
type Mode string

const (
	ModeClassic Mode = "classic"
	ModeDaily   Mode = "daily"
)

// Owner identifies who plays a round: a user account or an anonymous cookie.
type Owner struct {
	UserID string
	AnonID string
}

// Key returns the identifier used for per-player bookkeeping.
func (o Owner) Key() string {
	if o.UserID != "" {
		return o.UserID
	}
	return o.AnonID
}

// Options carries the constants for new rounds.
type Options struct {
	Rules  game.Rules
	Canvas canvas.Options
}

// Round is one player's game.
type Round struct {
	mu sync.Mutex

	ID    string
	Mode  Mode
	Owner Owner

	// Daily challenge bookkeeping; zero for classic rounds.
	DailyDate  string
	DailyIndex int

	movie     movies.Movie
	session   *game.Session
	engine    *canvas.Engine
	width     int // poster rendering width, fixed at construction
	posterErr error
	startedAt time.Time
	touchedAt time.Time
}

// New starts a round on movie.
func New(mode Mode, owner Owner, movie movies.Movie, opts Options) *Round {
	r := build(uuid.NewString(), mode, owner, opts)
	r.reset(movie)
	return r
}

// Restore rebuilds a round that is no longer in memory by replaying its
// recorded guesses against movie. The result has the same attempts, reveal
// and correct letters the original reached.
func Restore(id string, mode Mode, owner Owner, movie movies.Movie, opts Options, guesses []string, startedAt time.Time) *Round {
	r := build(id, mode, owner, opts)
	r.reset(movie)
	for _, g := range guesses {
		res, err := r.session.SubmitGuess(g)
		if err != nil || res.Ignored {
			continue
		}
		r.engine.Sync(res.Reveal, res.Attempts, res.Status == game.StatusPlaying)
	}
	if !startedAt.IsZero() {
		r.startedAt = startedAt
	}
	return r
}

func build(id string, mode Mode, owner Owner, opts Options) *Round {
	eng := canvas.NewEngine(opts.Canvas)
	return &Round{
		ID:      id,
		Mode:    mode,
		Owner:   owner,
		session: game.New("", opts.Rules),
		engine:  eng,
		width:   eng.Options().Width,
	}
}

// Reset moves the round onto movie and returns the new generation.
// A poster load still in flight for the old generation will be discarded.
func (r *Round) Reset(movie movies.Movie) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reset(movie)
}

func (r *Round) reset(movie movies.Movie) uint64 {
	r.movie = movie
	r.session.Reset(movie.Title)
	r.engine.Begin(r.session.Generation, seedFor(r.ID, r.session.Generation), r.session.Reveal)
	r.posterErr = nil
	if movie.PosterURL == "" {
		r.posterErr = canvas.ErrPosterUnavailable
	}
	r.startedAt = time.Now()
	r.touchedAt = r.startedAt
	return r.session.Generation
}

// seedFor derives the overlay pattern seed from the round identity.
func seedFor(id string, gen uint64) int64 {
	h := fnv.New64a()
	_, _ = io.WriteString(h, id)
	return int64(h.Sum64() ^ gen)
}

// Guess submits a guess and syncs the engine with the result.
func (r *Round) Guess(raw string) (game.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touchedAt = time.Now()

	res, err := r.session.SubmitGuess(raw)
	if err != nil || res.Ignored {
		return res, err
	}
	r.engine.Sync(res.Reveal, res.Attempts, res.Status == game.StatusPlaying)
	return res, nil
}

// Scratch applies pointer input at (x, y) with the configured radius.
func (r *Round) Scratch(x, y float64) canvas.Delta {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touchedAt = time.Now()
	return r.engine.ApplyScratch(x, y, 0)
}

// PosterTarget returns what a loader should fetch: the poster URL and the
// generation to report back with.
func (r *Round) PosterTarget() (string, uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.movie.PosterURL, r.session.Generation
}

// PosterLoaded applies fetched poster bytes for generation gen.
// canvas.ErrStaleRound is returned, and nothing recorded, when the round has
// moved on. Other failures are kept and reported in the view.
//
// Decoding happens before the lock is taken, so a slow decode does not
// hold up guesses or scratches on the round.
func (r *Round) PosterLoaded(gen uint64, data []byte) error {
	p, err := canvas.DecodePoster(data, r.width)

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.session.Generation {
		return canvas.ErrStaleRound
	}
	if err == nil {
		err = r.engine.ApplyPoster(gen, p)
		if errors.Is(err, canvas.ErrStaleRound) {
			return err
		}
	}
	r.posterErr = err
	return err
}

// PosterFailed records a fetch failure for generation gen.
func (r *Round) PosterFailed(gen uint64, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if gen == r.session.Generation {
		r.posterErr = err
	}
}

// Movie returns the current movie.
func (r *Round) Movie() movies.Movie {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.movie
}

// Status returns the session status and attempt count.
func (r *Round) Status() (game.Status, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session.Status, r.session.Attempts
}

// Generation returns the current generation.
func (r *Round) Generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session.Generation
}

// Elapsed returns the time since the current generation started.
func (r *Round) Elapsed() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return time.Since(r.startedAt)
}

// IdleSince reports when the round was last used.
func (r *Round) IdleSince() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.touchedAt
}

// WriteFrame encodes the scratch composite as PNG.
func (r *Round) WriteFrame(w io.Writer) error {
	r.mu.Lock()
	img := r.engine.Frame()
	r.mu.Unlock()
	return png.Encode(w, img)
}

// WritePixelated encodes the pixelation view of the poster as PNG.
func (r *Round) WritePixelated(w io.Writer) error {
	r.mu.Lock()
	p, reveal := r.engine.Poster(), r.session.Reveal
	frame := r.engine.Frame()
	r.mu.Unlock()
	if p == nil {
		return png.Encode(w, frame)
	}
	return png.Encode(w, canvas.Pixelate(p.Image, reveal))
}
