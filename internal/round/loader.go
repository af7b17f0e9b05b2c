package round

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/flickguess/internal/canvas"
)

// Fetcher downloads poster bytes.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// LoadPoster fetches the round's current poster and applies it. It is meant
// to run on its own goroutine; the round may be reset meanwhile, in which
// case the result is dropped. The returned error is for logging and metrics.
func LoadPoster(ctx context.Context, r *Round, f Fetcher) error {
	url, gen := r.PosterTarget()
	if url == "" {
		r.PosterFailed(gen, canvas.ErrPosterUnavailable)
		return canvas.ErrPosterUnavailable
	}
	data, err := f.Fetch(ctx, url)
	if err != nil {
		r.PosterFailed(gen, err)
		log.Warn().Err(err).Str("round", r.ID).Str("url", url).Msg("poster fetch failed")
		return err
	}
	err = r.PosterLoaded(gen, data)
	switch {
	case errors.Is(err, canvas.ErrStaleRound):
		log.Debug().Str("round", r.ID).Uint64("generation", gen).Msg("discarding poster for superseded round")
	case err != nil:
		log.Warn().Err(err).Str("round", r.ID).Msg("poster decode failed")
	}
	return err
}
