// internal/movies/movie.go
//
// Movie records and the source collaborator that supplies one per round.
//
// Sources:
//   - Catalog: a YAML list, embedded by default or read from MOVIES_FILE.
//   - OMDb:    live lookups against omdbapi.com, falling back to a Catalog.
//
// The game core only needs Title and PosterURL; Year and Plot are shown
// once a round is over (Plot earlier, as a hint).

package movies

import (
	"context"
	"errors"
)

// Movie is one playable title.
type Movie struct {
	Title     string `yaml:"title"  json:"title"`
	Year      string `yaml:"year"   json:"year"`
	PosterURL string `yaml:"poster" json:"posterUrl"`
	Plot      string `yaml:"plot"   json:"plot"`
}

// Source supplies a random movie for a new round.
type Source interface {
	RandomMovie(ctx context.Context) (Movie, error)
}

// ErrEmptyCatalog is returned when a catalog holds no usable movies.
var ErrEmptyCatalog = errors.New("movies: catalog is empty")
