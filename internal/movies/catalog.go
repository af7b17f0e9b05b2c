// internal/movies/catalog.go
//
// Catalog management.
//
// Initialization behavior (Init):
//   1. If MOVIES_FILE is set, load the YAML catalog from that path.
//   2. Otherwise use the catalog embedded in the assets package.
//
// Entries without a title are dropped; titles are trimmed.
// Initialization is run once (sync.Once).

package movies

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/robalobadob/flickguess/assets"
)

// Catalog is an immutable list of movies.
type Catalog struct {
	movies []Movie
}

type catalogFile struct {
	Movies []Movie `yaml:"movies"`
}

var (
	initOnce   sync.Once
	defaultCat *Catalog
	initialErr error
)

// Init loads the default catalog exactly once.
func Init(path string) error {
	initOnce.Do(func() {
		var data []byte
		var err error
		if path != "" {
			data, err = os.ReadFile(path)
		} else {
			data, err = assets.Catalog()
		}
		if err != nil {
			initialErr = fmt.Errorf("read catalog: %w", err)
			return
		}
		defaultCat, initialErr = ParseCatalog(data)
	})
	return initialErr
}

// Default returns the catalog loaded by Init, or nil before Init succeeds.
func Default() *Catalog { return defaultCat }

// ParseCatalog decodes a YAML catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return NewCatalog(f.Movies)
}

// NewCatalog builds a catalog from list, dropping untitled entries.
func NewCatalog(list []Movie) (*Catalog, error) {
	c := &Catalog{}
	for _, m := range list {
		m.Title = strings.TrimSpace(m.Title)
		if m.Title == "" {
			continue
		}
		c.movies = append(c.movies, m)
	}
	if len(c.movies) == 0 {
		return nil, ErrEmptyCatalog
	}
	return c, nil
}

// RandomMovie returns a cryptographically random entry.
func (c *Catalog) RandomMovie(context.Context) (Movie, error) {
	if c == nil || len(c.movies) == 0 {
		return Movie{}, ErrEmptyCatalog
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(c.movies))))
	if err != nil {
		return c.movies[0], nil
	}
	return c.movies[n.Int64()], nil
}

// At returns the movie at i modulo the catalog size (daily selection).
func (c *Catalog) At(i int) Movie {
	n := len(c.movies)
	return c.movies[((i%n)+n)%n]
}

// Len returns the number of movies.
func (c *Catalog) Len() int { return len(c.movies) }

// All returns a copy of the catalog entries.
func (c *Catalog) All() []Movie { return append([]Movie(nil), c.movies...) }
