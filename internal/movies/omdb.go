// internal/movies/omdb.go
//
// OMDb-backed movie source. Picks a random title from a fixed list of
// popular IMDb IDs and looks it up. Any failure (no key, network, bad
// payload) falls back to the configured Source, so callers always get a
// playable movie.

package movies

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

const defaultOMDbURL = "https://www.omdbapi.com/"

// PopularIDs are the IMDb IDs rounds are drawn from.
var PopularIDs = []string{
	"tt0111161", "tt0068646", "tt0071562", "tt0468569", "tt0050083",
	"tt0108052", "tt0167260", "tt0110912", "tt0060196", "tt0120737",
	"tt0109830", "tt0137523", "tt0080684", "tt1375666", "tt0167261",
	"tt0073486", "tt0099685", "tt0133093", "tt0047478", "tt0114369",
}

// OMDb looks movies up on omdbapi.com.
type OMDb struct {
	APIKey   string
	BaseURL  string
	IDs      []string
	Client   *http.Client
	Fallback Source
}

// NewOMDb returns a client using PopularIDs and a 5s timeout.
func NewOMDb(apiKey string, fallback Source) *OMDb {
	return &OMDb{
		APIKey:   apiKey,
		BaseURL:  defaultOMDbURL,
		IDs:      PopularIDs,
		Client:   &http.Client{Timeout: 5 * time.Second},
		Fallback: fallback,
	}
}

// RandomMovie looks up a random popular title, or defers to the fallback.
func (o *OMDb) RandomMovie(ctx context.Context) (Movie, error) {
	if o.APIKey == "" || len(o.IDs) == 0 {
		return o.fallback(ctx)
	}
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(o.IDs))))
	id := o.IDs[n.Int64()]
	m, err := o.Lookup(ctx, id)
	if err != nil {
		log.Warn().Err(err).Str("imdbId", id).Msg("omdb lookup failed, using fallback catalog")
		return o.fallback(ctx)
	}
	return m, nil
}

func (o *OMDb) fallback(ctx context.Context) (Movie, error) {
	if o.Fallback == nil {
		return Movie{}, ErrEmptyCatalog
	}
	return o.Fallback.RandomMovie(ctx)
}

// Lookup fetches a single title by IMDb ID.
func (o *OMDb) Lookup(ctx context.Context, imdbID string) (Movie, error) {
	q := url.Values{}
	q.Set("apikey", o.APIKey)
	q.Set("i", imdbID)
	q.Set("plot", "short")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return Movie{}, err
	}
	res, err := o.Client.Do(req)
	if err != nil {
		return Movie{}, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return Movie{}, fmt.Errorf("omdb: status %d", res.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return Movie{}, err
	}
	return parseOMDb(body)
}

// parseOMDb extracts a Movie from an OMDb JSON reply.
func parseOMDb(body []byte) (Movie, error) {
	if !gjson.ValidBytes(body) {
		return Movie{}, errors.New("omdb: invalid json")
	}
	r := gjson.ParseBytes(body)
	if r.Get("Response").String() == "False" {
		return Movie{}, fmt.Errorf("omdb: %s", r.Get("Error").String())
	}
	m := Movie{
		Title:     r.Get("Title").String(),
		Year:      r.Get("Year").String(),
		PosterURL: r.Get("Poster").String(),
		Plot:      r.Get("Plot").String(),
	}
	if m.Title == "" {
		return Movie{}, errors.New("omdb: missing title")
	}
	if m.PosterURL == "N/A" {
		m.PosterURL = ""
	}
	if m.Plot == "N/A" {
		m.Plot = ""
	}
	return m, nil
}
