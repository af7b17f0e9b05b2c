package movies

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrNoPosterURL is returned when a movie has no poster to fetch.
var ErrNoPosterURL = errors.New("movies: no poster url")

// PosterFetcher downloads poster images.
type PosterFetcher struct {
	Client   *http.Client
	MaxBytes int64
}

// NewPosterFetcher returns a fetcher with a 10s timeout and a 5 MiB cap.
func NewPosterFetcher() *PosterFetcher {
	return &PosterFetcher{Client: &http.Client{Timeout: 10 * time.Second}, MaxBytes: 5 << 20}
}

// Fetch returns the raw bytes at rawURL.
func (f *PosterFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if rawURL == "" {
		return nil, ErrNoPosterURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	res, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("poster: status %d", res.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(res.Body, f.MaxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > f.MaxBytes {
		return nil, fmt.Errorf("poster: larger than %d bytes", f.MaxBytes)
	}
	return data, nil
}
