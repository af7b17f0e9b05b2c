package canvas

import (
	"errors"
	"fmt"
)

var (
	// ErrPosterUnavailable means no poster bytes were supplied.
	ErrPosterUnavailable = errors.New("poster unavailable")
	// ErrImageDecode is wrapped by every *ImageDecodeError.
	ErrImageDecode = errors.New("image decode failed")
	// ErrPosterTooLarge means the poster declares more than MaxSourcePixels.
	ErrPosterTooLarge = errors.New("poster dimensions too large")
	// ErrStaleRound means a decoded poster belongs to a superseded round.
	ErrStaleRound = errors.New("stale round callback")
)

// ImageDecodeError carries the decoder's reason for rejecting poster bytes.
type ImageDecodeError struct {
	Err error
}

func (e *ImageDecodeError) Error() string {
	return fmt.Sprintf("%v: %v", ErrImageDecode, e.Err)
}

func (e *ImageDecodeError) Unwrap() []error { return []error{ErrImageDecode, e.Err} }
