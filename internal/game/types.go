// internal/game/types.go
//
// Core type definitions for the guess-the-movie state machine.
// Defines:
//   - Status: coarse round status (playing/won/lost).
//   - Rules: per-session constants (attempt limit, reveal curve, min guess length).
//   - Session: state for a single round.
//   - Result / View: what a guess returns and what the display layer reads.

package game

import "errors"

// Status is the coarse state of a round.
type Status string

const (
	StatusPlaying Status = "playing"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
)

// Terminal reports whether no further guesses are accepted.
func (s Status) Terminal() bool { return s == StatusWon || s == StatusLost }

// ErrGuessTooShort is returned when a normalized guess has fewer runes than
// Rules.MinGuessLength. The session is left untouched.
var ErrGuessTooShort = errors.New("guess too short")

// Rules holds the constants of a session.
type Rules struct {
	MaxAttempts    int // wrong guesses before the round is lost
	BaseReveal     int // reveal percentage before any guess
	RevealStep     int // added per wrong guess
	MinGuessLength int // in runes, after normalization
}

// DefaultRules returns the reference constants: 3 attempts, 30% + 15% per miss.
func DefaultRules() Rules {
	return Rules{MaxAttempts: 3, BaseReveal: 30, RevealStep: 15, MinGuessLength: 3}
}

// Session holds the state of a single round.
type Session struct {
	Title      string         // Display title as supplied by the movie source.
	Target     string         // Normalized comparison key.
	Rules      Rules          // Constants for this session.
	Attempts   int            // Wrong guesses so far.
	Status     Status         // playing | won | lost
	Reveal     int            // 0..100, non-decreasing within a round.
	Correct    map[int]string // rune index → correctly placed character.
	Guesses    []string       // Raw guesses, in order.
	Generation uint64         // Bumped on every Reset; identifies the round.

	target []rune
}

// Result is returned by SubmitGuess.
type Result struct {
	Status       Status         `json:"status"`
	Attempts     int            `json:"attempts"`
	Reveal       int            `json:"revealPercentage"`
	Correct      map[int]string `json:"correctLetters"`
	NewlyCorrect []int          `json:"newlyCorrect"`
	Won          bool           `json:"won"`
	Ignored      bool           `json:"ignored,omitempty"` // set when the round was not accepting guesses
	Guesses      []string       `json:"previousGuesses"`
	Generation   uint64         `json:"generation"` // the round the guess was scored against
}

// View is the read-only snapshot consumed by the display layer.
type View struct {
	Status      Status         `json:"status"`
	Attempts    int            `json:"attempts"`
	MaxAttempts int            `json:"maxAttempts"`
	Reveal      int            `json:"revealPercentage"`
	Correct     map[int]string `json:"correctLetters"`
	Mask        []string       `json:"mask"`
	Guesses     []string       `json:"previousGuesses"`
	TitleLength int            `json:"titleLength"`
}
