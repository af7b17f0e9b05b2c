// internal/game/engine.go
//
// State machine for a single guess-the-movie round.
// Responsibilities:
//   - Create and reset sessions around a target title.
//   - Normalize and score guesses (positional exact match only).
//   - Track state transitions: playing → won/lost, and the reveal curve.
//
// Notes:
//   - A session is not safe for concurrent use; the round controller serializes access.
//   - Letter indices count runes of the normalized title.
package game

import (
	"maps"
	"strings"
	"unicode"
)

// New constructs a session for title using rules.
func New(title string, rules Rules) *Session {
	s := &Session{Rules: rules}
	s.Reset(title)
	return s
}

// Reset reinitializes every field for a new target title and bumps Generation.
func (s *Session) Reset(title string) {
	s.Title = title
	s.Target = Normalize(title)
	s.target = []rune(s.Target)
	s.Attempts = 0
	s.Status = StatusPlaying
	s.Reveal = s.Rules.BaseReveal
	s.Correct = map[int]string{}
	s.Guesses = []string{}
	s.Generation++
}

// Normalize lowercases s and removes every whitespace rune.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// SubmitGuess scores raw against the target and advances the state machine.
//
// A finished round, or one without a target, ignores the guess and returns the
// current state with Ignored set. Guesses shorter than Rules.MinGuessLength
// return ErrGuessTooShort without mutating anything.
//
// State transitions:
//   - Full normalized match → won, reveal 100 (attempts unchanged).
//   - Otherwise attempts+1 and reveal = base + attempts*step (at most 99);
//     reaching MaxAttempts → lost, reveal 100.
func (s *Session) SubmitGuess(raw string) (Result, error) {
	if s.Status != StatusPlaying || len(s.target) == 0 {
		res := s.result(nil)
		res.Ignored = true
		return res, nil
	}
	guess := []rune(Normalize(raw))
	if len(guess) < s.Rules.MinGuessLength {
		return s.result(nil), ErrGuessTooShort
	}

	s.Guesses = append(s.Guesses, raw)

	var fresh []int
	for i, r := range guess {
		if i >= len(s.target) {
			break
		}
		if r != s.target[i] {
			continue
		}
		if _, ok := s.Correct[i]; ok {
			continue
		}
		s.Correct[i] = string(r)
		fresh = append(fresh, i)
	}

	if string(guess) == s.Target {
		s.Status = StatusWon
		s.Reveal = 100
		return s.result(fresh), nil
	}

	s.Attempts++
	// 100 is reserved for terminal states.
	s.Reveal = min(99, s.Rules.BaseReveal+s.Attempts*s.Rules.RevealStep)
	if s.Attempts >= s.Rules.MaxAttempts {
		s.Status = StatusLost
		s.Reveal = 100
	}
	return s.result(fresh), nil
}

// Mask returns one display slot per rune of the normalized title:
// the letter when it has been placed correctly, "" otherwise.
// A finished round shows the whole title.
func (s *Session) Mask() []string {
	out := make([]string, len(s.target))
	for i, r := range s.target {
		if c, ok := s.Correct[i]; ok || s.Status.Terminal() {
			if !ok {
				c = string(r)
			}
			out[i] = c
		}
	}
	return out
}

// Snapshot returns a copy of the display-facing state.
func (s *Session) Snapshot() View {
	return View{
		Status:      s.Status,
		Attempts:    s.Attempts,
		MaxAttempts: s.Rules.MaxAttempts,
		Reveal:      s.Reveal,
		Correct:     maps.Clone(s.Correct),
		Mask:        s.Mask(),
		Guesses:     append([]string(nil), s.Guesses...),
		TitleLength: len(s.target),
	}
}

func (s *Session) result(fresh []int) Result {
	return Result{
		Status:       s.Status,
		Attempts:     s.Attempts,
		Reveal:       s.Reveal,
		Correct:      maps.Clone(s.Correct),
		NewlyCorrect: fresh,
		Won:          s.Status == StatusWon,
		Guesses:      append([]string(nil), s.Guesses...),
		Generation:   s.Generation,
	}
}
