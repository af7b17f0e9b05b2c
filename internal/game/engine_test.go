package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Inception", "inception"},
		{"  The Matrix ", "thematrix"},
		{"Blade\tRunner\n", "bladerunner"},
		{"AMÉLIE", "amélie"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNew_InitialState(t *testing.T) {
	s := New("The Matrix", DefaultRules())

	assert.Equal(t, "thematrix", s.Target)
	assert.Equal(t, StatusPlaying, s.Status)
	assert.Equal(t, 30, s.Reveal)
	assert.Equal(t, 0, s.Attempts)
	assert.Empty(t, s.Correct)
	assert.Empty(t, s.Guesses)
	assert.Equal(t, uint64(1), s.Generation)
}

func TestSubmitGuess_InceptionScenario(t *testing.T) {
	s := New("Inception", DefaultRules())

	res, err := s.SubmitGuess("Inferno")
	require.NoError(t, err)
	// "inferno" shares i,n and the 'e' at index 3 with "inception".
	assert.Equal(t, map[int]string{0: "i", 1: "n", 3: "e"}, res.Correct)
	assert.Equal(t, []int{0, 1, 3}, res.NewlyCorrect)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, 45, res.Reveal)
	assert.Equal(t, StatusPlaying, res.Status)

	res, err = s.SubmitGuess("Interstellar")
	require.NoError(t, err)
	assert.Empty(t, res.NewlyCorrect)
	assert.Equal(t, map[int]string{0: "i", 1: "n", 3: "e"}, res.Correct)
	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, 60, res.Reveal)

	res, err = s.SubmitGuess("  inCEPtion ")
	require.NoError(t, err)
	assert.True(t, res.Won)
	assert.Equal(t, StatusWon, res.Status)
	assert.Equal(t, 100, res.Reveal)
	assert.Equal(t, 2, res.Attempts)
	assert.Len(t, res.Correct, len("inception"))
}

func TestSubmitGuess_ThreeWrongGuessesLose(t *testing.T) {
	s := New("Avatar", DefaultRules())

	for i, g := range []string{"Alien", "Arrival", "Amadeus"} {
		res, err := s.SubmitGuess(g)
		require.NoError(t, err)
		assert.Equal(t, i+1, res.Attempts)
		if i < 2 {
			assert.Equal(t, 30+(i+1)*15, res.Reveal)
			assert.Equal(t, StatusPlaying, res.Status)
		}
	}

	assert.Equal(t, StatusLost, s.Status)
	assert.Equal(t, 3, s.Attempts)
	assert.Equal(t, 100, s.Reveal, "loss forces a full reveal over the 75% formula value")
}

func TestSubmitGuess_WinOnFirstTry(t *testing.T) {
	s := New("Fight Club", DefaultRules())

	res, err := s.SubmitGuess("fightclub")
	require.NoError(t, err)
	assert.Equal(t, StatusWon, res.Status)
	assert.Equal(t, 100, res.Reveal)
	assert.Equal(t, 0, res.Attempts)
}

func TestSubmitGuess_TooShort(t *testing.T) {
	s := New("Inception", DefaultRules())

	res, err := s.SubmitGuess(" i n ")
	assert.ErrorIs(t, err, ErrGuessTooShort)
	assert.Equal(t, 0, res.Attempts)
	assert.Equal(t, 30, s.Reveal)
	assert.Empty(t, s.Guesses)
	assert.Empty(t, s.Correct)
}

func TestSubmitGuess_IgnoredAfterTerminal(t *testing.T) {
	s := New("Inception", DefaultRules())
	_, err := s.SubmitGuess("inception")
	require.NoError(t, err)

	res, err := s.SubmitGuess("something else")
	require.NoError(t, err)
	assert.True(t, res.Ignored)
	assert.Equal(t, StatusWon, res.Status)
	assert.Len(t, s.Guesses, 1)
}

func TestSubmitGuess_IgnoredWithoutTarget(t *testing.T) {
	s := New("", DefaultRules())

	res, err := s.SubmitGuess("anything")
	require.NoError(t, err)
	assert.True(t, res.Ignored)
	assert.Equal(t, 0, s.Attempts)
}

func TestSubmitGuess_CorrectLettersNeverRemoved(t *testing.T) {
	s := New("Pulp Fiction", DefaultRules())

	_, err := s.SubmitGuess("pulpxxxxxxx")
	require.NoError(t, err)
	res, err := s.SubmitGuess("zzzzfiction")
	require.NoError(t, err)

	for i, c := range "pulpfiction" {
		assert.Equal(t, string(c), res.Correct[i], "index %d", i)
	}
}

func TestSubmitGuess_LongGuessDoesNotIndexPastTitle(t *testing.T) {
	s := New("Up Town", DefaultRules())

	res, err := s.SubmitGuess("uptownfunkyou")
	require.NoError(t, err)
	for i := range res.Correct {
		assert.Less(t, i, len("uptown"))
	}
	assert.Equal(t, StatusPlaying, res.Status)
}

func TestSubmitGuess_RevealCapped(t *testing.T) {
	rules := Rules{MaxAttempts: 10, BaseReveal: 30, RevealStep: 40, MinGuessLength: 3}
	s := New("Inception", rules)

	for _, g := range []string{"aaa", "bbb", "ccc"} {
		_, err := s.SubmitGuess(g)
		require.NoError(t, err)
		assert.Less(t, s.Reveal, 100)
	}
	assert.Equal(t, StatusPlaying, s.Status)
}

func TestReset(t *testing.T) {
	s := New("Inception", DefaultRules())
	_, _ = s.SubmitGuess("Inferno")
	_, _ = s.SubmitGuess("inception")

	s.Reset("The Godfather")

	assert.Equal(t, "thegodfather", s.Target)
	assert.Equal(t, StatusPlaying, s.Status)
	assert.Equal(t, 30, s.Reveal)
	assert.Equal(t, 0, s.Attempts)
	assert.Empty(t, s.Correct)
	assert.Empty(t, s.Guesses)
	assert.Equal(t, uint64(2), s.Generation)
}

func TestMask(t *testing.T) {
	s := New("Up", Rules{MaxAttempts: 1, BaseReveal: 30, RevealStep: 15, MinGuessLength: 1})
	assert.Equal(t, []string{"", ""}, s.Mask())

	_, err := s.SubmitGuess("ux")
	require.NoError(t, err)
	// Lost after one attempt: the whole title is shown.
	assert.Equal(t, []string{"u", "p"}, s.Mask())
}

func TestSnapshot_IsACopy(t *testing.T) {
	s := New("Inception", DefaultRules())
	_, _ = s.SubmitGuess("Inferno")

	v := s.Snapshot()
	v.Correct[8] = "n"
	v.Guesses[0] = "mutated"

	assert.NotContains(t, s.Correct, 8)
	assert.Equal(t, "Inferno", s.Guesses[0])
	assert.Equal(t, 9, v.TitleLength)
	assert.Equal(t, 3, v.MaxAttempts)
}

func TestSubmitGuess_ResultCarriesGeneration(t *testing.T) {
	s := New("Inception", DefaultRules())
	s.Reset("Inception")

	res, err := s.SubmitGuess("Inferno")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), res.Generation)
	assert.Equal(t, []string{"Inferno"}, res.Guesses)

	res.Guesses[0] = "mutated"
	assert.Equal(t, "Inferno", s.Guesses[0])
}
