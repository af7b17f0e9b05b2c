package round

import (
	"github.com/robalobadob/flickguess/internal/canvas"
	"github.com/robalobadob/flickguess/internal/game"
	"github.com/robalobadob/flickguess/internal/movies"
)

// View is the read-only state handed to the display layer.
type View struct {
	ID         string `json:"id"`
	Mode       Mode   `json:"mode"`
	Generation uint64 `json:"generation"`
	game.View
	canvas.State
	StatusText  string        `json:"statusText"`
	PosterError string        `json:"posterError,omitempty"`
	Hint        string        `json:"hint,omitempty"`
	Movie       *movies.Movie `json:"movie,omitempty"`
	DailyDate   string        `json:"dailyDate,omitempty"`
}

// View snapshots the round. The plot is offered as a hint after the first
// wrong guess; the full movie record only once the round is over.
func (r *Round) View() View {
	r.mu.Lock()
	defer r.mu.Unlock()

	gv := r.session.Snapshot()
	cs := r.engine.State()
	v := View{
		ID:         r.ID,
		Mode:       r.Mode,
		Generation: r.session.Generation,
		View:       gv,
		State:      cs,
		StatusText: canvas.StatusText(cs, gv.Reveal, string(gv.Status)),
		DailyDate:  r.DailyDate,
	}
	if r.posterErr != nil {
		v.PosterError = r.posterErr.Error()
	}
	if gv.Status == game.StatusPlaying && gv.Attempts > 0 {
		v.Hint = r.movie.Plot
	}
	if gv.Status.Terminal() {
		m := r.movie
		v.Movie = &m
	}
	return v
}
