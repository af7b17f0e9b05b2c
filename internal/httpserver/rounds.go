// internal/httpserver/rounds.go
//
// Round endpoints:
//   - POST /rounds/new             → start a classic round on a random movie
//   - GET  /rounds/{id}            → JSON view of the round
//   - POST /rounds/{id}/guess      → submit a title guess
//   - POST /rounds/{id}/scratch    → erase a disc of the overlay
//   - POST /rounds/{id}/reset      → same round ID, new movie, new generation
//   - GET  /rounds/{id}/frame.png  → poster composited under the overlay
//   - GET  /rounds/{id}/pixelated.png → pixelation view
//
// Every generation of a round gets a row in the rounds table; finishing a
// round updates user stats and, for daily rounds, the daily results.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/flickguess/internal/canvas"
	"github.com/robalobadob/flickguess/internal/daily"
	"github.com/robalobadob/flickguess/internal/game"
	"github.com/robalobadob/flickguess/internal/round"
)

const posterTimeout = 15 * time.Second

// owner returns the player behind the request: the signed-in user, or the
// anonymous cookie (issued on first use).
func (s *Server) owner(w http.ResponseWriter, r *http.Request) round.Owner {
	if me := currentUser(r); me != nil {
		return round.Owner{UserID: me.ID}
	}
	return round.Owner{AnonID: s.ensureAnonID(w, r)}
}

// lookup resolves {id} or writes a 404.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) *round.Round {
	rd, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return nil
	}
	return rd
}

// begin registers a fresh round (or a fresh generation), records its history
// row, and starts fetching its poster.
func (s *Server) begin(ctx context.Context, rd *round.Round) error {
	if err := s.store.Save(ctx, rd); err != nil {
		return err
	}
	s.metrics.RoundsStarted.WithLabelValues(string(rd.Mode)).Inc()
	s.metrics.ActiveRounds.Set(float64(s.store.Len()))
	s.recordStart(rd)
	go s.loadPoster(rd)
	return nil
}

// loadPoster runs detached from the request; a reset meanwhile makes the
// result stale and it is dropped inside round.LoadPoster.
func (s *Server) loadPoster(rd *round.Round) {
	ctx, cancel := context.WithTimeout(context.Background(), posterTimeout)
	defer cancel()
	err := round.LoadPoster(ctx, rd, s.posters)
	s.metrics.PosterLoads.WithLabelValues(posterResult(err)).Inc()
}

func posterResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, canvas.ErrStaleRound):
		return "stale"
	case errors.Is(err, canvas.ErrPosterUnavailable):
		return "unavailable"
	case errors.Is(err, canvas.ErrImageDecode):
		return "decode_error"
	default:
		return "fetch_error"
	}
}

func (s *Server) handleNewRound(w http.ResponseWriter, r *http.Request) {
	owner := s.owner(w, r)
	movie, err := s.movies.RandomMovie(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("pick movie")
		http.Error(w, `{"error":"no_movies"}`, http.StatusServiceUnavailable)
		return
	}
	rd := round.New(round.ModeClassic, owner, movie, s.opts)
	if err := s.begin(r.Context(), rd); err != nil {
		log.Error().Err(err).Msg("save round")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(rd.View())
}

func (s *Server) handleGetRound(w http.ResponseWriter, r *http.Request) {
	rd := s.lookup(w, r)
	if rd == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(rd.View())
}

type guessReq struct {
	Guess string `json:"guess"`
}

type guessRes struct {
	game.Result
	Round round.View `json:"round"`
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	rd := s.lookup(w, r)
	if rd == nil {
		return
	}
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	res, err := rd.Guess(req.Guess)
	if errors.Is(err, game.ErrGuessTooShort) {
		s.metrics.Guesses.WithLabelValues("too_short").Inc()
		http.Error(w, `{"error":"guess_too_short"}`, http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}
	s.metrics.Guesses.WithLabelValues(guessOutcome(res)).Inc()
	if !res.Ignored {
		s.recordGuess(r.Context(), rd, res)
	}
	_ = json.NewEncoder(w).Encode(guessRes{Result: res, Round: rd.View()})
}

func guessOutcome(res game.Result) string {
	switch {
	case res.Ignored:
		return "ignored"
	case res.Won:
		return "won"
	case res.Status == game.StatusLost:
		return "lost"
	default:
		return "miss"
	}
}

// scratchReq is one pointer event. The erase radius is fixed server-side.
type scratchReq struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (s *Server) handleScratch(w http.ResponseWriter, r *http.Request) {
	rd := s.lookup(w, r)
	if rd == nil {
		return
	}
	var req scratchReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	_ = json.NewEncoder(w).Encode(s.scratch(rd, req))
}

// scratch applies one pointer event; shared by the POST and websocket paths.
func (s *Server) scratch(rd *round.Round, req scratchReq) canvas.Delta {
	d := rd.Scratch(req.X, req.Y)
	if d.Erased > 0 {
		s.metrics.ScratchPercent.Observe(d.Percent)
	}
	return d
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	rd := s.lookup(w, r)
	if rd == nil {
		return
	}
	if rd.Mode == round.ModeDaily {
		http.Error(w, `{"error":"daily_locked"}`, http.StatusConflict)
		return
	}
	movie, err := s.movies.RandomMovie(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("pick movie")
		http.Error(w, `{"error":"no_movies"}`, http.StatusServiceUnavailable)
		return
	}
	prev := rd.Generation()
	s.recordAbandon(rd.ID, prev)
	rd.Reset(movie)
	if err := s.begin(r.Context(), rd); err != nil {
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(rd.View())
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	rd := s.lookup(w, r)
	if rd == nil {
		return
	}
	writePNG(w, rd.WriteFrame)
}

func (s *Server) handlePixelated(w http.ResponseWriter, r *http.Request) {
	rd := s.lookup(w, r)
	if rd == nil {
		return
	}
	writePNG(w, rd.WritePixelated)
}

func writePNG(w http.ResponseWriter, encode func(w io.Writer) error) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := encode(w); err != nil {
		log.Warn().Err(err).Msg("encode frame")
	}
}

// ------------------------------ history ------------------------------------

// recordStart inserts the history row for the round's current generation.
func (s *Server) recordStart(rd *round.Round) {
	var userID, anonID, dailyDate any
	if rd.Owner.UserID != "" {
		userID = rd.Owner.UserID
	} else {
		anonID = rd.Owner.AnonID
	}
	if rd.DailyDate != "" {
		dailyDate = rd.DailyDate
	}
	status, attempts := rd.Status()
	_, err := s.db.Exec(`INSERT OR REPLACE INTO rounds
	        (id, generation, user_id, anonymous_id, title, status, attempts, daily_date, started_at)
	        VALUES (?,?,?,?,?,?,?,?,?)`,
		rd.ID, rd.Generation(), userID, anonID, rd.Movie().Title, string(status), attempts, dailyDate,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		log.Warn().Err(err).Str("round", rd.ID).Msg("insert round row")
	}
}

// recordAbandon marks an unfinished generation as abandoned.
func (s *Server) recordAbandon(id string, gen uint64) {
	if _, err := s.db.Exec(`UPDATE rounds SET status='abandoned', finished_at=?
	                        WHERE id=? AND generation=? AND status='playing'`,
		time.Now().UTC().Format(time.RFC3339), id, gen); err != nil {
		log.Warn().Err(err).Str("round", id).Msg("abandon round")
	}
}

// recordGuess persists progress and, when the guess ended the round, the
// user stats and daily result (best effort, non-fatal if it fails).
// Writes go to the generation the guess was scored against, and never
// replace a row holding as many guesses or more.
func (s *Server) recordGuess(ctx context.Context, rd *round.Round, res game.Result) {
	gen := res.Generation
	guesses, err := json.Marshal(res.Guesses)
	if err != nil {
		log.Warn().Err(err).Msg("encode guesses")
		return
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Warn().Err(err).Msg("begin tx")
		return
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`UPDATE rounds SET attempts=?, status=?, guesses=?
	                      WHERE id=? AND generation=? AND json_array_length(guesses) < ?`,
		res.Attempts, string(res.Status), string(guesses), rd.ID, gen, len(res.Guesses)); err != nil {
		log.Warn().Err(err).Msg("update attempts")
	}
	if res.Status.Terminal() {
		s.metrics.RoundsFinished.WithLabelValues(string(res.Status)).Inc()
		if _, err := tx.Exec(`UPDATE rounds SET finished_at=? WHERE id=? AND generation=?`,
			time.Now().UTC().Format(time.RFC3339), rd.ID, gen); err != nil {
			log.Warn().Err(err).Msg("finish round")
		}
		if rd.Owner.UserID != "" {
			if err := s.bumpStats(tx, rd.Owner.UserID, res.Won); err != nil {
				log.Warn().Err(err).Str("user", rd.Owner.UserID).Msg("bump stats")
			}
		}
	}
	if err := tx.Commit(); err != nil {
		log.Warn().Err(err).Msg("commit round progress")
	}

	if res.Status.Terminal() && rd.Mode == round.ModeDaily {
		err := s.daily.InsertResult(ctx, daily.Result{
			UserID:     rd.Owner.Key(),
			Date:       rd.DailyDate,
			MovieIndex: rd.DailyIndex,
			Attempts:   res.Attempts,
			Won:        res.Won,
			ElapsedMs:  rd.Elapsed().Milliseconds(),
		})
		if err != nil {
			log.Warn().Err(err).Str("round", rd.ID).Msg("record daily result")
		}
	}
}
