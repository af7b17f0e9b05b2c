// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
// Exposes two endpoints under /daily:
//   - POST /daily/new         → start today's round (or resume it)
//   - GET  /daily/leaderboard → top 20 winners for today (or a given date)
//
// Guesses and scratches go through the regular /rounds/{id} endpoints; the
// result is persisted when the round finishes (see recordGuess).
// Each player gets one daily round per date. The in-memory index finds a
// live round quickly; the rounds table is the record, and a round evicted
// from memory is rebuilt from its stored guesses rather than started over.
// Deterministic movie selection is based on date + salt.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/flickguess/internal/daily"
	"github.com/robalobadob/flickguess/internal/round"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv      *Server
	salt     string
	sessions map[string]dailySession // player|date → live round
	mu       sync.Mutex              // guards sessions
}

type dailySession struct {
	roundID string
	date    string
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{
		srv:      s,
		salt:     s.cfg.DailySalt,
		sessions: make(map[string]dailySession),
	}
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
		r.Get("/leaderboard", dd.handleLeaderboard)
	})
}

// today returns the date key and the catalog index of today's movie.
func (d *dailyServer) today() (string, int) {
	now := time.Now().UTC()
	return daily.DateKey(now), daily.MovieIndex(now, d.salt, d.srv.catalog.Len())
}

type newRes struct {
	RoundID string      `json:"roundId,omitempty"`
	Date    string      `json:"date"`
	Played  bool        `json:"played"`
	Round   *round.View `json:"round,omitempty"`
}

// handleNew creates or resumes the caller's daily round.
//   - A DB row for today → Played=true, no round.
//   - Otherwise reuse the in-memory round or start one on today's movie.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	if d.srv.catalog == nil || d.srv.catalog.Len() == 0 {
		http.Error(w, `{"error":"no_movies"}`, http.StatusServiceUnavailable)
		return
	}
	owner := d.srv.owner(w, r)
	date, idx := d.today()

	played, err := d.srv.daily.AlreadyPlayed(r.Context(), owner.Key(), date)
	if err != nil {
		log.Warn().Err(err).Msg("daily lookup")
	}
	if played {
		_ = json.NewEncoder(w).Encode(newRes{Date: date, Played: true})
		return
	}

	key := owner.Key() + "|" + date
	d.mu.Lock()
	defer d.mu.Unlock()
	d.prune(date)
	if ds, ok := d.sessions[key]; ok {
		if rd, err := d.srv.store.Get(r.Context(), ds.roundID); err == nil {
			v := rd.View()
			_ = json.NewEncoder(w).Encode(newRes{RoundID: rd.ID, Date: date, Round: &v})
			return
		}
	}

	rd, err := d.restore(r.Context(), owner, date, idx)
	if err != nil {
		log.Error().Err(err).Msg("daily restore")
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	if rd != nil {
		if err := d.srv.store.Save(r.Context(), rd); err != nil {
			http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
			return
		}
		d.srv.metrics.ActiveRounds.Set(float64(d.srv.store.Len()))
		go d.srv.loadPoster(rd)
		d.sessions[key] = dailySession{roundID: rd.ID, date: date}
		v := rd.View()
		_ = json.NewEncoder(w).Encode(newRes{RoundID: rd.ID, Date: date, Round: &v})
		return
	}

	rd = round.New(round.ModeDaily, owner, d.srv.catalog.At(idx), d.srv.opts)
	rd.DailyDate = date
	rd.DailyIndex = idx
	if err := d.srv.begin(r.Context(), rd); err != nil {
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	d.sessions[key] = dailySession{roundID: rd.ID, date: date}
	v := rd.View()
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(newRes{RoundID: rd.ID, Date: date, Round: &v})
}

// prune drops index entries from earlier dates. Callers hold d.mu.
func (d *dailyServer) prune(today string) {
	for k, ds := range d.sessions {
		if ds.date != today {
			delete(d.sessions, k)
		}
	}
}

// restore rebuilds the owner's daily round for date from the rounds table.
// It returns nil, nil when the owner has not started one.
func (d *dailyServer) restore(ctx context.Context, owner round.Owner, date string, idx int) (*round.Round, error) {
	col, who := "anonymous_id", owner.AnonID
	if owner.UserID != "" {
		col, who = "user_id", owner.UserID
	}
	var id, guessesJSON, started string
	err := d.srv.db.QueryRowContext(ctx, `SELECT id, guesses, started_at FROM rounds
	                                      WHERE daily_date=? AND `+col+`=?
	                                      ORDER BY started_at DESC LIMIT 1`, date, who).
		Scan(&id, &guessesJSON, &started)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var guesses []string
	if err := json.Unmarshal([]byte(guessesJSON), &guesses); err != nil {
		return nil, err
	}
	startedAt, _ := time.Parse(time.RFC3339, started)

	rd := round.Restore(id, round.ModeDaily, owner, d.srv.catalog.At(idx), d.srv.opts, guesses, startedAt)
	rd.DailyDate = date
	rd.DailyIndex = idx
	log.Debug().Str("round", id).Int("guesses", len(guesses)).Msg("daily round restored")
	return rd, nil
}

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(time.Now())
	}
	rows, err := d.srv.daily.Leaderboard(r.Context(), date, 20)
	if err != nil {
		log.Error().Err(err).Msg("daily leaderboard")
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(lbRes{Date: date, Top: rows})
}
