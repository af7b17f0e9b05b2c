// internal/httpserver/server.go
//
// HTTP server wiring for the movie-guessing backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/metrics", "/debug/movies".
//   - Round endpoints (optional auth): /rounds/*.
//   - Daily Challenge endpoints (optional auth): mounted under /daily.
//   - Auth + profile/stat endpoints (require auth): /auth/*, /stats/me, /rounds/mine.
//
// Notes:
//   - Rounds live in the in-memory store; sqlite keeps history and stats.
//   - Posters are fetched on a goroutine per round generation.
//   - The websocket route sits outside the timeout middleware.

package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/flickguess/internal/canvas"
	"github.com/robalobadob/flickguess/internal/config"
	"github.com/robalobadob/flickguess/internal/daily"
	"github.com/robalobadob/flickguess/internal/game"
	"github.com/robalobadob/flickguess/internal/metrics"
	"github.com/robalobadob/flickguess/internal/movies"
	"github.com/robalobadob/flickguess/internal/round"
	"github.com/robalobadob/flickguess/internal/store"
)

// Deps are the collaborators a Server is built from.
type Deps struct {
	Config  config.Config
	Store   store.Store
	DB      *sql.DB
	Movies  movies.Source   // random movies for classic rounds
	Catalog *movies.Catalog // fixed list for the daily challenge
	Posters round.Fetcher
	Metrics *metrics.Metrics
}

// Server bundles router, round store, and DB handle.
type Server struct {
	r       *chi.Mux
	cfg     config.Config
	store   store.Store
	db      *sql.DB
	movies  movies.Source
	catalog *movies.Catalog
	posters round.Fetcher
	metrics *metrics.Metrics
	daily   *daily.Store
	opts    round.Options
}

// New constructs a Server, installs middleware, and registers routes.
func New(d Deps) *Server {
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}
	if d.Posters == nil {
		d.Posters = movies.NewPosterFetcher()
	}
	if d.Movies == nil {
		d.Movies = d.Catalog
	}
	rules := game.DefaultRules()
	if d.Config.MaxAttempts > 0 {
		rules.MaxAttempts = d.Config.MaxAttempts
	}
	s := &Server{
		r:       chi.NewRouter(),
		cfg:     d.Config,
		store:   d.Store,
		db:      d.DB,
		movies:  d.Movies,
		catalog: d.Catalog,
		posters: d.Posters,
		metrics: d.Metrics,
		daily:   daily.NewStore(d.DB),
		opts: round.Options{
			Rules:  rules,
			Canvas: canvas.Options{Width: d.Config.CanvasWidth, Radius: d.Config.ScratchRadius},
		},
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)             // add X-Request-ID
	s.r.Use(chimw.RealIP)                // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(requestLogger)               // zerolog access line
	s.r.Use(chimw.Recoverer)             // recover from panics
	s.r.Use(cors(d.Config.ClientOrigin)) // credentials-friendly CORS

	// Scratch stream: long-lived, so no handler timeout.
	s.r.With(s.withOptionalAuth()).Get("/rounds/{id}/scratch/ws", s.handleScratchWS)

	s.r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
		r.Use(jsonContentType)                 // default JSON responses

		// --- diagnostics ---
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"service":"flickguess","endpoints":["/health","POST /rounds/new","POST /rounds/{id}/guess","POST /rounds/{id}/scratch","POST /daily/new","/auth/*"]}`))
		})
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"ok":true}`))
		})
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
		r.Get("/debug/movies", func(w http.ResponseWriter, r *http.Request) {
			n := 0
			if s.catalog != nil {
				n = s.catalog.Len()
			}
			_ = json.NewEncoder(w).Encode(map[string]int{"catalog": n, "activeRounds": s.store.Len()})
		})

		// Rounds: OPTIONAL AUTH (guests can play)
		r.With(s.withOptionalAuth()).Route("/rounds", func(r chi.Router) {
			r.Post("/new", s.handleNewRound)
			r.With(s.requireAuth()).Get("/mine", s.handleMyRounds)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetRound)
				r.Post("/guess", s.handleGuess)
				r.Post("/scratch", s.handleScratch)
				r.Post("/reset", s.handleReset)
				r.Get("/frame.png", s.handleFrame)
				r.Get("/pixelated.png", s.handlePixelated)
			})
		})

		// Daily Challenge: OPTIONAL AUTH (guests can play; results persisted on finish)
		s.mountDaily(r.With(s.withOptionalAuth()))

		// Auth + profile/stats
		s.mountAuthRoutes(r)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	hs := &http.Server{Addr: addr, Handler: s.r, ReadHeaderTimeout: 5 * time.Second}
	go s.sweepLoop(ctx, time.Minute, 2*time.Hour)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = hs.Shutdown(shutdownCtx)
	}()
	if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// sweepLoop evicts idle rounds every interval.
func (s *Server) sweepLoop(ctx context.Context, every, idle time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := s.store.Sweep(now, idle); n > 0 {
				log.Debug().Int("evicted", n).Msg("swept idle rounds")
			}
			s.metrics.ActiveRounds.Set(float64(s.store.Len()))
		}
	}
}
