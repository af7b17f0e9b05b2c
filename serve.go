package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/flickguess/assets"
	"github.com/robalobadob/flickguess/internal/httpserver"
	"github.com/robalobadob/flickguess/internal/metrics"
	"github.com/robalobadob/flickguess/internal/movies"
	"github.com/robalobadob/flickguess/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP game server",
	Long: `Start the HTTP server. Rounds are kept in memory; accounts, history and
daily results go to the SQLite database at DB_PATH.

When OMDB_API_KEY is set, classic rounds draw from OMDb and fall back to the
catalog on any failure. The daily challenge always uses the catalog.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := movies.Init(cfg.MoviesFile); err != nil {
		return fmt.Errorf("load movie catalog: %w", err)
	}
	catalog := movies.Default()

	db, err := openDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()
	if err := migrate(db, assets.Migrations()); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	var source movies.Source = catalog
	if cfg.OMDbAPIKey != "" {
		source = movies.NewOMDb(cfg.OMDbAPIKey, catalog)
	}

	srv := httpserver.New(httpserver.Deps{
		Config:  cfg,
		Store:   store.NewMemoryStore(),
		DB:      db,
		Movies:  source,
		Catalog: catalog,
		Posters: movies.NewPosterFetcher(),
		Metrics: metrics.New(),
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("port", cfg.Port).
		Int("movies", catalog.Len()).
		Bool("omdb", cfg.OMDbAPIKey != "").
		Msg("starting flickguess")
	return srv.Start(ctx, ":"+cfg.Port)
}
