// flickguess is the game server for the guess-the-movie scratch poster game.
//
// Usage:
//
//	flickguess [serve]                 - Start the HTTP server (default)
//	flickguess movies                  - List the loaded movie catalog
//	flickguess preview <image> [flags] - Render a frame for a local poster
//
// Configuration comes from the environment (and .env); see internal/config.
// Global flags:
//
//	--port <port>  - Override PORT
//	--db <path>    - Override DB_PATH
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/flickguess/internal/config"
)

var (
	cfg config.Config

	// Global flags
	flagPort   string
	flagDBPath string
)

func main() {
	_ = godotenv.Load()
	cfg = config.Load()
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("flickguess exited")
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "flickguess",
	Short: "Guess-the-movie game server",
	Long: `flickguess serves a casual movie guessing game: a poster hides under a
scratch-off overlay that uncovers more of it after every wrong guess.

Examples:
  flickguess serve --port 8080
  flickguess movies
  flickguess preview poster.jpg --reveal 45 --out frame.png`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		if flagPort != "" {
			cfg.Port = flagPort
		}
		if flagDBPath != "" {
			cfg.DBPath = flagDBPath
		}
		setupLogging(cfg.LogLevel, cfg.LogFormat)
	},
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagPort, "port", "", "HTTP port (overrides PORT)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "SQLite database path (overrides DB_PATH)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(moviesCmd)
	rootCmd.AddCommand(previewCmd)
}

// setupLogging applies LOG_LEVEL and LOG_FORMAT to the global zerolog logger.
func setupLogging(level, format string) {
	if lvl, err := zerolog.ParseLevel(level); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
