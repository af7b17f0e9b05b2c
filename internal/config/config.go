// internal/config/config.go
//
// Runtime configuration, read from the environment (and .env via godotenv,
// loaded by main before Load is called).
//
// Environment variables:
//   PORT, LOG_LEVEL, LOG_FORMAT, DB_PATH
//   JWT_SECRET, JWT_EXPIRES_DAYS, COOKIE_NAME, CLIENT_ORIGIN, NODE_ENV
//   DAILY_SALT, OMDB_API_KEY, MOVIES_FILE
//   MAX_ATTEMPTS, CANVAS_WIDTH, SCRATCH_RADIUS

package config

import (
	"os"
	"strconv"
)

// Config holds every tunable of the server.
type Config struct {
	Port      string
	LogLevel  string
	LogFormat string // "json" (default) or "console"
	DBPath    string

	JWTSecret      string
	JWTExpiresDays int
	CookieName     string
	ClientOrigin   string
	Production     bool

	DailySalt  string
	OMDbAPIKey string
	MoviesFile string

	MaxAttempts   int
	CanvasWidth   int
	ScratchRadius float64
}

// Load reads the environment, applying defaults for anything unset.
func Load() Config {
	return Config{
		Port:      getEnv("PORT", "5175"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		DBPath:    getEnv("DB_PATH", "./data/app.db"),

		JWTSecret:      getEnv("JWT_SECRET", "dev_secret_change_me"),
		JWTExpiresDays: getEnvInt("JWT_EXPIRES_DAYS", 14),
		CookieName:     getEnv("COOKIE_NAME", "flick_token"),
		ClientOrigin:   getEnv("CLIENT_ORIGIN", "http://localhost:5173"),
		Production:     os.Getenv("NODE_ENV") == "production",

		DailySalt:  getEnv("DAILY_SALT", "local_dev_salt"),
		OMDbAPIKey: os.Getenv("OMDB_API_KEY"),
		MoviesFile: os.Getenv("MOVIES_FILE"),

		MaxAttempts:   getEnvInt("MAX_ATTEMPTS", 3),
		CanvasWidth:   getEnvInt("CANVAS_WIDTH", 300),
		ScratchRadius: float64(getEnvInt("SCRATCH_RADIUS", 20)),
	}
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// getEnvInt parses k as an int, returning def when unset or malformed.
func getEnvInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
