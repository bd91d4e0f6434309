package server

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds server configuration, read from the environment with an
// optional .env overlay.
type Config struct {
	Port            int
	DatabasePath    string
	QuoteURL        string // live quote URL template with a %s ticker slot
	QuotePath       string // jsonpath into the quote response
	RefreshSchedule string // cron spec for the scheduled quote refresh
	LogLevel        string
	Pretty          bool
}

// LoadConfig reads configuration from environment variables. A .env file in
// the working directory is loaded first when present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnvAsInt("FUNDVAL_PORT", 3290),
		DatabasePath:    getEnv("FUNDVAL_DB", "./data/fundval.db"),
		QuoteURL:        getEnv("FUNDVAL_QUOTE_URL", ""),
		QuotePath:       getEnv("FUNDVAL_QUOTE_PATH", "$.quote.price"),
		RefreshSchedule: getEnv("FUNDVAL_REFRESH_CRON", "@every 1h"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Pretty:          getEnvAsBool("LOG_PRETTY", false),
	}

	if cfg.DatabasePath == "" {
		return nil, fmt.Errorf("FUNDVAL_DB must not be empty")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// NewLogger builds the structured logger the server and its jobs share.
func NewLogger(level string, pretty bool) zerolog.Logger {
	lvl := zerolog.InfoLevel
	switch level {
	case "debug":
		lvl = zerolog.DebugLevel
	case "warn":
		lvl = zerolog.WarnLevel
	case "error":
		lvl = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339

	var output io.Writer = os.Stderr
	if pretty {
		output = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	}
	return zerolog.New(output).With().Timestamp().Logger()
}
