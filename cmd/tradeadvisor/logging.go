package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/trogers1052/trade-advisor/internal/config"
)

// newLogger builds the root logger. The --log-level flag wins over LOG_LEVEL.
func newLogger(cfg config.LogConfig) zerolog.Logger {
	level := cfg.Level
	if logLevel != "" {
		level = logLevel
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(lvl).With().Timestamp().Str("service", "tradeadvisor").Logger()
}
