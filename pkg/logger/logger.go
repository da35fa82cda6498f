// Package logger provides a zerolog-based logging capability shared by every
// service in the backtester. There is no package-level singleton: New()
// returns a logger value that callers inject into their constructors.
package logger

import (
	"os"

	"github.com/rs/zerolog"
)

// Config controls how the root logger is built.
type Config struct {
	Level  string // debug, info, warn, error (default info)
	Pretty bool   // human-readable console output instead of JSON
}

// New builds a root zerolog.Logger from cfg and sets the process-wide
// zerolog level (zerolog filters at the package level regardless of which
// Logger value is used, so this also governs every derived logger).
func New(cfg Config) zerolog.Logger {
	zerolog.TimeFieldFormat = "2006-01-02T15:04:05Z07:00"
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	var writer zerolog.ConsoleWriter
	var log zerolog.Logger
	if cfg.Pretty {
		writer = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
		log = zerolog.New(writer)
	} else {
		log = zerolog.New(os.Stdout)
	}

	log = log.With().Timestamp().Caller().Logger()
	return log
}

// SetGlobalLogger installs log as zerolog.DefaultContextLogger, the logger
// zerolog.Ctx returns for a context that carries none of its own.
func SetGlobalLogger(log zerolog.Logger) {
	zlog := log
	zerolog.DefaultContextLogger = &zlog
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
