package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const serviceName = "institute-cms"

// New creates a zerolog logger configured from LOG_LEVEL, LOG_FORMAT and ENV.
func New() zerolog.Logger {
	pretty := os.Getenv("ENV") == "development" || os.Getenv("LOG_FORMAT") == "pretty"
	return NewWithOptions(os.Stdout, os.Getenv("LOG_LEVEL"), pretty)
}

// NewWithOptions builds a logger writing to out. Unknown levels fall back to info.
func NewWithOptions(out io.Writer, level string, pretty bool) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339

	if pretty {
		return zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}).
			Level(ParseLevel(level)).
			With().
			Timestamp().
			Caller().
			Str("service", serviceName).
			Logger()
	}

	return zerolog.New(out).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}

// ParseLevel maps a level name to a zerolog level.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
