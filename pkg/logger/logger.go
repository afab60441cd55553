// Package logger builds the zerolog loggers used across the service.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ServiceName is stamped on every log line.
const ServiceName = "order-webhook-service"

// New returns the process logger writing to stdout. pretty switches to
// console output for local runs.
func New(level string, pretty bool) zerolog.Logger {
	var w io.Writer = os.Stdout
	if pretty {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return build(w, level).With().Caller().Logger()
}

// NewWithWriter returns a JSON logger writing to w.
func NewWithWriter(level string, w io.Writer) zerolog.Logger {
	return build(w, level)
}

// Component tags every line from one subsystem ("webhook", "mailer", ...).
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

// ParseLevel maps a config level name to a zerolog level. Empty or unknown
// names fall back to info.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func build(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(w).
		Level(ParseLevel(level)).
		With().
		Timestamp().
		Str("service", ServiceName).
		Logger()
}
