package infra

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger aliases zerolog.Logger so packages can accept the service logger
// without importing zerolog themselves.
type Logger = zerolog.Logger

// NewLogger builds the service logger. Development runs get a human readable
// console writer at debug level; everything else writes JSON at info level.
func NewLogger(appEnv string) zerolog.Logger {
	return newLogger(os.Stdout, appEnv)
}

// NopLogger returns a logger that discards everything.
func NopLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

func newLogger(out io.Writer, appEnv string) zerolog.Logger {
	level := zerolog.InfoLevel
	if appEnv == "development" {
		level = zerolog.DebugLevel
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("service", "academy").
		Str("env", appEnv).
		Logger()
}
