// Package logging builds net-sync's structured logger, the way
// ws/internal/single/monitoring/logger.go builds the teacher's.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds a zerolog.Logger at the given level ("debug", "info", "warn",
// "error") and format ("json" or "console").
func New(level, format string) zerolog.Logger {
	var output io.Writer = os.Stdout

	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)

	if format == "console" {
		output = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	return zerolog.New(output).
		With().
		Timestamp().
		Str("service", "net-sync").
		Logger()
}
