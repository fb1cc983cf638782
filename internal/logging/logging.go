// Package logging provides zerolog-based structured logging helpers shared
// across the CLI and the accounting engine.
package logging

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Config controls how the root logger is constructed.
type Config struct {
	// Level is a zerolog level name (trace, debug, info, warn, error).
	// Unparseable values fall back to info.
	Level string

	// Format selects output encoding: "console" for human-readable output,
	// anything else for JSON.
	Format string

	// Output overrides the destination writer. Defaults to stderr.
	Output io.Writer
}

// New builds a root logger from cfg.
func New(cfg Config) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		lvl = zerolog.InfoLevel
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}

	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

// ComponentLogger returns a child logger tagged with a component name.
func ComponentLogger(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}

// FromContext returns the logger attached to ctx, or a disabled logger when
// none was attached. Engine code uses this so that library callers who do not
// care about logging pay nothing.
func FromContext(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}
