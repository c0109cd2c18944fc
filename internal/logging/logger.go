// Package logging configures the process-wide zerolog logger.
package logging

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type contextKey string

// RequestIDKey carries the request ID through handler contexts.
const RequestIDKey contextKey = "request_id"

// Config holds logging configuration.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, text
	Output io.Writer
}

// Setup builds a logger from cfg and installs it as the global zerolog
// logger. Text format uses the console writer for local development; the
// default is JSON.
func Setup(cfg Config) zerolog.Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Format == "text" {
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}).Level(level).With().Timestamp().Logger()
	} else {
		logger = zerolog.New(output).Level(level).With().Timestamp().Logger()
	}

	log.Logger = logger
	return logger
}

// WithContext returns the global logger enriched with the request ID when
// the context carries one.
func WithContext(ctx context.Context) *zerolog.Logger {
	builder := log.With()
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		builder = builder.Str("request_id", requestID)
	}
	logger := builder.Logger()
	return &logger
}
