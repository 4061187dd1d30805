// Package logging builds the single zerolog.Logger the scanner threads
// through context.Context for the lifetime of a run, per
// gphotos-321sync's common/logging_config.py: three output formats and
// four levels, with an optional tee to a log file.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gphotos321sync/mediascanner/internal/config"
)

// New builds a zerolog.Logger from a validated LoggingConfig.
func New(cfg config.LoggingConfig) (zerolog.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return zerolog.Logger{}, err
	}

	var writer io.Writer
	switch cfg.Format {
	case "simple":
		writer = zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true, PartsOrder: []string{
			zerolog.LevelFieldName, zerolog.MessageFieldName,
		}}
	case "detailed":
		writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	default: // "json"
		writer = os.Stderr
	}

	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return zerolog.Logger{}, err
		}
		writer = zerolog.MultiLevelWriter(writer, f)
	}

	logger := zerolog.New(writer).Level(level).With().Timestamp().Logger()
	if cfg.Format == "detailed" {
		logger = logger.With().Caller().Logger()
	}
	return logger, nil
}

func parseLevel(level string) (zerolog.Level, error) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zerolog.DebugLevel, nil
	case "INFO":
		return zerolog.InfoLevel, nil
	case "WARNING":
		return zerolog.WarnLevel, nil
	case "ERROR":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.InfoLevel, nil
	}
}

type ctxKey struct{}

// WithContext attaches logger to ctx, the same pattern zerolog itself
// provides via log.Logger.WithContext, kept explicit here so every package
// retrieves it the same way instead of reaching for the global
// zerolog/log.Logger singleton (spec §9: "pass it explicitly via a context
// value to workers").
func WithContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext retrieves the logger attached by WithContext, or a disabled
// logger if none was attached.
func FromContext(ctx context.Context) zerolog.Logger {
	if logger, ok := ctx.Value(ctxKey{}).(zerolog.Logger); ok {
		return logger
	}
	return zerolog.Nop()
}
