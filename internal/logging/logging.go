// SPDX-License-Identifier: MPL-2.0

// Package logging builds charmbracelet/log loggers from configuration.
package logging

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"libris-cli/internal/config"
)

// Prefix is prepended to every text-formatted log line.
const Prefix = "libris"

// New returns a logger writing to w at the configured level and format.
// An unknown level falls back to info and an unknown format to text.
func New(cfg config.LogConfig, w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix:          Prefix,
		Level:           Level(cfg.Level),
		Formatter:       Formatter(cfg.Format),
		ReportTimestamp: cfg.Format != config.LogFormatText,
		TimeFormat:      time.RFC3339,
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}

// Level maps a configured level to a log.Level.
func Level(l config.LogLevel) log.Level {
	switch l {
	case config.LogLevelDebug:
		return log.DebugLevel
	case config.LogLevelWarn:
		return log.WarnLevel
	case config.LogLevelError:
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// Formatter maps a configured format to a log.Formatter.
func Formatter(f config.LogFormat) log.Formatter {
	switch f {
	case config.LogFormatJSON:
		return log.JSONFormatter
	case config.LogFormatLogfmt:
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *log.Logger) context.Context {
	return log.WithContext(ctx, logger)
}

// FromContext returns the logger stored in ctx, or a discarding logger.
func FromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(log.ContextKey).(*log.Logger); ok && l != nil {
		return l
	}
	return Discard()
}
