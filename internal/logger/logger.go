// Package logger provides structured logging configuration for the service.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Format is the output format for logs.
type Format string

const (
	// FormatJSON outputs logs in JSON format (production default).
	FormatJSON Format = "json"
	// FormatText outputs logs in human-readable text format.
	FormatText Format = "text"
)

// New creates a structured logger based on environment configuration.
// It reads LOG_LEVEL (debug, info, warn, error; default info) and
// LOG_FORMAT (json, text; default json).
func New() *slog.Logger {
	level := logLevel()

	opts := &slog.HandlerOptions{
		Level: level,
		// Source locations are only worth the noise when the logger is
		// restricted to warnings and errors.
		AddSource: level >= slog.LevelWarn,
	}

	var handler slog.Handler
	switch logFormat() {
	case FormatText:
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

func logLevel() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func logFormat() Format {
	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "text" {
		return FormatText
	}
	return FormatJSON
}
