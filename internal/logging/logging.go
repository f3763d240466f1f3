// Package logging builds the slog loggers used across codeinventory.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// quietLevel is above every standard level.
const quietLevel = slog.Level(100)

// New creates a text logger writing to w at the given level.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: quietLevel}))
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Discard()
	}
	return l
}

// LevelFromString converts a level name to a slog.Level.
// Supports: debug, info, warn, error (case-insensitive).
// Returns slog.LevelWarn for unrecognized strings.
func LevelFromString(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	case "quiet", "off":
		return quietLevel
	default:
		return slog.LevelWarn
	}
}

// LevelFromVerbosity converts CLI verbosity flags to a slog.Level.
// - verbosity=0: warn (default for CLI)
// - verbosity=1: info
// - verbosity>=2: debug
func LevelFromVerbosity(verbosity int) slog.Level {
	switch {
	case verbosity <= 0:
		return slog.LevelWarn
	case verbosity == 1:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
