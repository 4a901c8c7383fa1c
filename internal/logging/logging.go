// Package logging provides a structured logger factory for the embedded
// engine library.
//
// It configures [log/slog] with a JSON handler and a configurable
// minimum level. The library is loaded into a foreign host, so the
// default level is high enough to keep stderr quiet unless something is
// actually wrong.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New creates a [slog.Logger] that writes JSON to stderr at the given
// level. Accepted level strings (case-insensitive): "debug", "info",
// "warn", "error". An empty string defaults to "error".
func New(level string) *slog.Logger {
	return NewWithWriter(level, os.Stderr)
}

// NewWithWriter creates a [slog.Logger] writing JSON to w at the given
// level.
func NewWithWriter(level string, w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	}))
}

// ParseLevel converts a level string to a [slog.Level]. Empty and
// unrecognised values resolve to [slog.LevelError]: inside a foreign
// host, logging anything below an actual failure must be opted into,
// never stumbled into through a typo in an environment variable.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
