package privacylog

import (
	"io"
	"log/slog"
)

// New builds the process logger: text or JSON output, debug events only when debug
// is set, always behind the sanitizing handler.
func New(w io.Writer, json, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if json {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(WrapHandler(h))
}

// Discard is a logger for callers that did not supply one.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
