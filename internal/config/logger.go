package config

import (
	"io"
	"log/slog"
)

// NewLogger returns the process logger: human-readable text at debug level in
// development, JSON at info level in production.
func NewLogger(env string, w io.Writer) *slog.Logger {
	if env == EnvProduction {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
