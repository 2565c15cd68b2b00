// Package logging carries a request-scoped slog.Logger through contexts and
// maps configured level names onto slog levels.
package logging

import (
	"context"
	"log/slog"
	"strings"
)

type loggerKey struct{}

// ContextWithLogger attaches logger to ctx so downstream handlers and
// services log with the request attributes already bound. A nil logger
// leaves ctx untouched.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if ctx == nil || logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger attached by ContextWithLogger, or nil when
// the context carries none.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return nil
	}
	logger, _ := ctx.Value(loggerKey{}).(*slog.Logger)
	return logger
}

// ParseLevel maps a configured level name onto a slog.Level. Unrecognised
// names fall back to info so a typo in the environment never silences logs.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
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
