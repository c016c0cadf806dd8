// Package ctxlog passes a *slog.Logger through a context.Context so
// request-scoped attributes survive across package boundaries.
package ctxlog

import (
	"context"
	"log/slog"
)

// key is an unexported type so the context key cannot collide with keys
// from other packages.
type key struct{}

var loggerKey = key{}

// With returns a new context carrying the provided logger.
func With(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// From extracts the logger from a context. If the context carries none,
// the process-wide default logger is returned.
func From(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}
