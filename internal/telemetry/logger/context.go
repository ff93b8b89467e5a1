package logger

import (
	"context"
	"log/slog"

	"github.com/oklog/ulid/v2"
)

// contextKey is a type for context keys to avoid collisions.
type contextKey string

const (
	loggerKey      contextKey = "slotkv.logger"
	operationIDKey contextKey = "slotkv.operation_id"
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext extracts the logger from context.
// Returns slog.Default() if none is set.
func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}

// WithOperationID tags the context with a fresh operation ID, one per CLI
// command or watch cycle.
func WithOperationID(ctx context.Context) context.Context {
	return context.WithValue(ctx, operationIDKey, ulid.Make().String())
}

// OperationIDFromContext extracts the operation ID from context.
func OperationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(operationIDKey).(string); ok {
		return id
	}
	return ""
}

// L is FromContext enriched with the operation ID.
func L(ctx context.Context) *slog.Logger {
	l := FromContext(ctx)
	if id := OperationIDFromContext(ctx); id != "" {
		l = l.With("op_id", id)
	}
	return l
}
