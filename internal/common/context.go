package common

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	runIDKey
)

// WithRequestID tags ctx with the id of the inbound API request.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithRunID tags ctx with the extraction run being processed.
func WithRunID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, runIDKey, id)
}

func RunID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(runIDKey).(uuid.UUID)
	return id, ok
}

// Logger returns base annotated with the request and run ids carried by ctx.
func Logger(ctx context.Context, base *slog.Logger) *slog.Logger {
	if id := RequestID(ctx); id != "" {
		base = base.With("request_id", id)
	}
	if id, ok := RunID(ctx); ok {
		base = base.With("run_id", id.String())
	}
	return base
}
