// Package attr provides slog attribute helpers with consistent keys.
package attr

import (
	"context"
	"log/slog"
	"time"
)

type ctxKey string

// CorrelationIDKey is the context key holding the message correlation ID.
const CorrelationIDKey ctxKey = "correlation_id"

// WithCorrelationID stores id on ctx.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, id)
}

// ExtractCorrelationID returns the correlation ID attribute for ctx, empty
// when none is set.
func ExtractCorrelationID(ctx context.Context) slog.Attr {
	id, _ := ctx.Value(CorrelationIDKey).(string)
	return slog.String("correlation_id", id)
}

func String(key, value string) slog.Attr { return slog.String(key, value) }

func Int(key string, value int) slog.Attr { return slog.Int(key, value) }

func Int64(key string, value int64) slog.Attr { return slog.Int64(key, value) }

func Uint32(key string, value uint32) slog.Attr { return slog.Uint64(key, uint64(value)) }

func Bool(key string, value bool) slog.Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) slog.Attr { return slog.Duration(key, value) }

// Error renders err under the "error" key.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}
