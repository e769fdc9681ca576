// Package logger configures log/slog and carries request-scoped fields
// through context.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// ContextKey is the type of context keys read by FromContext.
type ContextKey string

const (
	SessionIDKey ContextKey = "session_id"
	RequestIDKey ContextKey = "request_id"
	TraceIDKey   ContextKey = "trace_id"
)

var (
	mu            sync.RWMutex
	defaultLogger *slog.Logger
)

// Init builds the process logger and installs it as slog's default.
// format is "json" or "text"; w defaults to stderr.
func Init(level, format string, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	l := slog.New(handler)
	mu.Lock()
	defaultLogger = l
	mu.Unlock()
	slog.SetDefault(l)
	return l
}

// ParseLevel maps a level name to slog.Level; unknown names mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// Default returns the logger installed by Init, or slog's default.
func Default() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if defaultLogger == nil {
		return slog.Default()
	}
	return defaultLogger
}

// WithSessionID returns ctx carrying the session id for log enrichment.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, SessionIDKey, id)
}

// WithRequestID returns ctx carrying the request id for log enrichment.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// FromContext returns the default logger enriched with any ids found in ctx.
func FromContext(ctx context.Context) *slog.Logger {
	return Enrich(ctx, Default())
}

// Enrich adds the ids found in ctx to l.
func Enrich(ctx context.Context, l *slog.Logger) *slog.Logger {
	for _, key := range []ContextKey{SessionIDKey, RequestIDKey, TraceIDKey} {
		if v := ctx.Value(key); v != nil {
			l = l.With(string(key), v)
		}
	}
	return l
}
