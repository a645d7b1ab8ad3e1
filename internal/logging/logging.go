// Package logging provides leveled, structured logging gated by the
// PLACECORE_DEBUG environment variable, mirroring the teacher's
// internal/debug package's enabled/verbose gating idiom
// (internal/debug/debug.go's BD_DEBUG check) but built on log/slog for
// structured key/value fields, since no third-party structured logger
// appears anywhere in the retrieval pack.
package logging

import (
	"context"
	"log/slog"
	"os"
	"sync"
)

var (
	once    sync.Once
	logger  *slog.Logger
	enabled = os.Getenv("PLACECORE_DEBUG") != ""
)

// Enabled reports whether debug-level logging is turned on.
func Enabled() bool {
	return enabled
}

// SetEnabled overrides the PLACECORE_DEBUG gate, mainly for tests.
func SetEnabled(v bool) {
	enabled = v
	once = sync.Once{}
	logger = nil
}

func base() *slog.Logger {
	once.Do(func() {
		level := slog.LevelInfo
		if enabled {
			level = slog.LevelDebug
		}
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
		logger = slog.New(handler)
	})
	return logger
}

// Debugf logs at debug level with key/value pairs. Visible only when
// PLACECORE_DEBUG is set.
func Debugf(ctx context.Context, msg string, kv ...any) {
	base().DebugContext(ctx, msg, kv...)
}

// Infof logs at info level with key/value pairs.
func Infof(ctx context.Context, msg string, kv ...any) {
	base().InfoContext(ctx, msg, kv...)
}

// Warnf logs at warn level with key/value pairs.
func Warnf(ctx context.Context, msg string, kv ...any) {
	base().WarnContext(ctx, msg, kv...)
}

// Errorf logs at error level with key/value pairs.
func Errorf(ctx context.Context, msg string, kv ...any) {
	base().ErrorContext(ctx, msg, kv...)
}

// With returns a logger with the given key/value pairs attached to
// every subsequent record, for a call site that wants to avoid
// repeating fields (e.g. a request or job id).
func With(kv ...any) *slog.Logger {
	return base().With(kv...)
}
