package logger

import (
	"context"
	"fmt"
	"log/slog"
)

type ctxKey struct{}

// Default is the package-level logger used by tests and early-init
// code paths that run before a request-scoped Logger exists.
var Default Logger = NewLogger()

var defaultLogger = Default

// WithLogger returns a copy of ctx carrying l, retrievable via
// FromContext and the package-level Debug/Info/Warn/Error helpers.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the Logger attached to ctx, or a default
// stdout/text logger if none was attached.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(ctxKey{}).(Logger); ok {
		return l
	}
	return defaultLogger
}

func Debug(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).logAt(slog.LevelDebug, msg, args)
}

func Info(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).logAt(slog.LevelInfo, msg, args)
}

func Warn(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).logAt(slog.LevelWarn, msg, args)
}

func Error(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).logAt(slog.LevelError, msg, args)
}

func Debugf(ctx context.Context, format string, args ...any) {
	FromContext(ctx).logAt(slog.LevelDebug, fmt.Sprintf(format, args...), nil)
}

func Infof(ctx context.Context, format string, args ...any) {
	FromContext(ctx).logAt(slog.LevelInfo, fmt.Sprintf(format, args...), nil)
}

func Warnf(ctx context.Context, format string, args ...any) {
	FromContext(ctx).logAt(slog.LevelWarn, fmt.Sprintf(format, args...), nil)
}

func Errorf(ctx context.Context, format string, args ...any) {
	FromContext(ctx).logAt(slog.LevelError, fmt.Sprintf(format, args...), nil)
}
