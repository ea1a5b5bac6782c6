// Package logger provides the structured logging facade used across
// taskdog: a thin wrapper over log/slog that keeps the reported
// source location pinned to the caller's call site rather than this
// package's own wrapper frames.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	slogmulti "github.com/samber/slog-multi"
	"gopkg.in/natefinch/lumberjack.v2"
)

// callerSkip is the runtime.Callers depth that lands on the frame of
// the code that called the exported method or package function which
// invoked logAt. Every
// entry point (Logger method, or a package-level ctx-based helper)
// calls logAt directly, so this constant never needs to vary by path.
const callerSkip = 3

// Logger is the structured logging interface used throughout taskdog.
// The unexported logAt method keeps it implementable only within this
// package, which is what lets callerSkip stay a single constant.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)

	With(args ...any) Logger
	WithGroup(name string) Logger

	logAt(level slog.Level, msg string, args []any)
}

type config struct {
	debug   bool
	format  string
	writer  io.Writer
	quiet   bool
	logFile io.Writer
}

// Option configures a Logger built by NewLogger.
type Option func(*config)

// WithDebug enables debug-level logging and source-location tracking.
func WithDebug() Option { return func(c *config) { c.debug = true } }

// WithFormat selects "text" (default) or "json" output.
func WithFormat(format string) Option { return func(c *config) { c.format = format } }

// WithWriter sets the destination for console output. Defaults to
// os.Stdout.
func WithWriter(w io.Writer) Option { return func(c *config) { c.writer = w } }

// WithQuiet suppresses the console writer when a log file is also
// configured, so output goes to the file alone.
func WithQuiet() Option { return func(c *config) { c.quiet = true } }

// WithLogFile additionally (or, under WithQuiet, exclusively) writes
// log records to f.
func WithLogFile(f *os.File) Option { return func(c *config) { c.logFile = f } }

// WithRotatingLogFile additionally (or, under WithQuiet, exclusively)
// writes log records to a lumberjack-managed file at path, rotated
// once it exceeds maxSizeMB.
func WithRotatingLogFile(path string, maxSizeMB int) Option {
	return func(c *config) {
		c.logFile = &lumberjack.Logger{
			Filename: path,
			MaxSize:  maxSizeMB,
			Compress: true,
		}
	}
}

type logger struct {
	handler slog.Handler
}

// NewLogger builds a Logger from the given options.
func NewLogger(opts ...Option) Logger {
	cfg := &config{format: "text", writer: os.Stdout}
	for _, opt := range opts {
		opt(cfg)
	}

	level := slog.LevelInfo
	if cfg.debug {
		level = slog.LevelDebug
	}
	hopts := &slog.HandlerOptions{Level: level, AddSource: cfg.debug}

	newHandler := func(dst io.Writer) slog.Handler {
		if cfg.format == "json" {
			return slog.NewJSONHandler(dst, hopts)
		}
		return slog.NewTextHandler(dst, hopts)
	}

	var handler slog.Handler
	switch {
	case cfg.logFile != nil && cfg.quiet:
		handler = newHandler(cfg.logFile)
	case cfg.logFile != nil:
		handler = slogmulti.Fanout(newHandler(cfg.writer), newHandler(cfg.logFile))
	default:
		handler = newHandler(cfg.writer)
	}

	return &logger{handler: handler}
}

func (l *logger) logAt(level slog.Level, msg string, args []any) {
	ctx := context.Background()
	if !l.handler.Enabled(ctx, level) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(callerSkip, pcs[:])
	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.Add(args...)
	_ = l.handler.Handle(ctx, r)
}

func (l *logger) Debug(msg string, args ...any) { l.logAt(slog.LevelDebug, msg, args) }
func (l *logger) Info(msg string, args ...any)  { l.logAt(slog.LevelInfo, msg, args) }
func (l *logger) Warn(msg string, args ...any)  { l.logAt(slog.LevelWarn, msg, args) }
func (l *logger) Error(msg string, args ...any) { l.logAt(slog.LevelError, msg, args) }

func (l *logger) Debugf(format string, args ...any) {
	l.logAt(slog.LevelDebug, fmt.Sprintf(format, args...), nil)
}

func (l *logger) Infof(format string, args ...any) {
	l.logAt(slog.LevelInfo, fmt.Sprintf(format, args...), nil)
}

func (l *logger) Warnf(format string, args ...any) {
	l.logAt(slog.LevelWarn, fmt.Sprintf(format, args...), nil)
}

func (l *logger) Errorf(format string, args ...any) {
	l.logAt(slog.LevelError, fmt.Sprintf(format, args...), nil)
}

func (l *logger) With(args ...any) Logger {
	return &logger{handler: l.handler.WithAttrs(argsToAttrs(args))}
}

func (l *logger) WithGroup(name string) Logger {
	return &logger{handler: l.handler.WithGroup(name)}
}

// argsToAttrs reuses slog.Record's own key/value pairing so With's
// argument handling matches Info/Debug/etc exactly (alternating
// key-value pairs, or a bare slog.Attr/slog.Group).
func argsToAttrs(args []any) []slog.Attr {
	r := slog.NewRecord(time.Time{}, slog.LevelInfo, "", 0)
	r.Add(args...)
	attrs := make([]slog.Attr, 0, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})
	return attrs
}
