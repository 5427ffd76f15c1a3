// Package logx backs the glog.Logger contract with a log/slog text handler.
package logx

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	glog "github.com/goliatone/go-logger/glog"
)

// LevelTrace sits below slog.LevelDebug.
const LevelTrace = slog.Level(-8)

// Logger adapts *slog.Logger to glog.Logger.
type Logger struct {
	l   *slog.Logger
	ctx context.Context
}

var _ glog.Logger = (*Logger)(nil)

// ParseLevel converts string (trace|debug|info|warn|error) to slog.Level. Unknown → info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a logger writing to stderr with the given level string.
func New(level string) *Logger {
	return NewWithWriter(os.Stderr, level)
}

// NewWithWriter creates a logger writing text records to w.
func NewWithWriter(w io.Writer, level string) *Logger {
	return Wrap(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})))
}

// Wrap adapts an existing slog logger.
func Wrap(l *slog.Logger) *Logger {
	if l == nil {
		l = slog.Default()
	}
	return &Logger{l: l, ctx: context.Background()}
}

// Slog exposes the underlying logger, e.g. for slog.SetDefault.
func (x *Logger) Slog() *slog.Logger { return x.l }

func (x *Logger) Trace(msg string, args ...any) { x.l.Log(x.ctx, LevelTrace, msg, args...) }
func (x *Logger) Debug(msg string, args ...any) { x.l.Log(x.ctx, slog.LevelDebug, msg, args...) }
func (x *Logger) Info(msg string, args ...any)  { x.l.Log(x.ctx, slog.LevelInfo, msg, args...) }
func (x *Logger) Warn(msg string, args ...any)  { x.l.Log(x.ctx, slog.LevelWarn, msg, args...) }
func (x *Logger) Error(msg string, args ...any) { x.l.Log(x.ctx, slog.LevelError, msg, args...) }

// Fatal logs at error level and exits the process.
func (x *Logger) Fatal(msg string, args ...any) {
	x.l.Log(x.ctx, slog.LevelError, msg, args...)
	os.Exit(1)
}

// WithContext returns a logger that passes ctx to the handler.
func (x *Logger) WithContext(ctx context.Context) glog.Logger {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Logger{l: x.l, ctx: ctx}
}

// With returns a logger that always includes the given attributes.
func (x *Logger) With(args ...any) *Logger {
	return &Logger{l: x.l.With(args...), ctx: x.ctx}
}
