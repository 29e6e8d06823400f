package logger

import (
	"context"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
)

// Logger is the application logger interface.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger

	// WithContext binds ctx to the returned logger. Request and user IDs
	// stored in ctx are added to every record it writes.
	WithContext(ctx context.Context) Logger
}

// Config holds logger configuration.
type Config struct {
	Level  string // debug, info, warn or error
	Format string // json or text
	Output io.Writer

	AddSource bool
}

// DefaultConfig returns JSON at info level on stderr.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "json", Output: os.Stderr}
}

// New builds a logger from cfg. The configured level becomes the
// process-wide level.
func New(cfg Config) (Logger, error) {
	SetLevel(cfg.Level)

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := &slog.HandlerOptions{
		Level:     processLevel,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			return redactSensitive(a)
		},
	}

	var base slog.Handler
	if f := strings.ToLower(cfg.Format); f == "text" || f == "console" {
		base = slog.NewTextHandler(out, opts)
	} else {
		base = slog.NewJSONHandler(out, opts)
	}
	return newSlogLogger(slog.New(contextHandler{base}), context.Background()), nil
}

type slogLogger struct {
	sl  *slog.Logger
	ctx context.Context
}

func newSlogLogger(sl *slog.Logger, ctx context.Context) *slogLogger {
	return &slogLogger{sl: sl, ctx: ctx}
}

func (l *slogLogger) Debug(msg string, args ...any) { l.log(slog.LevelDebug, msg, args) }
func (l *slogLogger) Info(msg string, args ...any)  { l.log(slog.LevelInfo, msg, args) }
func (l *slogLogger) Warn(msg string, args ...any)  { l.log(slog.LevelWarn, msg, args) }
func (l *slogLogger) Error(msg string, args ...any) { l.log(slog.LevelError, msg, args) }

func (l *slogLogger) log(lvl slog.Level, msg string, args []any) {
	l.sl.Log(l.ctx, lvl, msg, args...)
}

func (l *slogLogger) With(args ...any) Logger {
	return newSlogLogger(l.sl.With(args...), l.ctx)
}

func (l *slogLogger) WithContext(ctx context.Context) Logger {
	if ctx == nil {
		ctx = context.Background()
	}
	return newSlogLogger(l.sl, ctx)
}

// StdLogger adapts l into a *log.Logger that writes at error level, for
// http.Server.ErrorLog and similar. Loggers from other packages fall back
// to the process logger's handler.
func StdLogger(l Logger) *log.Logger {
	sl, ok := l.(*slogLogger)
	if !ok {
		sl = processLogger.Load()
	}
	return slog.NewLogLogger(sl.sl.Handler(), slog.LevelError)
}
