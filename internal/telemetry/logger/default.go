package logger

import "sync/atomic"

var processLogger atomic.Pointer[slogLogger]

func init() {
	l, _ := New(DefaultConfig())
	processLogger.Store(l.(*slogLogger))
}

// SetDefault replaces the process logger. Loggers not created by New are
// ignored.
func SetDefault(l Logger) {
	if sl, ok := l.(*slogLogger); ok {
		processLogger.Store(sl)
	}
}

// Default returns the process logger.
func Default() Logger {
	return processLogger.Load()
}

// Debug logs with the process logger.
func Debug(msg string, args ...any) { processLogger.Load().Debug(msg, args...) }

// Info logs with the process logger.
func Info(msg string, args ...any) { processLogger.Load().Info(msg, args...) }

// Warn logs with the process logger.
func Warn(msg string, args ...any) { processLogger.Load().Warn(msg, args...) }

// Error logs with the process logger.
func Error(msg string, args ...any) { processLogger.Load().Error(msg, args...) }
