package logger

import (
	"log/slog"
	"strings"
)

// processLevel is shared by every handler built by New.
var processLevel = new(slog.LevelVar)

var levelNames = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// SetLevel changes the process-wide log level. Unknown names select info.
func SetLevel(name string) {
	processLevel.Set(parseLevel(name))
}

// GetLevel returns the process-wide log level name.
func GetLevel() string {
	return strings.ToLower(processLevel.Level().String())
}

// Levels lists the level names accepted in configuration.
func Levels() []string {
	return []string{"debug", "info", "warn", "error"}
}

func parseLevel(name string) slog.Level {
	if lvl, ok := levelNames[strings.ToLower(name)]; ok {
		return lvl
	}
	return slog.LevelInfo
}
