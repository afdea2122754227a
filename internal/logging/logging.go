// Package logging builds the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// New creates a logger writing to stdout; format is "text" (colourised) or "json".
func New(level, format string) *slog.Logger {
	return slog.New(newHandler(os.Stdout, level, format))
}

func newHandler(w io.Writer, level, format string) slog.Handler {
	lvl := levelFromString(level)
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	}
	return tint.NewHandler(w, &tint.Options{
		Level:      lvl,
		TimeFormat: time.Kitchen,
		AddSource:  lvl == slog.LevelDebug,
	})
}

func levelFromString(value string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "debug":
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}
