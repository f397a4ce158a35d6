// Package log provides structured logging for the corpus service.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pondside/corpus/internal/config"
)

// NewLogger creates a slog.Logger based on configuration. The pretty format
// uses a coloured terminal handler; json uses slog's JSON handler.
func NewLogger(cfg config.AppConfig) *slog.Logger {
	return NewLoggerWithWriter(os.Stdout, cfg.LogFormat(), cfg.LogLevel())
}

// NewLoggerWithWriter creates a logger that writes to the given writer.
func NewLoggerWithWriter(w io.Writer, format config.LogFormat, level string) *slog.Logger {
	lvl := parseLevel(level)

	var handler slog.Handler
	switch format {
	case config.LogFormatJSON:
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	default:
		handler = newTerminalHandler(w, &slog.HandlerOptions{Level: lvl})
	}

	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
