package logging

import (
	"log/slog"
	"os"
	"strings"

	"github.com/lmittmann/tint"
)

// NewLogger builds a slog.Logger writing colored text to stderr.
// Unknown level strings fall back to info.
func NewLogger(levelStr string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(levelStr) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	handler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: "2006-01-02 15:04:05",
	})
	return slog.New(handler)
}
