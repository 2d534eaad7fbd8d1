package infra

import (
	"log/slog"
	"os"
	"strings"
)

// NewLogger builds the application logger from config.
func NewLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLogLevel(cfg.Logging.Level),
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// ParseLogLevel maps a config string to a slog level. Unknown values
// fall back to info.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
