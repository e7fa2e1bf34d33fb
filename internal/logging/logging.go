package logging

import (
	"log/slog"
	"os"
)

// Init configures the process-wide logger from the LOG_LEVEL environment
// variable and returns it. Defaults to info: the relay is chatty at debug
// level while players are moving.
func Init() *slog.Logger {
	level := slog.LevelInfo

	if l, ok := os.LookupEnv("LOG_LEVEL"); ok {
		switch l {
		case "dev", "development", "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn", "warning":
			level = slog.LevelWarn
		case "error", "production", "prod":
			level = slog.LevelError
		}
	}

	logger := slog.New(
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		}),
	)
	slog.SetDefault(logger)
	return logger
}
