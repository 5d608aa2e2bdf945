package main

import (
	"log/slog"
	"os"

	"github.com/rikkicasupanan/portfolio/cmd/website/internal/configuration"
)

/*
setupLogger installs the default logger. Development builds log text,
everything else logs JSON.
*/
func setupLogger(config *configuration.Config, version string) {
	var (
		handler slog.Handler
	)

	options := &slog.HandlerOptions{
		Level: parseLogLevel(config.LogLevel),
	}

	if version == "development" {
		handler = slog.NewTextHandler(os.Stdout, options)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, options)
	}

	slog.SetDefault(slog.New(handler).With(slog.String("version", version)))
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
