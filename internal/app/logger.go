package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the process logger from the LOG_FORMAT setting:
// "json" for structured deployment output, anything else (the "pretty"
// default) for readable text during local runs. Source locations are
// always attached.
func NewLogger(cfg *Config) *slog.Logger {
	if cfg != nil && cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{AddSource: true}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{AddSource: true}))
}
