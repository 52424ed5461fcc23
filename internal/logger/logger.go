package logger

import (
	"log/slog"
	"os"
)

// New builds the process logger: JSON for log shippers in prod, readable
// text elsewhere. Every record carries the environment so aggregated
// streams from several stages stay tellable apart.
func New(env string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelDebug}
	var h slog.Handler
	if env == "prod" {
		opts.Level = slog.LevelInfo
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(h).With(slog.String("env", env))
}
