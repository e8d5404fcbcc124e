package logger

import (
	"log/slog"
	"os"
)

// New returns the process logger. Text handler to stdout; structured
// attributes carry request ids and accounts.
func New() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
