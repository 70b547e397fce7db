package testutil

import (
	"io"
	"log/slog"
)

// NopLogger returns a slog.Logger that discards everything, keeping test
// output free of controller and session log lines.
func NopLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
