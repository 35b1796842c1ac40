package testutil

import (
	"io"
	"log/slog"
)

// NopLogger returns a logger that discards all output. The service and
// API suites use it to keep structured request logs out of test output.
func NopLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
