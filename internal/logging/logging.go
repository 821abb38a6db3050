// Package logging configures the process-wide slog logger for the CLI.
//
// Diagnostics always go to stderr so stdout stays parseable (DOT, JSON,
// compilation databases). The recording core and the shim never log:
// their only output is the fatal diagnostic printed by the top-level
// caller.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Setup installs the default logger. Verbose lowers the level from Info
// to Debug.
func Setup(verbose bool) {
	SetupWriter(os.Stderr, verbose)
}

// SetupWriter is Setup with an explicit destination. Tests pass a buffer.
func SetupWriter(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

// Silence discards all log output. Tests use it to keep command output
// assertions clean.
func Silence() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
