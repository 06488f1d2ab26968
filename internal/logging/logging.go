// Package logging builds the application's slog logger from a level string.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// New returns a text logger writing to stderr at the given level. Accepted
// levels are the ones the CLI exposes: debug, info, error.
func New(level string) (*slog.Logger, error) {
	return NewWithOutput(level, os.Stderr)
}

// NewWithOutput is New with an explicit output writer, for tests.
func NewWithOutput(level string, out io.Writer) (*slog.Logger, error) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "error":
		lvl = slog.LevelError
	default:
		return nil, fmt.Errorf("unsupported log level %q", level)
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler), nil
}
