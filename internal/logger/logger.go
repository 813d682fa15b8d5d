// Package logger provides structured logging setup for AREN.
package logger

import (
	"log/slog"
	"os"
	"strings"

	"github.com/arenlabs/aren/internal/config"
)

// asyncChanSize is the record buffer for async mode; records beyond it drop.
const asyncChanSize = 4096

// level is shared by every logger built with New so a config reload can
// adjust verbosity at runtime.
var level slog.LevelVar

// New creates a *slog.Logger from the given Logging config.
// Output is JSON to stdout with a "service" attribute on every record.
// When cfg.Async is set, records pass through a buffered AsyncHandler; the
// returned Closer flushes it on shutdown. In synchronous mode the Closer is
// a no-op.
func New(cfg config.Logging) (*slog.Logger, Closer) {
	level.Set(parseLevel(cfg.Level))

	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: &level,
	})

	closer := Closer(nopCloser{})
	if cfg.Async {
		ah := NewAsyncHandler(handler, asyncChanSize, 1)
		handler = ah
		closer = ah
	}

	return slog.New(handler).With("service", cfg.Service), closer
}

// SetLevel changes the minimum level of every logger built by New.
func SetLevel(s string) {
	level.Set(parseLevel(s))
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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
