// Package logger configures the process-wide zerolog logger: a colorized
// console writer by default, switchable to JSON, with a helper for scoping
// a logger to the single peer a session is talking to.
package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Log is the base logger every other logger in the process derives from.
var Log zerolog.Logger

func init() {
	console := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}

	Log = zerolog.New(console).
		With().
		Timestamp().
		Logger()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// SetJSONOutput replaces the console writer with plain JSON lines, for
// running under a log collector instead of a terminal.
func SetJSONOutput() {
	Log = zerolog.New(os.Stdout).
		With().
		Timestamp().
		Logger()
}

// SetLevel parses one of "debug", "info", "warn", "error" and applies it as
// the global log level, defaulting to Info on an unrecognized value.
func SetLevel(level string) {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}

// SessionLogger returns Log scoped with the address of the peer a session
// is currently talking to, so every line it emits carries that context.
func SessionLogger(addr string) zerolog.Logger {
	return Log.With().
		Str("peer", addr).
		Logger()
}
