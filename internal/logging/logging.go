package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Output io.Writer
}

// New constructs a slog logger with the console handler. An empty level
// means info; output defaults to stderr so tool stdout stays clean for
// tables and prompts.
func New(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	levelVar := new(slog.LevelVar)
	levelVar.Set(parseLevel(opts.Level))
	return slog.New(newConsoleHandler(out, levelVar))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
