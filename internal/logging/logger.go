package logging

import (
	"io"
	"log/slog"
	"os"
)

// Options configures the application logger.
type Options struct {
	// Level is a slog level name (debug, info, warn, error). Unknown names mean info.
	Level string
	// JSON selects the JSON handler instead of text.
	JSON bool
	// Output defaults to Stderr so Stdout stays free for replies and JSON-RPC.
	Output io.Writer
}

// New creates a configured application logger.
// It standardizes common keys (e.g., "error" -> "err").
func New(opts Options) *slog.Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	handlerOpts := &slog.HandlerOptions{
		Level: ParseLevel(opts.Level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}
	if opts.JSON {
		return slog.New(slog.NewJSONHandler(out, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(out, handlerOpts))
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ParseLevel maps a level name (debug, info, warn, error) to a slog.Level.
// Unknown names fall back to info.
func ParseLevel(name string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return level
}
