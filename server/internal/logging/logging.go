// Package logging builds the server's slog logger.
//
// Two output formats are supported: "json" (slog's JSON handler, one object
// per line, for log shippers) and "text" (charmbracelet/log, colourised and
// human-readable, for local development). The level can be changed at
// runtime with SetLevel, which is how config reloads take effect.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

// Logger is an *slog.Logger whose level can be changed after construction.
type Logger struct {
	*slog.Logger

	level   *slog.LevelVar
	console *charmlog.Logger // nil unless format is "text"
}

// New creates a Logger writing to w in the given format ("json" or "text")
// at the given level ("debug", "info", "warn" or "error").
func New(w io.Writer, format, level string) (*Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	l := &Logger{level: new(slog.LevelVar)}
	l.level.Set(lvl)

	switch format {
	case "json", "":
		l.Logger = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: l.level}))
	case "text":
		l.console = charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmlog.Level(lvl),
			ReportTimestamp: true,
			Formatter:       charmlog.TextFormatter,
		})
		l.Logger = slog.New(l.console)
	default:
		return nil, fmt.Errorf("logging: unknown format %q: want json|text", format)
	}
	return l, nil
}

// SetLevel changes the minimum level of every record emitted from now on.
func (l *Logger) SetLevel(level string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	l.level.Set(lvl)
	if l.console != nil {
		l.console.SetLevel(charmlog.Level(lvl))
	}
	return nil
}

// Level returns the current minimum level.
func (l *Logger) Level() slog.Level {
	return l.level.Level()
}

// ParseLevel converts a config level name to an slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("logging: unknown level %q: want debug|info|warn|error", s)
	}
}
