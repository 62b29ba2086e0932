// Package logging provides structured logger construction, the buffered
// log sink used by the command lifecycle, and context propagation, all on
// the standard library slog package.
//
// Logger construction:
//
//	logger := logging.New("info", "text", os.Stderr)
//
// Levels follow the npm log names and map onto slog levels:
//
//	silly(-8) verbose(-4) info(0) notice(2) warn(4) error(8) silent(12)
//
// Context propagation (used to hand the lifecycle logger to commands):
//
//	ctx = logging.WithLogger(ctx, logger)
//	logger = logging.FromContext(ctx)
//
// Error logging convention:
//
//	logger.ErrorContext(ctx, "script failed",
//	    slog.String("package", pkg.Name),
//	    slog.Any("error", err),
//	)
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// Levels beyond the four slog defines.
const (
	LevelSilly   = slog.Level(-8)
	LevelVerbose = slog.LevelDebug
	LevelInfo    = slog.LevelInfo
	LevelNotice  = slog.Level(2)
	LevelWarn    = slog.LevelWarn
	LevelError   = slog.LevelError
	LevelSilent  = slog.Level(12)
)

// contextKey is the unexported key type for storing loggers in context.
type contextKey struct{}

// New creates a configured *slog.Logger.
//
// The level parameter sets the minimum log level (see ParseLevel).
// The format parameter selects the output handler: "json" uses
// slog.NewJSONHandler; all other values use slog.NewTextHandler.
//
// At verbose level and below, source code location is included.
func New(level, format string, w io.Writer) *slog.Logger {
	return slog.New(newHandler(ParseLevel(level), format, w))
}

func newHandler(level slog.Leveler, format string, w io.Writer) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:       level,
		AddSource:   level.Level() <= LevelVerbose,
		ReplaceAttr: chainReplace(levelNames, newRedactAttr()),
	}
	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// WithLogger returns a new context with the given logger stored in it.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext extracts a *slog.Logger from the context.
// If no logger is stored, it returns slog.Default().
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// ParseLevel converts a level name to a slog.Level.
// Unrecognized values default to info. "debug" is accepted as verbose.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "silly":
		return LevelSilly
	case "verbose", "debug":
		return LevelVerbose
	case "info":
		return LevelInfo
	case "notice", "success":
		return LevelNotice
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	case "silent":
		return LevelSilent
	default:
		return LevelInfo
	}
}

// LevelName is the inverse of ParseLevel for the named levels.
func LevelName(level slog.Level) string {
	switch {
	case level <= LevelSilly:
		return "silly"
	case level <= LevelVerbose:
		return "verbose"
	case level < LevelNotice:
		return "info"
	case level < LevelWarn:
		return "notice"
	case level < LevelError:
		return "warn"
	case level < LevelSilent:
		return "error"
	default:
		return "silent"
	}
}

// levelNames renders the level attribute with its npm name.
func levelNames(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && a.Key == slog.LevelKey {
		if lvl, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(LevelName(lvl))
		}
	}
	return a
}

func chainReplace(fns ...func([]string, slog.Attr) slog.Attr) func([]string, slog.Attr) slog.Attr {
	return func(groups []string, a slog.Attr) slog.Attr {
		for _, fn := range fns {
			a = fn(groups, a)
		}
		return a
	}
}
