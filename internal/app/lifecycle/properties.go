package lifecycle

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/jsamuelsen11/lernago/internal/platform/logging"
)

// ExecOpts are the defaults for child processes started by commands.
type ExecOpts struct {
	// Dir is the project root.
	Dir string
	// MaxBuffer caps captured output in bytes. Zero means unlimited.
	MaxBuffer int
}

func (c *Command) configureProperties(ctx context.Context) error {
	c.concurrency = c.options.Int("concurrency")
	if c.concurrency == 0 {
		c.concurrency = runtime.NumCPU()
	}
	c.concurrency = max(1, c.concurrency)

	c.toposort = !c.options.Exists("sort") || c.options.Bool("sort")

	c.execOpts = ExecOpts{
		Dir:       c.project.RootPath,
		MaxBuffer: max(0, c.options.Int("maxBuffer")),
	}

	c.logger.Log(ctx, logging.LevelSilly, "properties",
		slog.Int("concurrency", c.concurrency),
		slog.Bool("toposort", c.toposort),
		slog.String("dir", c.execOpts.Dir),
	)
	return nil
}

// Concurrency returns how many packages may be processed at once, at
// least 1. Unset, zero and non-numeric values mean the number of CPUs.
func (c *Command) Concurrency() int { return c.concurrency }

// Toposort reports whether packages run in dependency order. True unless
// the "sort" option is explicitly false.
func (c *Command) Toposort() bool { return c.toposort }

// ExecOpts returns the child process defaults.
func (c *Command) ExecOpts() ExecOpts { return c.execOpts }
