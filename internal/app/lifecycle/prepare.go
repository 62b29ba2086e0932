package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jsamuelsen11/lernago/internal/domain"
	"github.com/jsamuelsen11/lernago/internal/domain/monorepo"
	"github.com/jsamuelsen11/lernago/internal/platform/logging"
)

// runPreparations loads the packages and builds the package graph.
func (c *Command) runPreparations(ctx context.Context) error {
	if !c.composed && c.project.IsIndependent() {
		c.logger.InfoContext(ctx, "versioning independent")
	}
	if !c.composed && c.options.Bool("ci") {
		c.logger.InfoContext(ctx, "ci enabled")
	}

	if c.packages == nil {
		return domain.Unclassifiedf(domain.CodeUnclassified, "no package loader configured")
	}
	packages, err := c.packages.LoadPackages(ctx, c.project)
	if err != nil {
		return fmt.Errorf("loading packages: %w", err)
	}

	c.graph = monorepo.NewGraph(packages)
	for _, cycle := range c.graph.Cycles() {
		c.logger.WarnContext(ctx, "dependency cycle detected",
			slog.String("cycle", strings.Join(cycle, " -> ")))
	}
	c.logger.Log(ctx, logging.LevelVerbose, "packages loaded", slog.Int("count", c.graph.Len()))
	return nil
}
