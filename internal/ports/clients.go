package ports

import (
	"context"

	"github.com/jsamuelsen11/lernago/internal/domain/monorepo"
)

// ProjectLoader builds the project handle for a working directory.
// Implemented by the fsrepo adapter; called by the lifecycle's first stage.
type ProjectLoader interface {
	// LoadProject locates the configuration file by searching upward from
	// cwd and parses the root manifest. A missing configuration file or
	// manifest is not an error: the corresponding Project field stays nil
	// so validation can report it with a classified code.
	LoadProject(ctx context.Context, cwd string) (*monorepo.Project, error)
}

// PackageLoader discovers the packages that belong to a project.
// Implemented by the fsrepo adapter; called during preparations.
type PackageLoader interface {
	// LoadPackages returns every package matched by the project's package
	// globs. Packages outside the project root are never returned.
	LoadPackages(ctx context.Context, project *monorepo.Project) ([]*monorepo.Package, error)
}

// GitChecker reports whether git is usable for a directory.
// Implemented by the git adapter; called by the validator.
type GitChecker interface {
	// IsRepository reports whether dir is inside a git working tree and the
	// git binary could be run.
	IsRepository(dir string) bool
}
