package lifecycle

import (
	"context"

	"github.com/jsamuelsen11/lernago/internal/domain"
)

// runValidations checks the project against the command's requirements,
// stopping at the first failure. The repair command skips them.
func (c *Command) runValidations(_ context.Context) error {
	if c.name == RepairCommand {
		return nil
	}

	if requiresGit(c.handler) || c.options.Exists("since") {
		if c.git == nil || !c.git.IsRepository(c.project.RootPath) {
			return domain.NewValidationError(domain.CodeNoGit,
				"The git binary was not found, or this is not a git repository.")
		}
	}

	if c.project.Manifest == nil {
		return domain.NewValidationError(domain.CodeNoPackage,
			"`package.json` does not exist, have you run `lerna init`?")
	}

	if c.project.ConfigPath == "" {
		return domain.NewValidationError(domain.CodeNoConfig,
			"`lerna.json` does not exist, have you run `lerna init`?")
	}

	if c.project.Version() == "" {
		return domain.NewValidationError(domain.CodeNoVersion,
			"Required property version does not exist in `lerna.json`")
	}

	if c.options.Bool("independent") && !c.project.IsIndependent() {
		return domain.NewValidationError(domain.CodeVersionMode,
			"You ran lerna with --independent or -i, but the repository is not set to independent mode. "+
				"To use independent mode you need to set lerna.json's \"version\" property to \"independent\". "+
				"Then you won't need to pass the --independent or -i flags.")
	}

	if c.options.String("npmClient") == "pnpm" && !c.options.Bool("useWorkspaces") {
		return domain.NewValidationError(domain.CodeNoWorkspaces,
			"Usage of pnpm without workspaces is not supported. To use pnpm with lerna, set useWorkspaces "+
				"to true in lerna.json and configure pnpm to use workspaces: https://pnpm.io/workspaces.")
	}

	return nil
}
