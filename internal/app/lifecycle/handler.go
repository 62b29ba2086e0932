package lifecycle

import (
	"context"

	"github.com/jsamuelsen11/lernago/internal/domain"
)

// Handler is implemented by every concrete command.
type Handler interface {
	// Name is the command name. It selects the "command.<name>" config
	// section and identifies the command in logs.
	Name() string

	// Initialize runs after preparations. Returning false skips Execute
	// and ends the run successfully.
	Initialize(ctx context.Context, cmd *Command) (bool, error)

	// Execute does the command's work.
	Execute(ctx context.Context, cmd *Command) error
}

// GitRequirer lets a handler opt out of the git repository check.
// Handlers that do not implement it require git.
type GitRequirer interface {
	RequiresGit() bool
}

// ConfigInheritor lets a handler read other commands' config sections.
// Earlier names take precedence over later ones; the handler's own section
// beats them all.
type ConfigInheritor interface {
	OtherCommandConfigs() []string
}

// NotImplemented can be embedded by handlers under construction. Both hooks
// fail with an ENOTIMPLEMENTED error.
type NotImplemented struct{}

// Initialize implements [Handler].
func (NotImplemented) Initialize(context.Context, *Command) (bool, error) {
	return false, domain.Unclassifiedf(domain.CodeUnimplemented, "command.initialize() needs to be implemented: %w", domain.ErrNotImplemented)
}

// Execute implements [Handler].
func (NotImplemented) Execute(context.Context, *Command) error {
	return domain.Unclassifiedf(domain.CodeUnimplemented, "command.execute() needs to be implemented: %w", domain.ErrNotImplemented)
}

func requiresGit(h Handler) bool {
	if gr, ok := h.(GitRequirer); ok {
		return gr.RequiresGit()
	}
	return true
}

func otherCommandConfigs(h Handler) []string {
	if ci, ok := h.(ConfigInheritor); ok {
		return ci.OtherCommandConfigs()
	}
	return nil
}
