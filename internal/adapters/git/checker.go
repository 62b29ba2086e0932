// Package git answers whether a directory is usable as a git working tree.
package git

import (
	"github.com/jsamuelsen11/lernago/internal/adapters/childprocess"
	"github.com/jsamuelsen11/lernago/internal/ports"
)

var _ ports.GitChecker = (*Checker)(nil)

// SyncRunner is the subset of *childprocess.Invoker the checker needs.
type SyncRunner interface {
	ExecSync(name string, args []string, opts childprocess.Options) int
}

// Checker implements [ports.GitChecker] with "git rev-parse".
type Checker struct {
	inv SyncRunner
}

// NewChecker creates a Checker. The runner's output is shown to the user,
// so pass an invoker whose writers discard it.
func NewChecker(inv SyncRunner) *Checker {
	return &Checker{inv: inv}
}

// IsRepository implements [ports.GitChecker]. Both a missing git binary and
// a directory outside any repository report false.
func (c *Checker) IsRepository(dir string) bool {
	return c.inv.ExecSync("git", []string{"rev-parse"}, childprocess.Options{Dir: dir}) == 0
}
