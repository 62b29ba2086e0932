// Package npmscript runs package.json scripts through the project's package
// manager client ("npm run <script>", "pnpm run <script>", ...).
package npmscript

import (
	"context"

	"github.com/jsamuelsen11/lernago/internal/adapters/childprocess"
	"github.com/jsamuelsen11/lernago/internal/domain/monorepo"
)

// Environment variables exported to every script.
const (
	EnvPackageName = "LERNA_PACKAGE_NAME"
	EnvRootPath    = "LERNA_ROOT_PATH"
)

// Invoker is the subset of *childprocess.Invoker the runner needs.
type Invoker interface {
	Exec(ctx context.Context, name string, args []string, opts childprocess.Options) (*childprocess.Result, error)
	Spawn(ctx context.Context, name string, args []string, opts childprocess.Options) (*childprocess.Result, error)
}

// ScriptOptions describe one script run.
type ScriptOptions struct {
	Script    string
	Args      []string
	NpmClient string
	RootPath  string
	MaxBuffer int
	Prefix    bool
}

// Runner runs scripts in package directories.
type Runner struct {
	inv Invoker
}

// NewRunner creates a Runner on top of inv.
func NewRunner(inv Invoker) *Runner {
	return &Runner{inv: inv}
}

// RunScript runs the script with output captured.
func (r *Runner) RunScript(ctx context.Context, pkg *monorepo.Package, opts ScriptOptions) (*childprocess.Result, error) {
	client, args, po := prepare(pkg, opts)
	return r.inv.Exec(ctx, client, args, po)
}

// RunScriptStreaming runs the script with output streamed live, each line
// prefixed with the package name when opts.Prefix is set.
func (r *Runner) RunScriptStreaming(ctx context.Context, pkg *monorepo.Package, opts ScriptOptions) (*childprocess.Result, error) {
	client, args, po := prepare(pkg, opts)
	po.Prefix = opts.Prefix
	return r.inv.Spawn(ctx, client, args, po)
}

func prepare(pkg *monorepo.Package, opts ScriptOptions) (string, []string, childprocess.Options) {
	client := opts.NpmClient
	if client == "" {
		client = "npm"
	}

	args := append([]string{"run", opts.Script}, opts.Args...)

	env := []string{EnvPackageName + "=" + pkg.Name}
	if opts.RootPath != "" {
		env = append(env, EnvRootPath+"="+opts.RootPath)
	}

	return client, args, childprocess.Options{
		Dir:       pkg.Location,
		Env:       env,
		Package:   pkg.Name,
		MaxBuffer: opts.MaxBuffer,
	}
}
