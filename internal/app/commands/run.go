// Package commands holds the concrete commands driven by the lifecycle.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/jsamuelsen11/lernago/internal/adapters/childprocess"
	"github.com/jsamuelsen11/lernago/internal/adapters/npmscript"
	"github.com/jsamuelsen11/lernago/internal/app/lifecycle"
	"github.com/jsamuelsen11/lernago/internal/app/schedule"
	"github.com/jsamuelsen11/lernago/internal/domain"
	"github.com/jsamuelsen11/lernago/internal/domain/monorepo"
	"github.com/jsamuelsen11/lernago/internal/platform/logging"
)

// ScriptRunner runs one package script. Implemented by *npmscript.Runner.
type ScriptRunner interface {
	RunScript(ctx context.Context, pkg *monorepo.Package, opts npmscript.ScriptOptions) (*childprocess.Result, error)
	RunScriptStreaming(ctx context.Context, pkg *monorepo.Package, opts npmscript.ScriptOptions) (*childprocess.Result, error)
}

// Run runs an npm script in every package that declares it.
//
// Options read: script, args, npmClient, stream, parallel, prefix, bail.
type Run struct {
	runner ScriptRunner

	script   string
	args     []string
	packages []*monorepo.Package
}

var (
	_ lifecycle.Handler     = (*Run)(nil)
	_ lifecycle.GitRequirer = (*Run)(nil)
)

// NewRun creates the run command.
func NewRun(runner ScriptRunner) *Run {
	return &Run{runner: runner}
}

// Name implements [lifecycle.Handler].
func (r *Run) Name() string { return "run" }

// RequiresGit implements [lifecycle.GitRequirer]. Scripts run fine outside
// a repository.
func (r *Run) RequiresGit() bool { return false }

// Initialize implements [lifecycle.Handler]. It declines when no package
// has the script.
func (r *Run) Initialize(ctx context.Context, cmd *lifecycle.Command) (bool, error) {
	opts := cmd.Options()
	r.script = opts.String("script")
	if r.script == "" {
		return false, domain.NewValidationError(domain.CodeNoScript, "You must specify a lifecycle script to run")
	}
	r.args = opts.Strings("args")

	r.packages = r.packages[:0]
	for _, pkg := range cmd.PackageGraph().Packages() {
		if pkg.HasScript(r.script) {
			r.packages = append(r.packages, pkg)
		}
	}

	if len(r.packages) == 0 {
		cmd.Logger().Log(ctx, logging.LevelNotice, fmt.Sprintf("No packages found with the lifecycle script '%s'", r.script))
		return false, nil
	}
	return true, nil
}

// Execute implements [lifecycle.Handler].
func (r *Run) Execute(ctx context.Context, cmd *lifecycle.Command) error {
	opts := cmd.Options()
	logger := cmd.Logger()

	parallel := opts.Bool("parallel")
	stream := parallel || opts.Bool("stream")
	bail := !opts.Exists("bail") || opts.Bool("bail")
	prefix := !opts.Exists("prefix") || opts.Bool("prefix")

	concurrency := cmd.Concurrency()
	if parallel {
		concurrency = len(r.packages)
	}

	scriptOpts := npmscript.ScriptOptions{
		Script:    r.script,
		Args:      r.args,
		NpmClient: opts.String("npmClient"),
		RootPath:  cmd.Project().RootPath,
		MaxBuffer: cmd.ExecOpts().MaxBuffer,
		Prefix:    prefix,
	}

	logger.InfoContext(ctx, fmt.Sprintf("Executing command in %d %s: %q",
		len(r.packages), plural(len(r.packages), "package"), r.commandLine(scriptOpts.NpmClient)))

	breaker := newBailBreaker(r.script, bail, logger)
	var mu sync.Mutex
	var failures []error

	runOne := func(ctx context.Context, pkg *monorepo.Package) error {
		_, err := breaker.Execute(func() (struct{}, error) {
			if stream {
				_, err := r.runner.RunScriptStreaming(ctx, pkg, scriptOpts)
				return struct{}{}, err
			}
			res, err := r.runner.RunScript(ctx, pkg, scriptOpts)
			// A failed package's output is part of its error report.
			if err == nil && res != nil && res.Stdout != "" {
				mu.Lock()
				_, _ = io.WriteString(cmd.Stdout(), res.Stdout+"\n")
				mu.Unlock()
			}
			return struct{}{}, err
		})
		if errors.Is(err, gobreaker.ErrOpenState) {
			logger.Log(ctx, logging.LevelVerbose, "skipped after earlier failure", slog.String("package", pkg.Name))
			return nil
		}
		if err != nil {
			mu.Lock()
			failures = append(failures, err)
			mu.Unlock()
			if !bail {
				return nil
			}
		}
		return err
	}

	start := time.Now()
	var err error
	if cmd.Toposort() && !parallel {
		err = schedule.Topological(ctx, monorepo.NewGraph(r.packages), concurrency, runOne)
	} else {
		for _, res := range schedule.Parallel(ctx, concurrency, r.packages, func(ctx context.Context, pkg *monorepo.Package) (struct{}, error) {
			return struct{}{}, runOne(ctx, pkg)
		}) {
			if err == nil && res.Err != nil {
				err = res.Err
			}
		}
	}

	if len(failures) > 0 {
		if !bail {
			logger.ErrorContext(ctx, fmt.Sprintf("Received non-zero exit code during execution in %d %s",
				len(failures), plural(len(failures), "package")))
		}
		return failures[0]
	}
	if err != nil {
		return err
	}

	logger.Log(ctx, logging.LevelNotice, fmt.Sprintf("Ran npm script '%s' in %d %s in %.1fs:",
		r.script, len(r.packages), plural(len(r.packages), "package"), time.Since(start).Seconds()))
	for _, pkg := range r.packages {
		logger.Log(ctx, logging.LevelNotice, "- "+pkg.Name)
	}
	return nil
}

// Packages returns the packages that declare the script. Valid after
// Initialize.
func (r *Run) Packages() []*monorepo.Package {
	return r.packages
}

func (r *Run) commandLine(client string) string {
	if client == "" {
		client = "npm"
	}
	return strings.Join(append([]string{client, "run", r.script}, r.args...), " ")
}

// newBailBreaker returns a breaker that opens on the first failure when
// bail is set, and never opens otherwise. An open breaker rejects every
// later package for the rest of the run.
func newBailBreaker(script string, bail bool, logger *slog.Logger) *gobreaker.CircuitBreaker[struct{}] {
	return gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:    "run:" + script,
		Timeout: 24 * time.Hour,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return bail && counts.TotalFailures > 0
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Log(context.Background(), logging.LevelVerbose, "bail breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
