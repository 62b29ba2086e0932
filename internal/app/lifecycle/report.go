package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/jsamuelsen11/lernago/internal/domain"
)

// DiagnosticFile is written to the project root when a run fails with an
// unclassified error.
const DiagnosticFile = "lerna-debug.log"

// ownFramePrefix matches stack frames of this package, which say nothing
// about where a failure came from.
var ownFramePrefix = reflect.TypeFor[Command]().PkgPath() + "."

// handleError reports err according to its classification:
//
//   - package failures log the command, package and exit code, plus the
//     captured output unless it was streamed;
//   - validation failures log their message;
//   - anything else logs a cleaned stack and writes the full log history to
//     the diagnostic file.
func (c *Command) handleError(ctx context.Context, err error) {
	if !c.sink.Resumed() {
		c.sink.Resume(defaultLogLevel, "")
	}

	var pkgErr *domain.PackageError
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &pkgErr):
		c.logPackageError(ctx, pkgErr)
		return
	case errors.As(err, &verr):
		c.logger.ErrorContext(ctx, verr.Message, slog.String("code", verr.Code))
		return
	}

	attrs := []any{slog.String("error", err.Error())}
	if stack := cleanStack(err); stack != "" {
		attrs = append(attrs, slog.String("stack", stack))
	}
	c.logger.ErrorContext(ctx, c.name+" failed", attrs...)

	path := filepath.Join(c.rootPath(), DiagnosticFile)
	if werr := c.sink.WriteDiagnostics(path); werr != nil {
		c.logger.WarnContext(ctx, "could not write diagnostic log", slog.Any("error", werr))
	}
}

func (c *Command) logPackageError(ctx context.Context, err *domain.PackageError) {
	summary := fmt.Sprintf("exited %d in '%s'", err.ExitCode, err.Package)
	c.logger.ErrorContext(ctx, summary, slog.String("command", err.Command))

	if c.options != nil && c.options.Bool("stream") {
		return
	}
	if err.Stdout != "" {
		c.logger.ErrorContext(ctx, "stdout:", slog.String("command", err.Command))
		directLog(c.stderr, err.Stdout)
	}
	if err.Stderr != "" {
		c.logger.ErrorContext(ctx, "stderr:", slog.String("command", err.Command))
		directLog(c.stderr, err.Stderr)
	}
	c.logger.ErrorContext(ctx, summary, slog.String("command", err.Command))
}

func directLog(w io.Writer, s string) {
	_, _ = io.WriteString(w, strings.TrimRight(s, "\n")+"\n")
}

// classify wraps an error that is neither a validation, package nor
// unclassified error so its stack is captured and reported.
func classify(err error) error {
	if err == nil || domain.KindOf(err) != domain.KindUnclassified {
		return err
	}
	var uerr *domain.UnclassifiedError
	if errors.As(err, &uerr) {
		return err
	}
	return domain.NewUnclassified(domain.CodeUnclassified, err)
}

// cleanStack renders the stack captured by an UnclassifiedError in err's
// chain, without frames from this package or the Go runtime.
func cleanStack(err error) string {
	var uerr *domain.UnclassifiedError
	if !errors.As(err, &uerr) {
		return ""
	}
	return domain.FormatFrames(uerr.StackTrace(), ownFramePrefix, "runtime.")
}

func (c *Command) rootPath() string {
	if c.project != nil && c.project.RootPath != "" {
		return c.project.RootPath
	}
	if c.cwd != "" {
		return c.cwd
	}
	return "."
}

// warnIfHanging logs one warning per hang checker finding. Nothing is
// terminated.
func (c *Command) warnIfHanging(ctx context.Context) {
	if c.hangs == nil {
		return
	}
	results := c.hangs.CheckAll(ctx)
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := results[name]; err != nil {
			c.logger.WarnContext(ctx, "process may hang", slog.String("checker", name), slog.Any("error", err))
		}
	}
}
