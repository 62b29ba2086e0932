// Package childprocess runs external programs on behalf of commands. It offers
// three modes: ExecSync (blocking, exit status only), Exec (captured output)
// and Spawn (output streamed live, optionally prefixed with the package
// name).
//
// A dispatcher shim can be configured with WithDispatcher; every mode then
// runs "dispatcher name args..." instead of "name args...".
//
// Construction:
//
//	inv := childprocess.New(
//	    childprocess.WithOutput(os.Stdout, os.Stderr),
//	    childprocess.WithColor(env.Color),
//	)
//	res, err := inv.Exec(ctx, "npm", []string{"run", "build"}, childprocess.Options{Dir: pkg.Location})
package childprocess

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen11/lernago/internal/domain"
	"github.com/jsamuelsen11/lernago/internal/platform/logging"
	"github.com/jsamuelsen11/lernago/internal/platform/telemetry"
	"github.com/jsamuelsen11/lernago/internal/ports"
)

var _ ports.HangChecker = (*Invoker)(nil)

// ErrMaxBuffer is returned when captured output exceeds Options.MaxBuffer.
var ErrMaxBuffer = errors.New("max buffer exceeded")

// Execution modes, used as the process.mode metric attribute.
const (
	ModeSync    = "sync"
	ModeExec    = "exec"
	ModeSpawn   = "spawn"
	checkerName = "child-processes"
)

// Options control a single invocation.
type Options struct {
	// Dir is the working directory. Empty means the current directory.
	Dir string

	// Env holds extra KEY=VALUE entries appended to the inherited
	// environment.
	Env []string

	// Package names the package the process runs for. When set, failures
	// are reported as *domain.PackageError.
	Package string

	// MaxBuffer caps captured stdout and stderr, each, in bytes. Zero means
	// unlimited.
	MaxBuffer int

	// NoReject keeps a non-zero exit from being returned as an error. The
	// exit code is still reported in the Result.
	NoReject bool

	// Prefix prepends the package name to every streamed line. Spawn only.
	Prefix bool
}

// Result is the outcome of Exec or Spawn.
type Result struct {
	Command  string
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Invoker starts child processes. It is safe for concurrent use.
type Invoker struct {
	dispatcher string
	stdout     io.Writer
	stderr     io.Writer
	color      bool
	metrics    *telemetry.Metrics
	logger     *slog.Logger
	tracer     trace.Tracer

	mu       sync.Mutex
	running  map[*exec.Cmd]string
	prefixes map[string]string
}

// Option configures an Invoker.
type Option func(*Invoker)

// WithDispatcher routes every invocation through cmd.
func WithDispatcher(cmd string) Option {
	return func(i *Invoker) { i.dispatcher = cmd }
}

// WithOutput sets where ExecSync and Spawn write child output.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(i *Invoker) {
		i.stdout = stdout
		i.stderr = stderr
	}
}

// WithColor enables colored line prefixes.
func WithColor(enabled bool) Option {
	return func(i *Invoker) { i.color = enabled }
}

// WithMetrics records process metrics. A nil m disables recording.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(i *Invoker) { i.metrics = m }
}

// WithLogger sets the logger for process start and exit records.
func WithLogger(l *slog.Logger) Option {
	return func(i *Invoker) { i.logger = l }
}

// New creates an Invoker writing to the process stdout and stderr.
func New(opts ...Option) *Invoker {
	i := &Invoker{
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		logger:   slog.New(slog.DiscardHandler),
		tracer:   otel.Tracer(telemetry.InstrumentationScope),
		running:  make(map[*exec.Cmd]string),
		prefixes: make(map[string]string),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// command is the single place that decides what binary actually runs.
func (i *Invoker) command(name string, args []string) (string, []string) {
	if i.dispatcher == "" {
		return name, args
	}
	return i.dispatcher, append([]string{name}, args...)
}

// ExecSync runs name to completion with output attached to the invoker's
// writers and returns its exit code. It never fails: a binary that cannot
// be started yields -1.
func (i *Invoker) ExecSync(name string, args []string, opts Options) int {
	ctx := context.Background()
	cmd := i.build(ctx, name, args, opts)
	cmd.Stdout = i.stdout
	cmd.Stderr = i.stderr

	code, _, _ := i.run(ctx, ModeSync, cmd, opts)
	return code
}

// Exec runs name to completion, capturing stdout and stderr.
//
// A non-zero exit is an error unless opts.NoReject is set; the Result is
// returned in both cases. Output beyond opts.MaxBuffer is discarded and
// reported as ErrMaxBuffer.
func (i *Invoker) Exec(ctx context.Context, name string, args []string, opts Options) (*Result, error) {
	cmd := i.build(ctx, name, args, opts)
	stdout := &cappedBuffer{limit: opts.MaxBuffer}
	stderr := &cappedBuffer{limit: opts.MaxBuffer}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	code, elapsed, err := i.run(ctx, ModeExec, cmd, opts)
	res := &Result{
		Command:  commandLine(cmd),
		ExitCode: code,
		Stdout:   strings.TrimRight(stdout.String(), "\r\n"),
		Stderr:   strings.TrimRight(stderr.String(), "\r\n"),
		Duration: elapsed,
	}
	if err == nil && (stdout.exceeded || stderr.exceeded) {
		err = fmt.Errorf("%s: %w (%d bytes)", res.Command, ErrMaxBuffer, opts.MaxBuffer)
	}
	return res, i.failure(res, opts, err)
}

// Spawn runs name to completion, streaming its output live to the
// invoker's writers. With opts.Prefix and opts.Package set, each line is
// prefixed with the package name.
func (i *Invoker) Spawn(ctx context.Context, name string, args []string, opts Options) (*Result, error) {
	cmd := i.build(ctx, name, args, opts)

	stdout, stderr := i.stdout, i.stderr
	var flush []*prefixWriter
	if opts.Prefix && opts.Package != "" {
		prefix := i.prefix(opts.Package)
		po := &prefixWriter{w: stdout, prefix: prefix}
		pe := &prefixWriter{w: stderr, prefix: prefix}
		stdout, stderr = po, pe
		flush = append(flush, po, pe)
	}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	code, elapsed, err := i.run(ctx, ModeSpawn, cmd, opts)
	for _, w := range flush {
		_ = w.Flush()
	}

	res := &Result{Command: commandLine(cmd), ExitCode: code, Duration: elapsed}
	return res, i.failure(res, opts, err)
}

// Name implements [ports.HangChecker].
func (i *Invoker) Name() string {
	return checkerName
}

// CheckHang implements [ports.HangChecker]. It reports children that are
// still running.
func (i *Invoker) CheckHang(_ context.Context) error {
	i.mu.Lock()
	lines := make([]string, 0, len(i.running))
	for cmd, line := range i.running {
		lines = append(lines, fmt.Sprintf("pid %d: %s", cmd.Process.Pid, line))
	}
	i.mu.Unlock()

	if len(lines) == 0 {
		return nil
	}
	sort.Strings(lines)
	return fmt.Errorf("%d child processes still running: %s", len(lines), strings.Join(lines, "; "))
}

func (i *Invoker) build(ctx context.Context, name string, args []string, opts Options) *exec.Cmd {
	bin, argv := i.command(name, args)
	cmd := exec.CommandContext(ctx, bin, argv...)
	cmd.Dir = opts.Dir
	cmd.Stdin = nil
	if len(opts.Env) > 0 {
		cmd.Env = append(os.Environ(), opts.Env...)
	}
	return cmd
}

// run starts cmd, tracks it while alive and waits for it. It returns the
// exit code (0 on success, -1 when the process never ran) and the error
// from os/exec.
func (i *Invoker) run(ctx context.Context, mode string, cmd *exec.Cmd, opts Options) (int, time.Duration, error) {
	line := commandLine(cmd)
	ctx, span := i.tracer.Start(ctx, "childprocess."+mode, trace.WithAttributes(
		telemetry.AttrBinary.String(cmd.Args[0]),
		telemetry.AttrPackage.String(opts.Package),
	))
	defer span.End()

	start := time.Now()
	i.logger.Log(ctx, logging.LevelSilly, "spawn",
		slog.String("command", line),
		slog.String("dir", cmd.Dir),
		slog.String("mode", mode),
	)

	if err := cmd.Start(); err != nil {
		elapsed := time.Since(start)
		i.finish(ctx, span, mode, cmd, opts, elapsed, err)
		return -1, elapsed, err
	}

	i.mu.Lock()
	i.running[cmd] = line
	i.mu.Unlock()

	err := cmd.Wait()

	i.mu.Lock()
	delete(i.running, cmd)
	i.mu.Unlock()

	elapsed := time.Since(start)
	i.finish(ctx, span, mode, cmd, opts, elapsed, err)

	code := cmd.ProcessState.ExitCode()
	if err != nil && code <= 0 {
		// Signal deaths report -1 and output copy errors report 0.
		code = 1
	}
	return code, elapsed, err
}

func (i *Invoker) finish(ctx context.Context, span trace.Span, mode string, cmd *exec.Cmd, opts Options, elapsed time.Duration, err error) {
	i.metrics.RecordProcess(ctx, cmd.Args[0], mode, opts.Package, elapsed.Seconds(), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	i.logger.Log(ctx, logging.LevelSilly, "exit",
		slog.String("command", commandLine(cmd)),
		slog.Duration("duration", elapsed),
		slog.Any("error", err),
	)
}

// failure turns a run error into the error returned to callers.
func (i *Invoker) failure(res *Result, opts Options, err error) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && opts.NoReject {
		return nil
	}
	if opts.Package != "" {
		return &domain.PackageError{
			Package:  opts.Package,
			Command:  res.Command,
			ExitCode: res.ExitCode,
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
			Err:      err,
		}
	}
	return domain.NewUnclassified(domain.CodeUnclassified, fmt.Errorf("running %s: %w", res.Command, err))
}

func commandLine(cmd *exec.Cmd) string {
	return strings.Join(cmd.Args, " ")
}

// cappedBuffer keeps at most limit bytes and remembers whether more were
// written. It never fails a write so the child is not blocked on a full
// pipe.
type cappedBuffer struct {
	limit    int
	buf      strings.Builder
	exceeded bool
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	if b.limit <= 0 {
		return b.buf.Write(p)
	}
	room := b.limit - b.buf.Len()
	if room < len(p) {
		b.exceeded = true
		if room > 0 {
			b.buf.Write(p[:room])
		}
		return len(p), nil
	}
	return b.buf.Write(p)
}

func (b *cappedBuffer) String() string {
	return b.buf.String()
}
