// Package lifecycle turns raw command-line input into a validated,
// fully-configured command and runs it.
//
// A run walks an ordered list of stages. Each stage settles before the next
// starts and the first error, or recovered panic, skips the rest and goes
// to the failure report:
//
//	project → env → options → properties → logging → validate → prepare → initialize → execute
//
// Concrete commands implement Handler and are wrapped by New:
//
//	cmd := lifecycle.New(runHandler,
//	    lifecycle.WithCLI(flags),
//	    lifecycle.WithProjectLoader(loader),
//	    lifecycle.WithPackageLoader(loader),
//	    lifecycle.WithGitChecker(git),
//	)
//	err := cmd.Run(ctx)
package lifecycle

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen11/lernago/internal/domain"
	"github.com/jsamuelsen11/lernago/internal/domain/monorepo"
	"github.com/jsamuelsen11/lernago/internal/platform/config"
	"github.com/jsamuelsen11/lernago/internal/platform/environment"
	"github.com/jsamuelsen11/lernago/internal/platform/hangcheck"
	"github.com/jsamuelsen11/lernago/internal/platform/logging"
	"github.com/jsamuelsen11/lernago/internal/platform/telemetry"
	"github.com/jsamuelsen11/lernago/internal/ports"
)

// RepairCommand is the one command that runs without validations, so it
// can fix a project that would fail them.
const RepairCommand = "repair"

// Command is one run of a Handler through the lifecycle.
type Command struct {
	handler  Handler
	name     string
	cli      map[string]any
	cwd      string
	composed bool
	version  string

	projects ports.ProjectLoader
	packages ports.PackageLoader
	git      ports.GitChecker
	hangs    ports.HangRegistry
	sink     *logging.Sink
	probe    environment.Probe
	metrics  *telemetry.Metrics
	tracer   trace.Tracer
	stdout   io.Writer
	stderr   io.Writer

	state       State
	logger      *slog.Logger
	project     *monorepo.Project
	env         environment.Result
	options     *config.Options
	concurrency int
	toposort    bool
	execOpts    ExecOpts
	graph       *monorepo.Graph
	proceed     bool
}

// Option configures a Command.
type Option func(*Command)

// WithCLI sets the values supplied on the command line, keyed by option
// name. They take precedence over every other source.
func WithCLI(values map[string]any) Option {
	return func(c *Command) { c.cli = values }
}

// WithCwd sets the directory the project is searched from.
func WithCwd(dir string) Option {
	return func(c *Command) { c.cwd = dir }
}

// WithComposedBy marks the command as launched by the named parent
// command. A command is composed only when parent differs from its own
// name.
func WithComposedBy(parent string) Option {
	return func(c *Command) {
		c.composed = parent != "" && parent != c.handler.Name()
	}
}

// WithVersion sets the version shown in the startup banner.
func WithVersion(v string) Option {
	return func(c *Command) { c.version = v }
}

// WithProjectLoader sets how the project handle is built.
func WithProjectLoader(l ports.ProjectLoader) Option {
	return func(c *Command) { c.projects = l }
}

// WithPackageLoader sets how packages are discovered.
func WithPackageLoader(l ports.PackageLoader) Option {
	return func(c *Command) { c.packages = l }
}

// WithGitChecker sets the git repository check.
func WithGitChecker(g ports.GitChecker) Option {
	return func(c *Command) { c.git = g }
}

// WithHangRegistry sets the registry checked after the run settles.
func WithHangRegistry(r ports.HangRegistry) Option {
	return func(c *Command) { c.hangs = r }
}

// WithSink sets the log sink. Composed commands pass their parent's sink.
func WithSink(s *logging.Sink) Option {
	return func(c *Command) { c.sink = s }
}

// WithProbe sets the host state read by the environment stage.
func WithProbe(p environment.Probe) Option {
	return func(c *Command) { c.probe = p }
}

// WithMetrics records stage durations. A nil m disables recording.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(c *Command) { c.metrics = m }
}

// WithOutput sets the writers commands print results and package output
// to.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(c *Command) {
		c.stdout = stdout
		c.stderr = stderr
	}
}

// New wraps h in a Command. Without WithSink the command logs to its
// stderr writer; without WithProbe it inspects the host process.
func New(h Handler, opts ...Option) *Command {
	c := &Command{
		handler: h,
		name:    h.Name(),
		hangs:   hangcheck.New(),
		tracer:  otel.Tracer(telemetry.InstrumentationScope),
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.sink == nil {
		c.sink = logging.NewSink(c.stderr)
	}
	if c.probe.LookupEnv == nil {
		c.probe = environment.Host()
	}
	c.logger = c.sink.Logger()
	return c
}

// stage is one named step of the run.
type stage struct {
	state State
	run   func(ctx context.Context) error
}

func (c *Command) stages() []stage {
	return []stage{
		{StateInit, c.configureProject},
		{StateEnv, c.configureEnvironment},
		{StateOptions, c.configureOptions},
		{StateProperties, c.configureProperties},
		{StateLogging, c.configureLogging},
		{StateValidate, c.runValidations},
		{StatePrepare, c.runPreparations},
		{StateInitialize, c.initialize},
		{StateExecute, c.execute},
	}
}

// Run drives the command through every stage. On failure the error is
// reported according to its classification and returned unchanged. Hang
// checks run in both cases.
func (c *Command) Run(ctx context.Context) error {
	ctx, span := c.tracer.Start(ctx, "lifecycle.run", trace.WithAttributes(telemetry.AttrCommand.String(c.name)))
	defer span.End()
	ctx = logging.WithLogger(ctx, c.logger)

	var err error
	for _, st := range c.stages() {
		if st.state == StateExecute && !c.proceed {
			break
		}
		c.state = st.state
		if err = c.runStage(ctx, st); err != nil {
			break
		}
	}

	if err != nil {
		c.state = StateFailed
		span.SetStatus(codes.Error, err.Error())
		c.handleError(ctx, err)
	} else {
		c.state = StateDone
	}
	c.warnIfHanging(ctx)

	return err
}

func (c *Command) runStage(ctx context.Context, st stage) (err error) {
	name := st.state.String()
	ctx, span := c.tracer.Start(ctx, "lifecycle."+name, trace.WithAttributes(
		telemetry.AttrCommand.String(c.name),
		telemetry.AttrStage.String(name),
	))
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err = domain.Unclassifiedf(domain.CodeUnclassified, "panic in %s stage: %v", name, r)
		}
		err = classify(err)
		c.metrics.RecordStage(ctx, c.name, name, time.Since(start).Seconds(), err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	return st.run(ctx)
}

func (c *Command) configureProject(ctx context.Context) error {
	if c.projects == nil {
		return domain.Unclassifiedf(domain.CodeUnclassified, "no project loader configured")
	}
	cwd := c.cwd
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		cwd = wd
	}

	project, err := c.projects.LoadProject(ctx, cwd)
	if err != nil {
		return err
	}
	if project == nil {
		return domain.Unclassifiedf(domain.CodeUnclassified, "no project found for %s", cwd)
	}
	c.project = project
	return nil
}

func (c *Command) configureEnvironment(ctx context.Context) error {
	c.env = environment.Detect(c.probe)
	c.logger.Log(ctx, logging.LevelSilly, "environment",
		slog.Bool("ci", c.env.CI),
		slog.Bool("color", c.env.Color),
		slog.Bool("unicode", c.env.Unicode),
	)
	return nil
}

func (c *Command) configureOptions(_ context.Context) error {
	opts, err := config.Resolve(config.Sources{
		CLI:         c.cli,
		Command:     c.name,
		Inherited:   otherCommandConfigs(c.handler),
		Project:     c.project.Config,
		Environment: c.env.Defaults(),
	})
	if err != nil {
		return err
	}
	c.options = opts
	return nil
}

func (c *Command) configureLogging(ctx context.Context) error {
	level := c.options.String("loglevel")
	if level == "" {
		level = defaultLogLevel
	}
	c.sink.Resume(level, c.options.String("logFormat"))

	if !c.composed {
		c.logger.Log(ctx, logging.LevelNotice, "cli", slog.String("version", c.version))
	}
	c.logger.Log(ctx, logging.LevelSilly, "argv", slog.Any("cli", c.cli))
	return nil
}

func (c *Command) initialize(ctx context.Context) error {
	proceed, err := c.handler.Initialize(ctx, c)
	if err != nil {
		return err
	}
	c.proceed = proceed
	if !proceed {
		c.logger.Log(ctx, logging.LevelVerbose, "initialize declined, skipping execute")
	}
	return nil
}

func (c *Command) execute(ctx context.Context) error {
	return c.handler.Execute(ctx, c)
}

const defaultLogLevel = "info"

// Name returns the command name.
func (c *Command) Name() string { return c.name }

// State returns the current lifecycle state.
func (c *Command) State() State { return c.state }

// Composed reports whether another command launched this one.
func (c *Command) Composed() bool { return c.composed }

// Logger returns the command's logger.
func (c *Command) Logger() *slog.Logger { return c.logger }

// Sink returns the log sink, for composing commands that share it.
func (c *Command) Sink() *logging.Sink { return c.sink }

// Stdout returns the writer for command results.
func (c *Command) Stdout() io.Writer { return c.stdout }

// Stderr returns the writer for package output and diagnostics.
func (c *Command) Stderr() io.Writer { return c.stderr }

// Project returns the project handle. Nil before the first stage.
func (c *Command) Project() *monorepo.Project { return c.project }

// Environment returns the detected environment.
func (c *Command) Environment() environment.Result { return c.env }

// Options returns the resolved options. Nil before the options stage.
func (c *Command) Options() *config.Options { return c.options }

// PackageGraph returns the package graph. Nil until preparations ran.
func (c *Command) PackageGraph() *monorepo.Graph { return c.graph }
