package lifecycle_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen11/lernago/internal/app/lifecycle"
	"github.com/jsamuelsen11/lernago/internal/domain"
	"github.com/jsamuelsen11/lernago/internal/domain/monorepo"
	"github.com/jsamuelsen11/lernago/internal/platform/environment"
	"github.com/jsamuelsen11/lernago/internal/platform/hangcheck"
	"github.com/jsamuelsen11/lernago/mocks"
)

// recordingHandler records which hooks ran.
type recordingHandler struct {
	name      string
	proceed   bool
	initErr   error
	execErr   error
	execPanic any
	calls     []string
	seen      *lifecycle.Command
}

func newHandler() *recordingHandler {
	return &recordingHandler{name: "fake", proceed: true}
}

func (h *recordingHandler) Name() string { return h.name }

func (h *recordingHandler) Initialize(_ context.Context, cmd *lifecycle.Command) (bool, error) {
	h.calls = append(h.calls, "initialize")
	h.seen = cmd
	return h.proceed, h.initErr
}

func (h *recordingHandler) Execute(_ context.Context, _ *lifecycle.Command) error {
	h.calls = append(h.calls, "execute")
	if h.execPanic != nil {
		panic(h.execPanic)
	}
	return h.execErr
}

type gitlessHandler struct{ *recordingHandler }

func (gitlessHandler) RequiresGit() bool { return false }

type inheritingHandler struct {
	*recordingHandler
	others []string
}

func (h inheritingHandler) OtherCommandConfigs() []string { return h.others }

type unfinishedHandler struct{ lifecycle.NotImplemented }

func (unfinishedHandler) Name() string { return "unfinished" }

// quietProbe is a terminal session outside CI.
var quietProbe = environment.Probe{
	LookupEnv: func(string) (string, bool) { return "", false },
	StdoutTTY: true,
	StderrTTY: true,
}

type fixture struct {
	t        *testing.T
	project  *monorepo.Project
	projects *mocks.MockProjectLoader
	packages *mocks.MockPackageLoader
	git      *mocks.MockGitChecker
	out      *bytes.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	return &fixture{
		t: t,
		project: &monorepo.Project{
			RootPath:   root,
			ConfigPath: filepath.Join(root, "lerna.json"),
			Config:     map[string]any{"version": "1.0.0"},
			Manifest:   &monorepo.Manifest{Name: "root", Private: true},
		},
		projects: mocks.NewMockProjectLoader(t),
		packages: mocks.NewMockPackageLoader(t),
		git:      mocks.NewMockGitChecker(t),
		out:      &bytes.Buffer{},
	}
}

func (f *fixture) expectProject() {
	f.projects.EXPECT().LoadProject(mock.Anything, f.project.RootPath).Return(f.project, nil).Once()
}

func (f *fixture) expectGit(ok bool) {
	f.git.EXPECT().IsRepository(f.project.RootPath).Return(ok).Once()
}

func (f *fixture) expectPackages(pkgs ...*monorepo.Package) {
	f.packages.EXPECT().LoadPackages(mock.Anything, f.project).Return(pkgs, nil).Once()
}

// expectHappyPath sets up a run that passes validations and preparations.
func (f *fixture) expectHappyPath() {
	f.expectProject()
	f.expectGit(true)
	f.expectPackages(&monorepo.Package{Name: "pkg-a", Location: filepath.Join(f.project.RootPath, "packages", "pkg-a")})
}

func (f *fixture) command(h lifecycle.Handler, opts ...lifecycle.Option) *lifecycle.Command {
	base := []lifecycle.Option{
		lifecycle.WithCwd(f.project.RootPath),
		lifecycle.WithProjectLoader(f.projects),
		lifecycle.WithPackageLoader(f.packages),
		lifecycle.WithGitChecker(f.git),
		lifecycle.WithProbe(quietProbe),
		lifecycle.WithOutput(f.out, f.out),
	}
	return lifecycle.New(h, append(base, opts...)...)
}

func (f *fixture) diagnosticExists() bool {
	_, err := os.Stat(filepath.Join(f.project.RootPath, lifecycle.DiagnosticFile))
	return err == nil
}

func TestRun_Success(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.expectHappyPath()
	h := newHandler()
	cmd := f.command(h)

	require.NoError(t, cmd.Run(context.Background()))

	assert.Equal(t, []string{"initialize", "execute"}, h.calls)
	assert.Equal(t, lifecycle.StateDone, cmd.State())
	require.NotNil(t, cmd.PackageGraph())
	assert.Equal(t, 1, cmd.PackageGraph().Len())
	assert.Same(t, f.project, cmd.Project())
	assert.Equal(t, f.project.RootPath, cmd.ExecOpts().Dir)
	assert.False(t, f.diagnosticExists())
}

func TestRun_InitializeDeclines(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.expectHappyPath()
	h := newHandler()
	h.proceed = false

	err := f.command(h).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"initialize"}, h.calls, "execute never runs")
}

func TestRun_OptionPrecedence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cli     map[string]any
		config  map[string]any
		inherit []string
		want    int
	}{
		{
			name:   "cli beats everything",
			cli:    map[string]any{"concurrency": 5},
			config: map[string]any{"concurrency": 2, "command": map[string]any{"fake": map[string]any{"concurrency": 3}}},
			want:   5,
		},
		{
			name:   "command section beats global",
			config: map[string]any{"concurrency": 2, "command": map[string]any{"fake": map[string]any{"concurrency": 3}}},
			want:   3,
		},
		{
			name:   "global config",
			config: map[string]any{"concurrency": 2},
			want:   2,
		},
		{
			name: "first inherited section wins",
			config: map[string]any{"concurrency": 2, "command": map[string]any{
				"publish": map[string]any{"concurrency": 7},
				"version": map[string]any{"concurrency": 8},
			}},
			inherit: []string{"publish", "version"},
			want:    7,
		},
		{
			name:   "nil cli value is undefined",
			cli:    map[string]any{"concurrency": nil},
			config: map[string]any{"concurrency": 2},
			want:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			tt.config["version"] = "1.0.0"
			f.project.Config = tt.config
			f.expectHappyPath()

			var h lifecycle.Handler = newHandler()
			if tt.inherit != nil {
				h = inheritingHandler{recordingHandler: newHandler(), others: tt.inherit}
			}
			cmd := f.command(h, lifecycle.WithCLI(tt.cli))

			require.NoError(t, cmd.Run(context.Background()))
			assert.Equal(t, tt.want, cmd.Options().Int("concurrency"))
			assert.Equal(t, tt.want, cmd.Concurrency())
		})
	}
}

func TestRun_VerboseForcesLogLevel(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.expectHappyPath()
	cmd := f.command(newHandler(), lifecycle.WithCLI(map[string]any{"verbose": true, "loglevel": "warn"}))

	require.NoError(t, cmd.Run(context.Background()))
	assert.Equal(t, "verbose", cmd.Options().String("loglevel"))
}

func TestRun_Concurrency(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value any
		want  int
	}{
		{name: "unset", value: nil, want: runtime.NumCPU()},
		{name: "zero", value: 0, want: runtime.NumCPU()},
		{name: "negative", value: -5, want: 1},
		{name: "explicit", value: 4, want: 4},
		{name: "non-numeric", value: "lots", want: runtime.NumCPU()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			f.expectHappyPath()
			cmd := f.command(newHandler(), lifecycle.WithCLI(map[string]any{"concurrency": tt.value}))

			require.NoError(t, cmd.Run(context.Background()))
			assert.Equal(t, tt.want, cmd.Concurrency())
		})
	}
}

func TestRun_Toposort(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cli  map[string]any
		want bool
	}{
		{name: "unset", want: true},
		{name: "true", cli: map[string]any{"sort": true}, want: true},
		{name: "false", cli: map[string]any{"sort": false}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			f.expectHappyPath()
			cmd := f.command(newHandler(), lifecycle.WithCLI(tt.cli))

			require.NoError(t, cmd.Run(context.Background()))
			assert.Equal(t, tt.want, cmd.Toposort())
		})
	}
}

func TestRun_MaxBuffer(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.expectHappyPath()
	cmd := f.command(newHandler(), lifecycle.WithCLI(map[string]any{"maxBuffer": 2048}))

	require.NoError(t, cmd.Run(context.Background()))
	assert.Equal(t, 2048, cmd.ExecOpts().MaxBuffer)
}

func TestRun_GitRequired(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.expectProject()
	f.expectGit(false)
	h := newHandler()
	cmd := f.command(h)

	err := cmd.Run(context.Background())

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, domain.CodeNoGit, verr.Code)
	assert.Empty(t, h.calls)
	assert.Nil(t, cmd.PackageGraph(), "preparations never start")
	assert.Equal(t, lifecycle.StateFailed, cmd.State())
	assert.False(t, f.diagnosticExists(), "validation errors write no diagnostic file")
	assert.Contains(t, f.out.String(), "not a git repository")
	assert.NotContains(t, f.out.String(), "stack=")
}

func TestRun_GitNotRequired(t *testing.T) {
	t.Parallel()

	t.Run("skips the check", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.expectProject()
		f.expectPackages()
		h := gitlessHandler{newHandler()}

		require.NoError(t, f.command(h).Run(context.Background()))
		f.git.AssertNotCalled(t, "IsRepository", mock.Anything)
	})

	t.Run("since still needs git", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.expectProject()
		f.expectGit(false)
		h := gitlessHandler{newHandler()}

		err := f.command(h, lifecycle.WithCLI(map[string]any{"since": ""})).Run(context.Background())
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestRun_Validations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(p *monorepo.Project)
		cli    map[string]any
		code   string
	}{
		{
			name:   "no package.json",
			mutate: func(p *monorepo.Project) { p.Manifest = nil },
			code:   domain.CodeNoPackage,
		},
		{
			name: "no lerna.json",
			mutate: func(p *monorepo.Project) {
				p.ConfigPath = ""
				p.Config = nil
			},
			code: domain.CodeNoConfig,
		},
		{
			name:   "no version",
			mutate: func(p *monorepo.Project) { p.Config = map[string]any{"packages": []any{"packages/*"}} },
			code:   domain.CodeNoVersion,
		},
		{
			name:   "independent flag on fixed project",
			mutate: func(*monorepo.Project) {},
			cli:    map[string]any{"independent": true},
			code:   domain.CodeVersionMode,
		},
		{
			name:   "pnpm without workspaces",
			mutate: func(p *monorepo.Project) { p.Config["npmClient"] = "pnpm" },
			code:   domain.CodeNoWorkspaces,
		},
		{
			name: "pnpm with workspaces off",
			mutate: func(p *monorepo.Project) {
				p.Config["npmClient"] = "pnpm"
				p.Config["useWorkspaces"] = false
			},
			code: domain.CodeNoWorkspaces,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			tt.mutate(f.project)
			f.expectProject()
			f.expectGit(true)
			h := newHandler()

			err := f.command(h, lifecycle.WithCLI(tt.cli)).Run(context.Background())

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.code, verr.Code)
			assert.Empty(t, h.calls)
			assert.False(t, f.diagnosticExists())
		})
	}
}

func TestRun_IndependentProjectAccepted(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.project.Config["version"] = monorepo.IndependentVersion
	f.expectHappyPath()

	cmd := f.command(newHandler(), lifecycle.WithCLI(map[string]any{"independent": true}))
	require.NoError(t, cmd.Run(context.Background()))
	assert.Contains(t, f.out.String(), "versioning independent")
}

func TestRun_RepairSkipsValidations(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.project.Manifest = nil
	f.project.ConfigPath = ""
	f.project.Config = nil
	f.expectProject()
	f.expectPackages()
	h := newHandler()
	h.name = lifecycle.RepairCommand

	require.NoError(t, f.command(h).Run(context.Background()))
	assert.Equal(t, []string{"initialize", "execute"}, h.calls)
}

func TestRun_PackageError(t *testing.T) {
	t.Parallel()

	pkgErr := &domain.PackageError{
		Package:  "pkg-a",
		Command:  "npm run build",
		ExitCode: 2,
		Stdout:   "build output",
		Stderr:   "build failure",
	}

	t.Run("captured output is dumped", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.expectHappyPath()
		h := newHandler()
		h.execErr = pkgErr

		err := f.command(h).Run(context.Background())

		require.ErrorIs(t, err, pkgErr)
		out := f.out.String()
		assert.Contains(t, out, "exited 2 in 'pkg-a'")
		assert.Contains(t, out, "build output\n")
		assert.Contains(t, out, "build failure\n")
		assert.NotContains(t, out, "stack=")
		assert.False(t, f.diagnosticExists())
	})

	t.Run("streamed output is not repeated", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.expectHappyPath()
		h := newHandler()
		h.execErr = pkgErr

		err := f.command(h, lifecycle.WithCLI(map[string]any{"stream": true})).Run(context.Background())

		require.Error(t, err)
		assert.Contains(t, f.out.String(), "exited 2 in 'pkg-a'")
		assert.NotContains(t, f.out.String(), "build output")
	})
}

func TestRun_UnclassifiedError(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.expectHappyPath()
	h := newHandler()
	h.execErr = domain.Unclassifiedf(domain.CodeUnclassified, "disk on fire")
	cmd := f.command(h, lifecycle.WithCLI(map[string]any{"loglevel": "error"}))

	err := cmd.Run(context.Background())

	require.Error(t, err)
	assert.Equal(t, domain.KindUnclassified, domain.KindOf(err))
	out := f.out.String()
	assert.Contains(t, out, "disk on fire")
	assert.Contains(t, out, "stack=")
	assert.Contains(t, out, "TestRun_UnclassifiedError", "the caller's frame is kept")
	assert.NotContains(t, out, "lifecycle.(*Command)", "lifecycle frames are stripped")

	require.True(t, f.diagnosticExists())
	data, err := os.ReadFile(filepath.Join(f.project.RootPath, lifecycle.DiagnosticFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "properties", "history below the active level is kept")
}

func TestRun_PlainError(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.expectHappyPath()
	h := newHandler()
	plain := errors.New("plain failure")
	h.execErr = plain
	cmd := f.command(h, lifecycle.WithCLI(map[string]any{"loglevel": "error"}))

	err := cmd.Run(context.Background())

	require.ErrorIs(t, err, plain)
	assert.Equal(t, domain.KindUnclassified, domain.KindOf(err))
	var uerr *domain.UnclassifiedError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, domain.CodeUnclassified, uerr.Code)

	out := f.out.String()
	assert.Contains(t, out, "plain failure")
	assert.Contains(t, out, "stack=")
	assert.Contains(t, out, "TestRun_PlainError", "the caller's frame is kept")
	assert.True(t, f.diagnosticExists())
}

func TestRun_PanicIsUnclassified(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.expectHappyPath()
	h := newHandler()
	h.execPanic = "boom"

	err := f.command(h).Run(context.Background())

	var uerr *domain.UnclassifiedError
	require.ErrorAs(t, err, &uerr)
	assert.Contains(t, err.Error(), "boom")
	assert.True(t, f.diagnosticExists())
}

func TestRun_NotImplemented(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.expectHappyPath()

	err := f.command(unfinishedHandler{}).Run(context.Background())

	require.ErrorIs(t, err, domain.ErrNotImplemented)
	var uerr *domain.UnclassifiedError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, domain.CodeUnimplemented, uerr.Code)
}

func TestRun_ProjectLoadFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	parseErr := domain.NewValidationError(domain.CodeJSONParse, "Error in: lerna.json")
	f.projects.EXPECT().LoadProject(mock.Anything, f.project.RootPath).Return(nil, parseErr)

	cmd := f.command(newHandler())
	err := cmd.Run(context.Background())

	require.ErrorIs(t, err, parseErr)
	assert.Nil(t, cmd.Options(), "options are never resolved without a project")
	assert.Contains(t, f.out.String(), "Error in: lerna.json", "the sink is flushed for early failures")
}

func TestRun_BuffersUntilLoggingStage(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.expectHappyPath()
	cmd := f.command(newHandler(), lifecycle.WithCLI(map[string]any{"loglevel": "silly"}))

	require.NoError(t, cmd.Run(context.Background()))
	assert.Contains(t, f.out.String(), "environment", "records from before the logging stage are flushed")
}

func TestRun_Composed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		parent     string
		composed   bool
		wantBanner bool
	}{
		{name: "standalone", parent: "", composed: false, wantBanner: true},
		{name: "same name", parent: "fake", composed: false, wantBanner: true},
		{name: "launched by another command", parent: "version", composed: true, wantBanner: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture(t)
			f.project.Config["version"] = monorepo.IndependentVersion
			f.expectHappyPath()
			cmd := f.command(newHandler(),
				lifecycle.WithComposedBy(tt.parent),
				lifecycle.WithVersion("9.9.9"),
				lifecycle.WithCLI(map[string]any{"ci": true}),
			)

			require.NoError(t, cmd.Run(context.Background()))
			assert.Equal(t, tt.composed, cmd.Composed())

			out := f.out.String()
			if tt.wantBanner {
				assert.Contains(t, out, "9.9.9")
				assert.Contains(t, out, "versioning independent")
				assert.Contains(t, out, "ci enabled")
			} else {
				assert.NotContains(t, out, "9.9.9")
				assert.NotContains(t, out, "versioning independent")
				assert.NotContains(t, out, "ci enabled")
			}
		})
	}
}

func TestRun_HangWarnings(t *testing.T) {
	t.Parallel()

	for _, failing := range []bool{false, true} {
		f := newFixture(t)
		f.expectHappyPath()
		h := newHandler()
		if failing {
			h.execErr = &domain.PackageError{Package: "pkg-a", Command: "npm test", ExitCode: 1}
		}

		checker := mocks.NewMockHangChecker(t)
		checker.EXPECT().Name().Return("children")
		checker.EXPECT().CheckHang(mock.Anything).Return(errors.New("1 child process still running")).Once()
		registry := hangcheck.New()
		registry.Register(checker)

		_ = f.command(h, lifecycle.WithHangRegistry(registry)).Run(context.Background())

		assert.Contains(t, f.out.String(), "1 child process still running", "failing=%v", failing)
	}
}

func TestRun_CycleWarning(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.expectProject()
	f.expectGit(true)
	f.expectPackages(
		&monorepo.Package{Name: "a", Manifest: monorepo.Manifest{Name: "a", Dependencies: map[string]string{"b": "*"}}},
		&monorepo.Package{Name: "b", Manifest: monorepo.Manifest{Name: "b", Dependencies: map[string]string{"a": "*"}}},
	)

	require.NoError(t, f.command(newHandler()).Run(context.Background()))
	assert.Contains(t, f.out.String(), "a -> b")
}

func TestState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "init", lifecycle.StateInit.String())
	assert.Equal(t, "execute", lifecycle.StateExecute.String())
	assert.Equal(t, "failed", lifecycle.StateFailed.String())
	assert.Equal(t, "unknown", lifecycle.State(99).String())
}
