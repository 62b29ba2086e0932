package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen11/lernago/internal/platform/config"
)

func projectConfig() map[string]any {
	return map[string]any{
		"version":   "1.0.0",
		"npmClient": "npm",
		"stream":    false,
		"command": map[string]any{
			"run": map[string]any{
				"npmClient": "yarn",
				"bail":      false,
			},
			"exec": map[string]any{
				"bail":   true,
				"stream": true,
				"prefix": false,
			},
			"base": map[string]any{
				"prefix": true,
				"since":  "main",
			},
		},
	}
}

func TestResolve_CLIWinsOverGlobal(t *testing.T) {
	t.Parallel()

	opts, err := config.Resolve(config.Sources{
		CLI:     map[string]any{"concurrency": 3},
		Command: "list",
		Project: map[string]any{"concurrency": 8},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, opts.Int("concurrency"))
}

func TestResolve_CommandSectionWinsOverGlobal(t *testing.T) {
	t.Parallel()

	opts, err := config.Resolve(config.Sources{
		Command: "run",
		Project: projectConfig(),
	})
	require.NoError(t, err)

	assert.Equal(t, "yarn", opts.String("npmClient"))
	assert.True(t, opts.Exists("bail"))
	assert.False(t, opts.Bool("bail"))
	assert.Equal(t, "1.0.0", opts.String("version"), "global keys still fill the rest")
}

func TestResolve_InheritedSections(t *testing.T) {
	t.Parallel()

	opts, err := config.Resolve(config.Sources{
		Command:   "run",
		Inherited: []string{"exec", "base"},
		Project:   projectConfig(),
	})
	require.NoError(t, err)

	assert.False(t, opts.Bool("bail"), "own section beats inherited")
	assert.True(t, opts.Bool("stream"), "inherited beats global")
	assert.False(t, opts.Bool("prefix"), "first declared inherited section wins")
	assert.Equal(t, "main", opts.String("since"), "later inherited sections fill undefined keys")
}

func TestResolve_EnvironmentDefaultsAreLowest(t *testing.T) {
	t.Parallel()

	opts, err := config.Resolve(config.Sources{
		Command:     "list",
		Project:     map[string]any{"loglevel": "warn"},
		Environment: map[string]any{"ci": true, "progress": false, "loglevel": "error"},
	})
	require.NoError(t, err)

	assert.Equal(t, "warn", opts.String("loglevel"))
	assert.True(t, opts.Bool("ci"))
	assert.True(t, opts.Exists("progress"))
}

func TestResolve_NilValuesAreUndefined(t *testing.T) {
	t.Parallel()

	opts, err := config.Resolve(config.Sources{
		CLI:     map[string]any{"npmClient": nil},
		Command: "list",
		Project: map[string]any{"npmClient": "pnpm"},
	})
	require.NoError(t, err)

	assert.Equal(t, "pnpm", opts.String("npmClient"))
}

func TestResolve_ShallowMerge(t *testing.T) {
	t.Parallel()

	opts, err := config.Resolve(config.Sources{
		CLI:     map[string]any{"ignoreChanges": map[string]any{"a": true}},
		Command: "list",
		Project: map[string]any{"ignoreChanges": map[string]any{"b": true}},
	})
	require.NoError(t, err)

	assert.True(t, opts.Exists("ignoreChanges.a"))
	assert.False(t, opts.Exists("ignoreChanges.b"), "higher layer replaces the whole value")
}

func TestResolve_Verbose(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		cli      map[string]any
		wantLeve string
	}{
		{name: "verbose forces verbose level", cli: map[string]any{"verbose": true, "loglevel": "info"}, wantLeve: "verbose"},
		{name: "silly is kept", cli: map[string]any{"verbose": true, "loglevel": "silly"}, wantLeve: "silly"},
		{name: "no verbose keeps level", cli: map[string]any{"loglevel": "warn"}, wantLeve: "warn"},
		{name: "verbose without level", cli: map[string]any{"verbose": true}, wantLeve: "verbose"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			opts, err := config.Resolve(config.Sources{CLI: tt.cli, Command: "list"})
			require.NoError(t, err)
			assert.Equal(t, tt.wantLeve, opts.String("loglevel"))
		})
	}
}

func TestResolve_EnvVars(t *testing.T) {
	t.Setenv("LERNA_NPM_CLIENT", "pnpm")
	t.Setenv("LERNA_REJECT_CYCLES", "true")
	t.Setenv("LERNA_DISPATCHER", "corepack")

	opts, err := config.Resolve(config.Sources{
		Command:     "list",
		Project:     map[string]any{"rejectCycles": false},
		Environment: map[string]any{"ci": false},
	})
	require.NoError(t, err)

	assert.Equal(t, "pnpm", opts.String("npmClient"))
	assert.False(t, opts.Bool("rejectCycles"), "project config beats env vars")
	assert.False(t, opts.Exists("dispatcher"), "reserved variables are not options")
}

func TestNewOptions(t *testing.T) {
	t.Parallel()

	opts := config.NewOptions(map[string]any{"concurrency": "4", "sort": "false", "skip": nil})

	assert.Equal(t, 4, opts.Int("concurrency"))
	assert.True(t, opts.Exists("sort"))
	assert.False(t, opts.Bool("sort"))
	assert.False(t, opts.Exists("skip"))
}
