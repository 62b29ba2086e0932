package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/providers/confmap"
	env "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/v2"
)

// Sources are the inputs to Resolve.
type Sources struct {
	// CLI holds values supplied on the command line, keyed by option name.
	CLI map[string]any

	// Command is the running command's name; it selects "command.<name>".
	Command string

	// Inherited lists other command names whose config sections apply, in
	// declaration order (earlier wins).
	Inherited []string

	// Project is the parsed project configuration file. May be nil.
	Project map[string]any

	// Environment holds the detected environment defaults.
	Environment map[string]any
}

// Resolve merges all sources into one Options. Layers are loaded lowest
// precedence first with a shallow merge, so each load replaces the keys it
// defines and keeps the rest.
func Resolve(src Sources) (*Options, error) {
	k := koanf.New(delim)
	merge := koanf.WithMergeFunc(shallowMerge)

	// Layer 5: environment defaults, then LERNA_* variables over them.
	if err := k.Load(confmap.Provider(prune(src.Environment), ""), nil, merge); err != nil {
		return nil, fmt.Errorf("loading environment defaults: %w", err)
	}
	if err := k.Load(env.Provider(delim, env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: envKey,
	}), nil, merge); err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	// Layer 4: global project configuration.
	if err := k.Load(confmap.Provider(prune(src.Project), ""), nil, merge); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	// Layer 3: inherited command sections, last declared first so the
	// first declared ends up on top.
	for i := len(src.Inherited) - 1; i >= 0; i-- {
		section := commandSection(src.Project, src.Inherited[i])
		if err := k.Load(confmap.Provider(section, ""), nil, merge); err != nil {
			return nil, fmt.Errorf("loading %q command config: %w", src.Inherited[i], err)
		}
	}

	// Layer 2: the command's own section.
	if err := k.Load(confmap.Provider(commandSection(src.Project, src.Command), ""), nil, merge); err != nil {
		return nil, fmt.Errorf("loading %q command config: %w", src.Command, err)
	}

	// Layer 1: CLI.
	if err := k.Load(confmap.Provider(prune(src.CLI), ""), nil, merge); err != nil {
		return nil, fmt.Errorf("loading cli options: %w", err)
	}

	if k.Bool("verbose") && k.String("loglevel") != LogLevelSilly {
		if err := k.Load(confmap.Provider(map[string]any{"loglevel": LogLevelVerbose}, ""), nil, merge); err != nil {
			return nil, fmt.Errorf("forcing verbose log level: %w", err)
		}
	}

	return &Options{k: k}, nil
}

// commandSection returns the pruned "command.<name>" map of the project
// config, or an empty map.
func commandSection(project map[string]any, name string) map[string]any {
	if len(project) == 0 || name == "" {
		return map[string]any{}
	}
	k := koanf.New(delim)
	if err := k.Load(confmap.Provider(project, ""), nil); err != nil {
		return map[string]any{}
	}
	return prune(k.Cut("command" + delim + name).Raw())
}

// shallowMerge copies every top-level key of src over dest.
func shallowMerge(src, dest map[string]any) error {
	for key, val := range src {
		dest[key] = val
	}
	return nil
}

// prune returns a copy of m without nil values.
func prune(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for key, val := range m {
		if val != nil {
			out[key] = val
		}
	}
	return out
}

// envKey maps LERNA_NPM_CLIENT to npmClient. Reserved variables map to ""
// which the provider skips.
func envKey(key, value string) (string, any) {
	if reservedEnv[key] {
		return "", nil
	}
	parts := strings.Split(strings.ToLower(strings.TrimPrefix(key, EnvPrefix)), "_")
	var b strings.Builder
	for i, part := range parts {
		if part == "" {
			continue
		}
		if i > 0 {
			part = strings.ToUpper(part[:1]) + part[1:]
		}
		b.WriteString(part)
	}
	return b.String(), value
}
