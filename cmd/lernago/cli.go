package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jsamuelsen11/lernago/internal/adapters/npmscript"
	"github.com/jsamuelsen11/lernago/internal/app/commands"
	"github.com/jsamuelsen11/lernago/internal/app/lifecycle"
)

func newRootCommand(injector do.Injector) *cobra.Command {
	root := &cobra.Command{
		Use:           "lernago",
		Short:         "Run commands across the packages of a JavaScript monorepo",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	flags := root.PersistentFlags()
	flags.String("loglevel", "", "what level of logs to report (silly, verbose, info, notice, warn, error, silent)")
	flags.Bool("verbose", false, "log at verbose level unless --loglevel silly")
	flags.String("log-format", "", "log output format (text or json)")
	flags.Int("concurrency", 0, "how many processes to use when parallelizing tasks")
	flags.Bool("no-sort", false, "do not sort packages topologically")
	flags.Int("max-buffer", 0, "set max-buffer (in bytes) for subcommand execution")
	flags.Bool("ci", false, "treat the environment as continuous integration")
	flags.Bool("no-progress", false, "disable progress bars")
	flags.BoolP("independent", "i", false, "require the repository to use independent versioning")
	flags.String("since", "", "only include packages changed since the given git ref")

	root.AddCommand(newRunCommand(injector), newListCommand(injector))
	return root
}

func newRunCommand(injector do.Injector) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <script> [-- <args>...]",
		Short: "Run an npm script in each package that contains that script",
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := do.Invoke[*npmscript.Runner](injector)
			if err != nil {
				return fmt.Errorf("resolving script runner: %w", err)
			}

			values := flagValues(cmd.Flags())
			if len(args) > 0 {
				values["script"] = args[0]
				values["args"] = args[1:]
			}
			return runLifecycle(cmd.Context(), injector, commands.NewRun(runner), values)
		},
	}

	flags := cmd.Flags()
	flags.Bool("stream", false, "stream output with lines prefixed by package")
	flags.Bool("parallel", false, "run script with unlimited concurrency, streaming prefixed output")
	flags.Bool("no-bail", false, "continue running script despite non-zero exit in a given package")
	flags.Bool("no-prefix", false, "do not prefix streaming output")
	flags.String("npm-client", "", "executable used to run scripts (npm, yarn, pnpm, ...)")
	return cmd
}

func newListCommand(injector do.Injector) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List local packages",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLifecycle(cmd.Context(), injector, commands.NewList(), flagValues(cmd.Flags()))
		},
	}

	flags := cmd.Flags()
	flags.BoolP("all", "a", false, "show private packages that are normally hidden")
	flags.BoolP("long", "l", false, "show extended information")
	flags.BoolP("parseable", "p", false, "show parseable output instead of columnified view")
	flags.Bool("json", false, "show information as a JSON array")
	flags.Bool("ndjson", false, "show information as newline-delimited JSON")
	return cmd
}

func runLifecycle(ctx context.Context, injector do.Injector, h lifecycle.Handler, values map[string]any) error {
	opts, err := lifecycleOptions(injector)
	if err != nil {
		return err
	}
	opts = append(opts, lifecycle.WithCLI(values))

	if err := lifecycle.New(h, opts...).Run(ctx); err != nil {
		return &reportedError{err: err}
	}
	return nil
}

// flagValues converts the flags set on the command line into option
// values. Names are camel-cased and "--no-x" becomes x=false. Flags left at
// their defaults are omitted so lower-precedence sources still apply.
func flagValues(fs *pflag.FlagSet) map[string]any {
	values := make(map[string]any)
	fs.Visit(func(f *pflag.Flag) {
		key, value := flagValue(fs, f)
		values[key] = value
	})
	return values
}

func flagValue(fs *pflag.FlagSet, f *pflag.Flag) (string, any) {
	name := f.Name
	switch f.Value.Type() {
	case "bool":
		b, _ := strconv.ParseBool(f.Value.String())
		if negated, ok := strings.CutPrefix(name, "no-"); ok {
			return camelCase(negated), !b
		}
		return camelCase(name), b
	case "int":
		n, _ := fs.GetInt(name)
		return camelCase(name), n
	case "stringSlice":
		s, _ := fs.GetStringSlice(name)
		return camelCase(name), s
	default:
		return camelCase(name), f.Value.String()
	}
}

// camelCase turns a kebab-case flag name into its option key.
func camelCase(name string) string {
	parts := strings.Split(name, "-")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}
