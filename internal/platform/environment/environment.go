// Package environment inspects the host terminal and CI context and produces
// the lowest-precedence option defaults (ci, progress, loglevel) together
// with the color and unicode decisions for log output.
//
// Rules are evaluated in order and the first applicable one wins:
//
//  1. CI detected, or stderr is not a terminal: color off, progress=false.
//  2. Else stdout is not a terminal: progress=false, loglevel="error".
//  3. Else stderr is a terminal: color and unicode on.
//
// Fields no rule sets stay undefined so that other sources can fill them.
package environment

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// ciVariables are environment variables whose presence marks a CI run.
var ciVariables = []string{
	"CI",
	"CONTINUOUS_INTEGRATION",
	"BUILD_NUMBER",
	"RUN_ID",
	"GITHUB_ACTIONS",
	"GITLAB_CI",
	"BUILDKITE",
	"CIRCLECI",
	"TF_BUILD",
	"JENKINS_URL",
	"TEAMCITY_VERSION",
}

// Probe is the host state the detector reads. Use Host for the real process.
type Probe struct {
	LookupEnv func(key string) (string, bool)
	StdoutTTY bool
	StderrTTY bool
}

// Host probes the current process: its environment and whether its stdout
// and stderr are attached to a terminal.
func Host() Probe {
	return Probe{
		LookupEnv: os.LookupEnv,
		StdoutTTY: term.IsTerminal(int(os.Stdout.Fd())),
		StderrTTY: term.IsTerminal(int(os.Stderr.Fd())),
	}
}

// Result is the outcome of Detect.
type Result struct {
	CI      bool
	Color   bool
	Unicode bool

	progress *bool
	loglevel string
}

// Defaults returns the option defaults for the resolver's lowest layer.
// "ci" is always present; "progress" and "loglevel" only when a rule set
// them.
func (r Result) Defaults() map[string]any {
	out := map[string]any{"ci": r.CI}
	if r.progress != nil {
		out["progress"] = *r.progress
	}
	if r.loglevel != "" {
		out["loglevel"] = r.loglevel
	}
	return out
}

// Detect applies the decision table to p.
func Detect(p Probe) Result {
	res := Result{CI: isCI(p.LookupEnv)}
	off := false

	switch {
	case res.CI || !p.StderrTTY:
		res.progress = &off
	case !p.StdoutTTY:
		res.progress = &off
		res.loglevel = "error"
	case p.StderrTTY:
		res.Color = true
		res.Unicode = true
	}

	return res
}

func isCI(lookup func(string) (string, bool)) bool {
	if lookup == nil {
		return false
	}
	if v, ok := lookup("CI"); ok && strings.EqualFold(v, "false") {
		return false
	}
	for _, key := range ciVariables {
		if _, ok := lookup(key); ok {
			return true
		}
	}
	return false
}
