// Package monorepo models a monorepo project, its packages, and the
// dependency graph between them. The types are plain data; discovery and
// parsing live in the fsrepo adapter.
package monorepo

import (
	"fmt"
	"strings"
)

// IndependentVersion is the config version value that selects independent
// versioning mode.
const IndependentVersion = "independent"

// DefaultPackageGlobs is used when neither the config nor the workspace
// settings name package locations.
var DefaultPackageGlobs = []string{"packages/*"}

// Project is the monorepo root together with its manifest and configuration.
type Project struct {
	// RootPath is the absolute directory holding the configuration file, or
	// the working directory when no configuration file was found.
	RootPath string

	// ConfigPath is the configuration file location. Empty when not found.
	ConfigPath string

	// Config is the parsed configuration file. Nil when not found.
	Config map[string]any

	// Manifest is the root package.json. Nil when absent.
	Manifest *Manifest

	// PnpmWorkspaces lists the globs from pnpm-workspace.yaml, if present.
	PnpmWorkspaces []string
}

// Version returns the configured version, or "" when none is declared.
// Numeric values, such as an unquoted YAML "version: 1.0", are formatted.
func (p *Project) Version() string {
	if p.Config == nil {
		return ""
	}
	switch v := p.Config["version"].(type) {
	case string:
		return strings.TrimSpace(v)
	case int, int64, uint64, float64:
		return fmt.Sprint(v)
	default:
		return ""
	}
}

// IsIndependent reports whether the project uses independent versioning.
func (p *Project) IsIndependent() bool {
	return p.Version() == IndependentVersion
}

// NpmClient returns the configured package-manager client, defaulting to npm.
func (p *Project) NpmClient() string {
	if p.Config != nil {
		if c, ok := p.Config["npmClient"].(string); ok && c != "" {
			return c
		}
	}
	return "npm"
}

// UsesWorkspaces reports whether package locations come from the package
// manager's workspace declaration instead of the config's "packages" list.
func (p *Project) UsesWorkspaces() bool {
	if p.Config == nil {
		return false
	}
	b, _ := p.Config["useWorkspaces"].(bool)
	return b
}

// PackageGlobs returns the globs, relative to RootPath, that locate packages.
func (p *Project) PackageGlobs() []string {
	if p.UsesWorkspaces() {
		if p.NpmClient() == "pnpm" {
			if len(p.PnpmWorkspaces) > 0 {
				return p.PnpmWorkspaces
			}
		} else if p.Manifest != nil && len(p.Manifest.Workspaces) > 0 {
			return p.Manifest.Workspaces
		}
	}
	if p.Config != nil {
		if globs := stringSlice(p.Config["packages"]); len(globs) > 0 {
			return globs
		}
	}
	return DefaultPackageGlobs
}

func stringSlice(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}
