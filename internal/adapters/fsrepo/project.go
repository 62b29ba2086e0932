// Package fsrepo discovers a project and its packages on the local
// filesystem: the configuration file, the root package.json, an optional
// pnpm-workspace.yaml, and every package.json matched by the package globs.
package fsrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/jsamuelsen11/lernago/internal/domain"
	"github.com/jsamuelsen11/lernago/internal/domain/monorepo"
	"github.com/jsamuelsen11/lernago/internal/platform/config"
	"github.com/jsamuelsen11/lernago/internal/ports"
)

// File names read from the project root.
const (
	ManifestFile      = "package.json"
	PnpmWorkspaceFile = "pnpm-workspace.yaml"
)

var (
	_ ports.ProjectLoader = (*Loader)(nil)
	_ ports.PackageLoader = (*Loader)(nil)
)

// Loader implements [ports.ProjectLoader] and [ports.PackageLoader].
type Loader struct{}

// NewLoader creates a Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// LoadProject implements [ports.ProjectLoader]. The root is the directory of
// the nearest configuration file at or above cwd, or cwd itself when none
// exists. Malformed files fail with an EJSONPARSE validation error.
func (l *Loader) LoadProject(_ context.Context, cwd string) (*monorepo.Project, error) {
	cwd, err := filepath.Abs(cwd)
	if err != nil {
		return nil, fmt.Errorf("resolving working directory: %w", err)
	}

	project := &monorepo.Project{RootPath: cwd}

	if path := config.FindFile(cwd); path != "" {
		cfg, err := config.LoadFile(path)
		if err != nil {
			return nil, domain.NewValidationError(domain.CodeJSONParse, "Error in: %s\n%v", path, err)
		}
		project.RootPath = filepath.Dir(path)
		project.ConfigPath = path
		project.Config = cfg
	}

	manifestPath := filepath.Join(project.RootPath, ManifestFile)
	manifest, err := readManifest(manifestPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, domain.NewValidationError(domain.CodeJSONParse, "Error in: %s\n%v", manifestPath, err)
	default:
		project.Manifest = manifest
	}

	workspaces, err := readPnpmWorkspaces(filepath.Join(project.RootPath, PnpmWorkspaceFile))
	if err != nil {
		return nil, err
	}
	project.PnpmWorkspaces = workspaces

	return project, nil
}

// rawManifest decodes the polymorphic "workspaces" field alongside the
// typed fields.
type rawManifest struct {
	monorepo.Manifest
	Workspaces json.RawMessage `json:"workspaces"`
}

func readManifest(path string) (*monorepo.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseManifest(data)
}

func parseManifest(data []byte) (*monorepo.Manifest, error) {
	var raw rawManifest
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	m := raw.Manifest
	if len(raw.Workspaces) > 0 {
		var list []string
		if err := json.Unmarshal(raw.Workspaces, &list); err == nil {
			m.Workspaces = list
		} else {
			var obj struct {
				Packages []string `json:"packages"`
			}
			if err := json.Unmarshal(raw.Workspaces, &obj); err != nil {
				return nil, fmt.Errorf("workspaces must be an array or an object with packages: %w", err)
			}
			m.Workspaces = obj.Packages
		}
	}
	return &m, nil
}

func readPnpmWorkspaces(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewUnclassified(domain.CodeUnclassified, fmt.Errorf("reading %s: %w", path, err))
	}

	var doc struct {
		Packages []string `yaml:"packages"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, domain.NewUnclassified(domain.CodeUnclassified, fmt.Errorf("parsing %s: %w", path, err))
	}
	return doc.Packages, nil
}
