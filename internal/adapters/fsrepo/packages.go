package fsrepo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/jsamuelsen11/lernago/internal/domain"
	"github.com/jsamuelsen11/lernago/internal/domain/monorepo"
	"github.com/jsamuelsen11/lernago/internal/platform/logging"
)

// LoadPackages implements [ports.PackageLoader]. Each glob is matched
// against directories holding a package.json; matches under node_modules
// and globs reaching outside the root are ignored. Packages keep glob
// order, sorted by path within one glob, and each directory appears once.
func (l *Loader) LoadPackages(ctx context.Context, project *monorepo.Project) ([]*monorepo.Package, error) {
	logger := logging.FromContext(ctx)
	root := os.DirFS(project.RootPath)

	seen := make(map[string]bool)
	var packages []*monorepo.Package

	for _, glob := range project.PackageGlobs() {
		pattern, ok := manifestPattern(glob)
		if !ok {
			logger.WarnContext(ctx, "ignoring package glob outside the project root", slog.String("glob", glob))
			continue
		}

		matches, err := doublestar.Glob(root, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, domain.NewUnclassified(domain.CodeUnclassified, fmt.Errorf("matching package glob %q: %w", glob, err))
		}
		slices.Sort(matches)

		for _, match := range matches {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			dir := path.Dir(match)
			if seen[dir] || inNodeModules(dir) {
				continue
			}
			seen[dir] = true

			pkg, err := loadPackage(filepath.Join(project.RootPath, filepath.FromSlash(dir)))
			if err != nil {
				return nil, err
			}
			if pkg.Name == "" {
				logger.WarnContext(ctx, "skipping package without a name", slog.String("location", pkg.Location))
				continue
			}
			packages = append(packages, pkg)
		}
	}

	return packages, nil
}

// manifestPattern turns a package glob into a slash-separated pattern for
// the package.json files below it. It rejects absolute globs and globs
// that climb out of the root.
func manifestPattern(glob string) (string, bool) {
	glob = filepath.ToSlash(strings.TrimSpace(glob))
	if glob == "" || path.IsAbs(glob) {
		return "", false
	}
	glob = path.Clean(strings.TrimSuffix(glob, "/"+ManifestFile))
	if glob == ".." || strings.HasPrefix(glob, "../") {
		return "", false
	}
	if glob == "." {
		return ManifestFile, true
	}
	return glob + "/" + ManifestFile, true
}

func inNodeModules(dir string) bool {
	return slices.Contains(strings.Split(dir, "/"), "node_modules")
}

func loadPackage(dir string) (*monorepo.Package, error) {
	manifestPath := filepath.Join(dir, ManifestFile)
	manifest, err := readManifest(manifestPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading %s: %w", manifestPath, err)
	}
	if err != nil {
		return nil, domain.NewValidationError(domain.CodeJSONParse, "Error in: %s\n%v", manifestPath, err)
	}
	return &monorepo.Package{
		Name:     manifest.Name,
		Location: dir,
		Manifest: *manifest,
	}, nil
}
