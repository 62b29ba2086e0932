package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/jsamuelsen11/lernago/internal/app/lifecycle"
	"github.com/jsamuelsen11/lernago/internal/domain/monorepo"
)

// List prints the project's packages.
//
// Options read: all (include private packages), json, ndjson, long,
// parseable.
type List struct {
	packages []*monorepo.Package
}

var (
	_ lifecycle.Handler     = (*List)(nil)
	_ lifecycle.GitRequirer = (*List)(nil)
)

// NewList creates the list command.
func NewList() *List {
	return &List{}
}

// Name implements [lifecycle.Handler].
func (l *List) Name() string { return "list" }

// RequiresGit implements [lifecycle.GitRequirer].
func (l *List) RequiresGit() bool { return false }

// Initialize implements [lifecycle.Handler].
func (l *List) Initialize(_ context.Context, cmd *lifecycle.Command) (bool, error) {
	all := cmd.Options().Bool("all")
	l.packages = l.packages[:0]
	for _, pkg := range cmd.PackageGraph().Packages() {
		if all || !pkg.Private() {
			l.packages = append(l.packages, pkg)
		}
	}
	return true, nil
}

// listEntry is the JSON shape of one package.
type listEntry struct {
	Name     string `json:"name"`
	Version  string `json:"version"`
	Private  bool   `json:"private"`
	Location string `json:"location"`
}

// Execute implements [lifecycle.Handler].
func (l *List) Execute(ctx context.Context, cmd *lifecycle.Command) error {
	opts := cmd.Options()
	out := cmd.Stdout()
	root := cmd.Project().RootPath

	var err error
	switch {
	case opts.Bool("json"):
		err = l.writeJSON(out)
	case opts.Bool("ndjson"):
		err = l.writeNDJSON(out)
	case opts.Bool("parseable"):
		err = l.writeParseable(out, opts.Bool("long"))
	case opts.Bool("long"):
		err = l.writeLong(out, root)
	default:
		for _, pkg := range l.packages {
			if _, err = fmt.Fprintln(out, pkg.Name); err != nil {
				break
			}
		}
	}
	if err != nil {
		return fmt.Errorf("writing package list: %w", err)
	}

	cmd.Logger().InfoContext(ctx, fmt.Sprintf("found %d %s", len(l.packages), plural(len(l.packages), "package")))
	return nil
}

func (l *List) entries() []listEntry {
	entries := make([]listEntry, 0, len(l.packages))
	for _, pkg := range l.packages {
		entries = append(entries, listEntry{
			Name:     pkg.Name,
			Version:  pkg.Version(),
			Private:  pkg.Private(),
			Location: pkg.Location,
		})
	}
	return entries
}

func (l *List) writeJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(l.entries())
}

func (l *List) writeNDJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	for _, e := range l.entries() {
		if err := enc.Encode(e); err != nil {
			return err
		}
	}
	return nil
}

func (l *List) writeParseable(w io.Writer, long bool) error {
	for _, pkg := range l.packages {
		line := pkg.Location
		if long {
			line = strings.Join([]string{pkg.Location, pkg.Name, versionOrMissing(pkg)}, ":")
			if pkg.Private() {
				line += ":PRIVATE"
			}
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func (l *List) writeLong(w io.Writer, root string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	for _, pkg := range l.packages {
		version := versionOrMissing(pkg)
		if pkg.Private() {
			version += " (PRIVATE)"
		}
		rel, err := filepath.Rel(root, pkg.Location)
		if err != nil {
			rel = pkg.Location
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\n", pkg.Name, version, rel); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func versionOrMissing(pkg *monorepo.Package) string {
	if v := pkg.Version(); v != "" {
		return "v" + v
	}
	return "MISSING"
}
