package monorepo

import (
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Graph is the dependency graph between the packages of one project. Edges
// exist only between packages that were handed to NewGraph, so external
// dependencies never appear in it.
type Graph struct {
	nodes map[string]*Node
	order []string
}

// Node is one package together with its local edges.
type Node struct {
	Package *Package

	// LocalDependencies holds the names of packages in the graph this
	// package depends on.
	LocalDependencies map[string]struct{}

	// LocalDependents holds the names of packages in the graph that depend
	// on this package.
	LocalDependents map[string]struct{}

	// ExternalDependencies maps dependency names that did not resolve to a
	// local package (or whose range the local version does not satisfy) to
	// their declared spec.
	ExternalDependencies map[string]string
}

// NewGraph builds the graph from packages. A dependency becomes a local edge
// when a package of that name exists and the declared spec either uses the
// workspace: or file: protocol or is a semver range satisfied by the local
// version. Packages with duplicate names keep the first occurrence.
func NewGraph(packages []*Package) *Graph {
	g := &Graph{nodes: make(map[string]*Node, len(packages))}

	for _, pkg := range packages {
		if _, dup := g.nodes[pkg.Name]; dup {
			continue
		}
		g.nodes[pkg.Name] = &Node{
			Package:              pkg,
			LocalDependencies:    make(map[string]struct{}),
			LocalDependents:      make(map[string]struct{}),
			ExternalDependencies: make(map[string]string),
		}
		g.order = append(g.order, pkg.Name)
	}

	for _, name := range g.order {
		node := g.nodes[name]
		for depName, spec := range node.Package.AllDependencies() {
			dep, ok := g.nodes[depName]
			if !ok || depName == name || !satisfiesLocal(spec, dep.Package.Version()) {
				node.ExternalDependencies[depName] = spec
				continue
			}
			node.LocalDependencies[depName] = struct{}{}
			dep.LocalDependents[name] = struct{}{}
		}
	}

	return g
}

// satisfiesLocal reports whether a dependency spec should resolve to the
// local package with the given version.
func satisfiesLocal(spec, localVersion string) bool {
	spec = strings.TrimSpace(spec)
	switch {
	case strings.HasPrefix(spec, "workspace:"), strings.HasPrefix(spec, "file:"), strings.HasPrefix(spec, "link:"):
		return true
	case spec == "" || spec == "*" || spec == "latest":
		return true
	}

	constraint, err := semver.NewConstraint(spec)
	if err != nil {
		// Git URLs, tarballs and tags are never local.
		return false
	}
	version, err := semver.NewVersion(localVersion)
	if err != nil {
		return false
	}
	return constraint.Check(version)
}

// Len returns the number of packages in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Get returns the node for name.
func (g *Graph) Get(name string) (*Node, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

// Names returns package names in the order they were added.
func (g *Graph) Names() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Packages returns the packages in the order they were added.
func (g *Graph) Packages() []*Package {
	out := make([]*Package, 0, len(g.order))
	for _, name := range g.order {
		out = append(out, g.nodes[name].Package)
	}
	return out
}

// Cycles returns every dependency cycle as a sorted list of package names.
// It uses Tarjan's strongly connected components; a component counts as a
// cycle when it has more than one member.
func (g *Graph) Cycles() [][]string {
	index := 0
	indices := make(map[string]int, len(g.nodes))
	lowlink := make(map[string]int, len(g.nodes))
	onStack := make(map[string]bool, len(g.nodes))
	var stack []string
	var cycles [][]string

	var strongConnect func(name string)
	strongConnect = func(name string) {
		indices[name] = index
		lowlink[name] = index
		index++
		stack = append(stack, name)
		onStack[name] = true

		for _, dep := range sortedKeys(g.nodes[name].LocalDependencies) {
			if _, seen := indices[dep]; !seen {
				strongConnect(dep)
				lowlink[name] = min(lowlink[name], lowlink[dep])
			} else if onStack[dep] {
				lowlink[name] = min(lowlink[name], indices[dep])
			}
		}

		if lowlink[name] != indices[name] {
			return
		}
		var component []string
		for {
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[top] = false
			component = append(component, top)
			if top == name {
				break
			}
		}
		if len(component) > 1 {
			sort.Strings(component)
			cycles = append(cycles, component)
		}
	}

	for _, name := range g.order {
		if _, seen := indices[name]; !seen {
			strongConnect(name)
		}
	}
	return cycles
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
