package monorepo

// Manifest is the subset of a package.json the lifecycle relies on.
type Manifest struct {
	Name                 string            `json:"name"`
	Version              string            `json:"version"`
	Private              bool              `json:"private"`
	Scripts              map[string]string `json:"scripts"`
	Dependencies         map[string]string `json:"dependencies"`
	DevDependencies      map[string]string `json:"devDependencies"`
	OptionalDependencies map[string]string `json:"optionalDependencies"`
	PeerDependencies     map[string]string `json:"peerDependencies"`

	// Workspaces holds the "workspaces" globs. Both the array form and the
	// {"packages": [...]} object form decode into it.
	Workspaces []string `json:"-"`
}

// Package is a single package of the project.
type Package struct {
	Name     string
	Location string
	Manifest Manifest
}

// Version returns the manifest version.
func (p *Package) Version() string {
	return p.Manifest.Version
}

// Private reports whether the package is marked private.
func (p *Package) Private() bool {
	return p.Manifest.Private
}

// HasScript reports whether the manifest declares the named script.
func (p *Package) HasScript(name string) bool {
	_, ok := p.Manifest.Scripts[name]
	return ok
}

// AllDependencies merges dependencies, devDependencies and
// optionalDependencies. Later maps win on duplicate names, matching the
// order npm resolves them in.
func (p *Package) AllDependencies() map[string]string {
	out := make(map[string]string,
		len(p.Manifest.Dependencies)+len(p.Manifest.DevDependencies)+len(p.Manifest.OptionalDependencies))
	for name, spec := range p.Manifest.DevDependencies {
		out[name] = spec
	}
	for name, spec := range p.Manifest.Dependencies {
		out[name] = spec
	}
	for name, spec := range p.Manifest.OptionalDependencies {
		out[name] = spec
	}
	return out
}
