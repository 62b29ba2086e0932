package monorepo

import (
	"reflect"
	"testing"
)

func TestProject_Version(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		config          map[string]any
		wantVersion     string
		wantIndependent bool
	}{
		{name: "no config", config: nil, wantVersion: ""},
		{name: "no version field", config: map[string]any{"packages": []any{"x/*"}}, wantVersion: ""},
		{name: "fixed", config: map[string]any{"version": "1.2.3"}, wantVersion: "1.2.3"},
		{name: "independent", config: map[string]any{"version": "independent"}, wantVersion: "independent", wantIndependent: true},
		{name: "integer version", config: map[string]any{"version": 3}, wantVersion: "3"},
		{name: "float version", config: map[string]any{"version": 1.5}, wantVersion: "1.5"},
		{name: "non-scalar version", config: map[string]any{"version": []any{"1"}}, wantVersion: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := &Project{Config: tt.config}
			if got := p.Version(); got != tt.wantVersion {
				t.Errorf("Version() = %q, want %q", got, tt.wantVersion)
			}
			if got := p.IsIndependent(); got != tt.wantIndependent {
				t.Errorf("IsIndependent() = %v, want %v", got, tt.wantIndependent)
			}
		})
	}
}

func TestProject_PackageGlobs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		project Project
		want    []string
	}{
		{
			name:    "default when nothing configured",
			project: Project{Config: map[string]any{"version": "1.0.0"}},
			want:    []string{"packages/*"},
		},
		{
			name:    "config packages",
			project: Project{Config: map[string]any{"packages": []any{"libs/*", "apps/*"}}},
			want:    []string{"libs/*", "apps/*"},
		},
		{
			name: "npm workspaces from manifest",
			project: Project{
				Config:   map[string]any{"useWorkspaces": true, "packages": []any{"ignored/*"}},
				Manifest: &Manifest{Workspaces: []string{"modules/*"}},
			},
			want: []string{"modules/*"},
		},
		{
			name: "pnpm workspaces",
			project: Project{
				Config:         map[string]any{"useWorkspaces": true, "npmClient": "pnpm"},
				Manifest:       &Manifest{Workspaces: []string{"ignored/*"}},
				PnpmWorkspaces: []string{"pnpm/*"},
			},
			want: []string{"pnpm/*"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.project.PackageGlobs(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("PackageGlobs() = %v, want %v", got, tt.want)
			}
		})
	}
}
