package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"github.com/tidwall/jsonc"
)

// LoadFile parses a project configuration file into a nested map.
//
// JSON files may contain comments and trailing commas; they are normalized
// with jsonc before parsing. Files ending in .yaml or .yml are parsed as YAML.
func LoadFile(path string) (map[string]any, error) {
	k := koanf.New(delim)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config %s: %w", path, err)
		}
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := k.Load(rawbytes.Provider(jsonc.ToJSON(data)), json.Parser()); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	return k.Raw(), nil
}

// FindFile searches dir and its ancestors for the first of ConfigFileNames.
// It returns "" when none exists.
func FindFile(dir string) string {
	dir = filepath.Clean(dir)
	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
