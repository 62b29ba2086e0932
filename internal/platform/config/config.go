// Package config resolves command options from layered sources and loads
// project configuration files.
//
// Options are merged from five layers (highest precedence first):
//
//  1. CLI-supplied values
//  2. the command's own section, "command.<name>" in the project config
//  3. sections of inherited commands, in declaration order
//  4. the global project configuration
//  5. environment defaults: terminal/CI detection overlaid with LERNA_* vars
//
// For every top-level key the highest layer that defines it wins. Merging is
// shallow: a layer that defines a key replaces the whole value, nested maps
// included. Nil values count as undefined.
package config

import (
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
)

// Options is the resolved, read-only option set of one command.
type Options struct {
	k *koanf.Koanf
}

// NewOptions builds an Options holding exactly values. Nil values are
// dropped.
func NewOptions(values map[string]any) *Options {
	k := koanf.New(delim)
	// confmap.Provider never fails to read and a nil parser is allowed.
	_ = k.Load(confmap.Provider(prune(values), ""), nil, koanf.WithMergeFunc(shallowMerge))
	return &Options{k: k}
}

// Exists reports whether key is defined.
func (o *Options) Exists(key string) bool {
	return o.k.Exists(key)
}

// Get returns the raw value for key, or nil.
func (o *Options) Get(key string) any {
	return o.k.Get(key)
}

// String returns the value for key as a string, or "".
func (o *Options) String(key string) string {
	return o.k.String(key)
}

// Bool returns the value for key as a bool. Strings such as "true" and "0"
// are parsed; undefined keys are false.
func (o *Options) Bool(key string) bool {
	return o.k.Bool(key)
}

// Int returns the value for key as an int, or 0.
func (o *Options) Int(key string) int {
	return o.k.Int(key)
}

// Strings returns the value for key as a string slice, or nil.
func (o *Options) Strings(key string) []string {
	return o.k.Strings(key)
}

// All returns a copy of every resolved option as a nested map.
func (o *Options) All() map[string]any {
	return o.k.Raw()
}
