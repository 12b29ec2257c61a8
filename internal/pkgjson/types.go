package pkgjson

import (
	"bytes"
	"encoding/json"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"github.com/quantmind-br/pkgjson-go/internal/jsontext"
)

// ModuleKind is the module system a referrer is being loaded as. It affects
// which entrypoint field a package resolves to.
type ModuleKind int

const (
	// ESM marks a referrer loaded as an ES module.
	ESM ModuleKind = iota
	// CJS marks a referrer loaded as a CommonJS module.
	CJS
)

// Package type values as normalized from the "type" field.
const (
	TypeModule   = "module"
	TypeCommonJS = "commonjs"
	TypeNone     = "none"
)

// PackageJSON is the parsed representation of one package.json file.
//
// A PackageJSON is immutable after construction and safe for concurrent use;
// the only mutable state is the lazily computed dependency set behind
// ResolveDeps, which is guarded internally. Optional string fields use the
// empty string as the absent value.
type PackageJSON struct {
	// Path is the absolute path of the manifest file.
	Path string

	Name    string
	Version string

	// Type is the normalized "type" field: exactly "module" or "commonjs"
	// pass through, anything else collapses to "none".
	Type string

	// Types is the TypeScript declaration entrypoint; the "typings" field is
	// preferred over "types" when both are present.
	Types string

	// Exports is the "exports" field normalized to subpath-keyed form.
	Exports *jsontext.Object

	// Imports is the raw "imports" object.
	Imports *jsontext.Object

	// Bin is the raw "bin" value, which npm allows in several shapes.
	Bin *jsontext.Value

	Dependencies    *StringMap
	DevDependencies *StringMap
	Scripts         *StringMap

	Workspaces []string

	// Raw entrypoint fields, selected through Main.
	mainField   string
	moduleField string

	depsOnce     sync.Once
	resolvedDeps *ResolvedDeps
}

// Main returns the entrypoint for the given referrer kind. For an ES module
// referrer in a "type": "module" package the "module" field is preferred,
// falling back to "main" when "module" is absent or blank; every other
// combination uses "main". The result is trimmed and an empty result means
// the package declares no entrypoint.
func (p *PackageJSON) Main(kind ModuleKind) string {
	if kind == ESM && p.Type == TypeModule {
		if m := strings.TrimSpace(p.moduleField); m != "" {
			return m
		}
	}
	return strings.TrimSpace(p.mainField)
}

// DirPath returns the directory owning the manifest.
func (p *PackageJSON) DirPath() string {
	return filepath.Dir(p.Path)
}

// Specifier returns the file URL of the manifest.
func (p *PackageJSON) Specifier() string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(p.Path)}
	return u.String()
}

// MarshalJSON serializes the manifest back to its recognized field set.
// Internal state (the path and the resolved dependency set) is skipped,
// "typings" and "types" collapse into a single "types" key, and "type" is
// omitted when it normalized to "none" so that documents without the field
// round-trip unchanged.
func (p *PackageJSON) MarshalJSON() ([]byte, error) {
	fields := []struct {
		name    string
		value   any
		present bool
	}{
		{"exports", p.Exports, p.Exports != nil},
		{"imports", p.Imports, p.Imports != nil},
		{"bin", p.Bin, p.Bin != nil},
		{"main", p.mainField, p.mainField != ""},
		{"module", p.moduleField, p.moduleField != ""},
		{"name", p.Name, p.Name != ""},
		{"version", p.Version, p.Version != ""},
		{"type", p.Type, p.Type != TypeNone},
		{"types", p.Types, p.Types != ""},
		{"dependencies", p.Dependencies, p.Dependencies != nil},
		{"devDependencies", p.DevDependencies, p.DevDependencies != nil},
		{"scripts", p.Scripts, p.Scripts != nil},
		{"workspaces", p.Workspaces, p.Workspaces != nil},
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, f := range fields {
		if !f.present {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		kb, err := json.Marshal(f.name)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(f.value)
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
