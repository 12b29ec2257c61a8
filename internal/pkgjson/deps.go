package pkgjson

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// DepKind classifies a successfully resolved dependency value.
type DepKind int

const (
	// DepVersionReq is a registry requirement: a package name plus a
	// version range.
	DepVersionReq DepKind = iota
	// DepWorkspace is a requirement resolved against a sibling package in
	// the local workspace.
	DepWorkspace
)

// WorkspaceKind distinguishes the three workspace requirement forms.
type WorkspaceKind int

const (
	// WorkspaceVersion is "workspace:<req>" with an explicit requirement,
	// including "workspace:*".
	WorkspaceVersion WorkspaceKind = iota
	// WorkspaceTilde is "workspace:~", any current version.
	WorkspaceTilde
	// WorkspaceCaret is "workspace:^", any compatible version under caret
	// rules.
	WorkspaceCaret
)

// DepValue is one classified dependency requirement.
type DepValue struct {
	Kind DepKind

	// Name is the effective package name: the npm-alias target when the raw
	// value used "npm:", otherwise the declaring alias. Empty for workspace
	// requirements.
	Name string

	// Req is the parsed version requirement. Nil for the tilde and caret
	// workspace forms, which carry no explicit requirement.
	Req *semver.Constraints

	// RawReq is the requirement text as written in the manifest.
	RawReq string

	// Workspace is the workspace sub-form when Kind is DepWorkspace.
	Workspace WorkspaceKind
}

// DepEntry is the per-alias resolution result: either a classified value or
// the error that prevented classification. A failed entry never aborts the
// resolution of its siblings.
type DepEntry struct {
	Value *DepValue
	Err   error
}

// DepsMap maps dependency aliases to their resolution results, preserving
// the manifest's declaration order.
type DepsMap struct {
	keys    []string
	entries map[string]*DepEntry
}

func newDepsMap() *DepsMap {
	return &DepsMap{entries: make(map[string]*DepEntry)}
}

func (m *DepsMap) add(alias string, entry *DepEntry) {
	if _, exists := m.entries[alias]; exists {
		return
	}
	m.keys = append(m.keys, alias)
	m.entries[alias] = entry
}

// Len returns the number of aliases.
func (m *DepsMap) Len() int {
	return len(m.keys)
}

// Keys returns the aliases in declaration order.
func (m *DepsMap) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Get returns the resolution result for alias, or nil when absent.
func (m *DepsMap) Get(alias string) *DepEntry {
	return m.entries[alias]
}

// Range calls fn for each entry in declaration order until fn returns false.
func (m *DepsMap) Range(fn func(alias string, entry *DepEntry) bool) {
	for _, k := range m.keys {
		if !fn(k, m.entries[k]) {
			return
		}
	}
}

// ResolvedDeps is the classified view over a manifest's dependencies and
// devDependencies. The two maps are kept separate; duplicate aliases across
// them are not merged.
type ResolvedDeps struct {
	Dependencies    *DepsMap
	DevDependencies *DepsMap
}

// Get returns the resolution result for alias, checking dependencies first
// and falling back to devDependencies.
func (d *ResolvedDeps) Get(alias string) *DepEntry {
	if entry := d.Dependencies.Get(alias); entry != nil {
		return entry
	}
	return d.DevDependencies.Get(alias)
}

// ResolveDeps classifies the manifest's raw dependency maps into typed
// requirement results. The work runs at most once per manifest, even under
// concurrent first access; every caller observes the same completed result.
func (p *PackageJSON) ResolveDeps() *ResolvedDeps {
	p.depsOnce.Do(func() {
		p.resolvedDeps = &ResolvedDeps{
			Dependencies:    classifyMap(p.Dependencies),
			DevDependencies: classifyMap(p.DevDependencies),
		}
	})
	return p.resolvedDeps
}

func classifyMap(deps *StringMap) *DepsMap {
	result := newDepsMap()
	deps.Range(func(alias, raw string) bool {
		entry := &DepEntry{}
		entry.Value, entry.Err = classifyDep(alias, raw)
		result.add(alias, entry)
		return true
	})
	return result
}

// classifyDep converts one raw dependency string into a typed requirement.
// Precedence: workspace protocol, then unsupported URL-like schemes, then
// npm aliasing, then a plain version requirement under the alias name.
func classifyDep(alias, value string) (*DepValue, error) {
	if rest, ok := strings.CutPrefix(value, "workspace:"); ok {
		switch rest {
		case "~":
			return &DepValue{Kind: DepWorkspace, Workspace: WorkspaceTilde, RawReq: rest}, nil
		case "^":
			return &DepValue{Kind: DepWorkspace, Workspace: WorkspaceCaret, RawReq: rest}, nil
		default:
			req, err := semver.NewConstraint(rest)
			if err != nil {
				return nil, &VersionReqError{Req: rest, Err: err}
			}
			return &DepValue{
				Kind:      DepWorkspace,
				Workspace: WorkspaceVersion,
				Req:       req,
				RawReq:    rest,
			}, nil
		}
	}

	if strings.HasPrefix(value, "file:") ||
		strings.HasPrefix(value, "git:") ||
		strings.HasPrefix(value, "http:") ||
		strings.HasPrefix(value, "https:") {
		scheme, _, _ := strings.Cut(value, ":")
		return nil, &UnsupportedSchemeError{Scheme: scheme}
	}

	name, rawReq := splitNameAndReq(alias, value)
	req, err := semver.NewConstraint(rawReq)
	if err != nil {
		return nil, &VersionReqError{Req: rawReq, Err: err}
	}
	return &DepValue{Kind: DepVersionReq, Name: name, Req: req, RawReq: rawReq}, nil
}

// splitNameAndReq determines the effective package name and raw requirement,
// taking npm package aliases into account. "npm:pkg@1.2" under any alias
// names pkg; "npm:@scope/pkg" has no version separator (the only '@' starts
// the scope) and defaults to "*".
func splitNameAndReq(alias, value string) (name, rawReq string) {
	spec, ok := strings.CutPrefix(value, "npm:")
	if !ok {
		return alias, value
	}
	at := strings.LastIndex(spec, "@")
	if at <= 0 {
		return spec, "*"
	}
	return spec[:at], spec[at+1:]
}
