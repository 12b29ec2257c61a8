package pkgjson

import (
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/quantmind-br/pkgjson-go/internal/jsontext"
)

// FileSystem supplies raw manifest text for a path. Implementations must
// decode file bytes as UTF-8 with lossy replacement of invalid sequences so
// that only an actual read failure can produce an error.
type FileSystem interface {
	ReadToStringLossy(path string) (string, error)
}

// Cache maps an absolute manifest path to a previously built, shared
// PackageJSON instance. Get must never return a partially constructed
// manifest; both methods must be safe to call from the loading context.
type Cache interface {
	// Get returns the cached manifest for path, or nil on a miss.
	Get(path string) *PackageJSON
	// Set stores a manifest under path.
	Set(path string, pkg *PackageJSON)
}

// OSFileSystem reads manifests from the local filesystem.
type OSFileSystem struct{}

// ReadToStringLossy reads the file at path, replacing invalid UTF-8 byte
// sequences with U+FFFD.
func (OSFileSystem) ReadToStringLossy(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return decodeLossy(data), nil
}

// decodeLossy decodes bytes as UTF-8, substituting U+FFFD for invalid
// sequences. The x/text UTF-8 decoder never reports an error; the fallback
// exists only to satisfy the transform signature.
func decodeLossy(data []byte) string {
	decoded, _, err := transform.Bytes(unicode.UTF8.NewDecoder(), data)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}

// Load returns the manifest at path, consulting cache first when one is
// provided. On a miss the file is read through fs, parsed, stored in the
// cache and returned. A read failure is reported as *IOError; syntactically
// invalid JSON as *DeserializeError.
func Load(path string, fs FileSystem, cache Cache) (*PackageJSON, error) {
	if cache != nil {
		if pkg := cache.Get(path); pkg != nil {
			return pkg, nil
		}
	}

	text, err := fs.ReadToStringLossy(path)
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}

	pkg, err := Parse(path, text)
	if err != nil {
		return nil, err
	}

	if cache != nil {
		cache.Set(path, pkg)
	}
	return pkg, nil
}

// Parse builds a manifest from raw source text. Empty or whitespace-only
// source yields a manifest with every field at its default value, which is
// not an error.
func Parse(path, source string) (*PackageJSON, error) {
	if strings.TrimSpace(source) == "" {
		return &PackageJSON{Path: path, Type: TypeNone}, nil
	}

	v, err := jsontext.Parse([]byte(source))
	if err != nil {
		return nil, &DeserializeError{Path: path, Err: err}
	}
	return FromValue(path, v)
}

// FromValue builds a manifest from an already parsed JSON tree. A non-object
// top-level value is treated as an empty object. Recognized keys are removed
// from the object as they are consumed; unknown keys are ignored for forward
// compatibility.
func FromValue(path string, v *jsontext.Value) (*PackageJSON, error) {
	obj, ok := v.AsObject()
	if !ok {
		obj = jsontext.NewObject()
	}

	p := &PackageJSON{Path: path, Type: TypeNone}

	if iv, ok := obj.Delete("imports"); ok {
		if o, ok := iv.AsObject(); ok {
			p.Imports = o
		}
	}
	if mv, ok := obj.Delete("main"); ok {
		if s, ok := stringValue(mv); ok {
			p.mainField = s
		}
	}
	if mv, ok := obj.Delete("module"); ok {
		if s, ok := stringValue(mv); ok {
			p.moduleField = s
		}
	}
	if nv, ok := obj.Delete("name"); ok {
		if s, ok := stringValue(nv); ok {
			p.Name = s
		}
	}
	if vv, ok := obj.Delete("version"); ok {
		if s, ok := stringValue(vv); ok {
			p.Version = s
		}
	}
	if tv, ok := obj.Delete("type"); ok {
		// Unknown type values normalize to "none" for forward compatibility.
		if s, ok := tv.AsString(); ok && (s == TypeModule || s == TypeCommonJS) {
			p.Type = s
		}
	}
	if bv, ok := obj.Delete("bin"); ok {
		p.Bin = bv
	}
	if ev, ok := obj.Delete("exports"); ok {
		exports, err := normalizeExports(ev)
		if err != nil {
			return nil, err
		}
		p.Exports = exports
	}

	p.Dependencies = parseStringMap(obj, "dependencies")
	p.DevDependencies = parseStringMap(obj, "devDependencies")
	p.Scripts = parseStringMap(obj, "scripts")

	// TypeScript consults "typings" before "types".
	tv, ok := obj.Delete("typings")
	if !ok {
		tv, ok = obj.Delete("types")
	}
	if ok {
		if s, sok := stringValue(tv); sok {
			p.Types = s
		}
	}

	if wv, ok := obj.Delete("workspaces"); ok {
		p.Workspaces = parseStringArray(wv)
	}

	return p, nil
}

// stringValue coerces a string or number node to its textual form.
func stringValue(v *jsontext.Value) (string, bool) {
	if s, ok := v.AsString(); ok {
		return s, true
	}
	if n, ok := v.AsNumber(); ok {
		return n.String(), true
	}
	return "", false
}

// parseStringMap removes key from obj and converts its object value into an
// ordered string map. Entries whose values are neither strings nor numbers
// are dropped; a non-object value yields no map.
func parseStringMap(obj *jsontext.Object, key string) *StringMap {
	v, ok := obj.Delete(key)
	if !ok {
		return nil
	}
	mapObj, ok := v.AsObject()
	if !ok {
		return nil
	}
	result := NewStringMap()
	mapObj.Range(func(k string, entry *jsontext.Value) bool {
		if s, ok := stringValue(entry); ok {
			result.Set(k, s)
		}
		return true
	})
	return result
}

// parseStringArray converts an array value into a string slice, dropping
// non-string elements. A non-array value yields nil.
func parseStringArray(v *jsontext.Value) []string {
	elems, ok := v.AsArray()
	if !ok {
		return nil
	}
	result := make([]string, 0, len(elems))
	for _, elem := range elems {
		if s, ok := elem.AsString(); ok {
			result = append(result, s)
		}
	}
	return result
}
