package pkgjson

import (
	"strings"

	"github.com/quantmind-br/pkgjson-go/internal/jsontext"
)

// normalizeExports converts the raw "exports" value into subpath-keyed form.
// A string or array is main-entrypoint sugar and is wrapped under ".". An
// object whose keys are all condition names (no leading '.') is sugar too and
// is wrapped whole. Null and other scalars yield no exports. An object mixing
// subpath keys and condition-name keys returns ErrMixedExports.
func normalizeExports(v *jsontext.Value) (*jsontext.Object, error) {
	sugar, err := isMainSugar(v)
	if err != nil {
		return nil, err
	}
	if sugar {
		obj := jsontext.NewObject()
		obj.Set(".", v)
		return obj, nil
	}
	obj, ok := v.AsObject()
	if !ok {
		return nil, nil
	}
	return obj, nil
}

// isMainSugar reports whether the exports value uses the main entrypoint
// shorthand. For objects the first key establishes the style and every
// subsequent key must match it; an empty object has no keys to establish a
// style and is not sugar.
func isMainSugar(v *jsontext.Value) (bool, error) {
	switch v.Kind() {
	case jsontext.KindString, jsontext.KindArray:
		return true, nil
	}

	obj, ok := v.AsObject()
	if !ok {
		return false, nil
	}

	sugar := false
	for i, key := range obj.Keys() {
		cur := key == "" || !strings.HasPrefix(key, ".")
		if i == 0 {
			sugar = cur
		} else if sugar != cur {
			return false, ErrMixedExports
		}
	}
	return sugar, nil
}
