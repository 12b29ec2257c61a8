package pkgjson

import (
	"bytes"
	"encoding/json"
)

// StringMap is a string-to-string map preserving insertion order, used for
// the dependencies, devDependencies and scripts fields.
type StringMap struct {
	keys   []string
	values map[string]string
}

// NewStringMap returns an empty StringMap.
func NewStringMap() *StringMap {
	return &StringMap{values: make(map[string]string)}
}

// Len returns the number of entries.
func (m *StringMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *StringMap) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Get returns the value for key.
func (m *StringMap) Get(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.values[key]
	return v, ok
}

// Set stores a value under key. A new key is appended; an existing key keeps
// its position and has its value replaced.
func (m *StringMap) Set(key, value string) {
	if _, exists := m.values[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Range calls fn for each entry in insertion order until fn returns false.
func (m *StringMap) Range(fn func(key, value string) bool) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			return
		}
	}
}

// MarshalJSON encodes the map with its keys in insertion order.
func (m *StringMap) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
