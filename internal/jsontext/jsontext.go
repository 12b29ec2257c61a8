// Package jsontext provides a generic JSON value tree that preserves the
// textual details encoding/json discards: object key insertion order and the
// literal form of numbers. Duplicate object keys keep the first occurrence,
// matching how npm tooling reads package.json documents.
package jsontext

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Kind identifies the shape of a Value.
type Kind int

// Value kinds.
const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "invalid"
	}
}

// Value is a single node in a parsed JSON document.
type Value struct {
	kind    Kind
	boolVal bool
	numVal  json.Number
	strVal  string
	arrVal  []*Value
	objVal  *Object
}

// Null returns the null value.
func Null() *Value {
	return &Value{kind: KindNull}
}

// Bool returns a boolean value.
func Bool(b bool) *Value {
	return &Value{kind: KindBool, boolVal: b}
}

// Number returns a numeric value carrying its literal text.
func Number(n json.Number) *Value {
	return &Value{kind: KindNumber, numVal: n}
}

// String returns a string value.
func String(s string) *Value {
	return &Value{kind: KindString, strVal: s}
}

// Array returns an array value over the given elements.
func Array(elems ...*Value) *Value {
	return &Value{kind: KindArray, arrVal: elems}
}

// ObjectValue wraps an Object as a Value.
func ObjectValue(o *Object) *Value {
	return &Value{kind: KindObject, objVal: o}
}

// Kind returns the shape of the value.
func (v *Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether the value is JSON null.
func (v *Value) IsNull() bool {
	return v.kind == KindNull
}

// AsBool returns the boolean content, if the value is a bool.
func (v *Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.boolVal, true
}

// AsNumber returns the numeric content in literal form, if the value is a number.
func (v *Value) AsNumber() (json.Number, bool) {
	if v.kind != KindNumber {
		return "", false
	}
	return v.numVal, true
}

// AsString returns the string content, if the value is a string.
func (v *Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.strVal, true
}

// AsArray returns the element slice, if the value is an array.
func (v *Value) AsArray() ([]*Value, bool) {
	if v.kind != KindArray {
		return nil, false
	}
	return v.arrVal, true
}

// AsObject returns the underlying object, if the value is an object.
func (v *Value) AsObject() (*Object, bool) {
	if v.kind != KindObject {
		return nil, false
	}
	return v.objVal, true
}

// MarshalJSON encodes the value back to JSON.
func (v *Value) MarshalJSON() ([]byte, error) {
	if v == nil {
		return []byte("null"), nil
	}
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.boolVal)
	case KindNumber:
		if v.numVal == "" {
			return []byte("0"), nil
		}
		return []byte(v.numVal), nil
	case KindString:
		return json.Marshal(v.strVal)
	case KindArray:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, elem := range v.arrVal {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := json.Marshal(elem)
			if err != nil {
				return nil, err
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case KindObject:
		return v.objVal.MarshalJSON()
	default:
		return nil, fmt.Errorf("jsontext: cannot marshal kind %d", v.kind)
	}
}

// Object is a JSON object preserving key insertion order.
type Object struct {
	keys   []string
	values map[string]*Value
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{values: make(map[string]*Value)}
}

// Len returns the number of keys.
func (o *Object) Len() int {
	return len(o.keys)
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Get returns the value for key.
func (o *Object) Get(key string) (*Value, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Set stores a value under key. A new key is appended; an existing key keeps
// its position and has its value replaced.
func (o *Object) Set(key string, v *Value) {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Delete removes key and returns its value.
func (o *Object) Delete(key string) (*Value, bool) {
	v, ok := o.values[key]
	if !ok {
		return nil, false
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return v, true
}

// Range calls fn for each entry in insertion order until fn returns false.
func (o *Object) Range(fn func(key string, v *Value) bool) {
	for _, k := range o.keys {
		if !fn(k, o.values[k]) {
			return
		}
	}
}

// MarshalJSON encodes the object with its keys in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Parse decodes a complete JSON document into a value tree.
func Parse(data []byte) (*Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := parseValue(dec)
	if err != nil {
		if err == io.EOF {
			return nil, errors.New("unexpected end of JSON input")
		}
		return nil, err
	}

	// The document must contain exactly one value.
	if _, err := dec.Token(); err != io.EOF {
		if err != nil {
			return nil, err
		}
		return nil, errors.New("unexpected data after top-level JSON value")
	}
	return v, nil
}

func parseValue(dec *json.Decoder) (*Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return parseToken(dec, tok)
}

func parseToken(dec *json.Decoder, tok json.Token) (*Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return parseObject(dec)
		case '[':
			return parseArray(dec)
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", t.String())
		}
	case bool:
		return Bool(t), nil
	case json.Number:
		return Number(t), nil
	case string:
		return String(t), nil
	case nil:
		return Null(), nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

func parseObject(dec *json.Decoder) (*Value, error) {
	obj := NewObject()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected object key %v", keyTok)
		}
		val, err := parseValue(dec)
		if err != nil {
			return nil, err
		}
		// First occurrence wins; later duplicates are parsed and dropped.
		if _, exists := obj.Get(key); !exists {
			obj.Set(key, val)
		}
	}
	if _, err := dec.Token(); err != nil { // consume '}'
		return nil, err
	}
	return ObjectValue(obj), nil
}

func parseArray(dec *json.Decoder) (*Value, error) {
	var elems []*Value
	for dec.More() {
		val, err := parseValue(dec)
		if err != nil {
			return nil, err
		}
		elems = append(elems, val)
	}
	if _, err := dec.Token(); err != nil { // consume ']'
		return nil, err
	}
	return Array(elems...), nil
}
