package pkgjson

import (
	"errors"
	"fmt"
)

// Sentinel errors for the pkgjson package
var (
	// ErrMixedExports indicates an "exports" object mixing subpath keys and
	// condition-name keys. The two styles are irreconcilable: picking one
	// interpretation could resolve to the wrong module subpath at runtime.
	ErrMixedExports = errors.New(`"exports" cannot contain some keys starting with '.' and some not; ` +
		`the exports object must either be an object of package subpath keys ` +
		`or an object of main entry condition name keys only`)
)

// IOError indicates a package.json file could not be read.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed reading '%s': %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// DeserializeError indicates a package.json file is not syntactically valid JSON.
type DeserializeError struct {
	Path string
	Err  error
}

func (e *DeserializeError) Error() string {
	return fmt.Sprintf("malformed package.json '%s': %v", e.Path, e.Err)
}

func (e *DeserializeError) Unwrap() error {
	return e.Err
}

// UnsupportedSchemeError indicates a dependency value using a URL-like scheme
// this resolver does not implement (file, git, http, https).
type UnsupportedSchemeError struct {
	Scheme string
}

func (e *UnsupportedSchemeError) Error() string {
	return fmt.Sprintf("not implemented scheme '%s'", e.Scheme)
}

// VersionReqError indicates a dependency value whose version requirement
// could not be parsed.
type VersionReqError struct {
	Req string
	Err error
}

func (e *VersionReqError) Error() string {
	return fmt.Sprintf("invalid version requirement '%s': %v", e.Req, e.Err)
}

func (e *VersionReqError) Unwrap() error {
	return e.Err
}
