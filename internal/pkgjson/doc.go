// Package pkgjson parses npm package.json manifests into an immutable,
// shareable in-memory representation and classifies their dependency
// declarations into typed requirements, replicating Node.js/npm semantics:
// conditional-exports main sugar, the workspace protocol, npm aliasing, and
// module-kind sensitive entrypoint selection.
//
// # Loading
//
// Load a manifest from disk, optionally through a cache:
//
//	pkg, err := pkgjson.Load("/project/package.json", pkgjson.OSFileSystem{}, cache)
//	if err != nil {
//	    return err
//	}
//	entry := pkg.Main(pkgjson.ESM)
//
// Parse and FromValue build manifests from raw text or an already parsed
// JSON tree. Empty source is a valid, all-defaults manifest; invalid JSON is
// a *DeserializeError and an unreadable file a *IOError.
//
// # Dependency resolution
//
// ResolveDeps lazily classifies dependencies and devDependencies, at most
// once per manifest:
//
//	deps := pkg.ResolveDeps()
//	if entry := deps.Get("lodash"); entry != nil && entry.Err == nil {
//	    // entry.Value.Name, entry.Value.Req
//	}
//
// A single malformed entry is recorded as that alias's result
// (*VersionReqError or *UnsupportedSchemeError) and never blocks its
// siblings.
package pkgjson
