package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"path/filepath"
)

// PrefixManifest namespaces manifest entries in the store
const PrefixManifest = "manifest"

// ManifestKey generates a store key for a manifest file from its cleaned
// path, modification time and size. Any change to the file produces a new
// key, so stale entries are never returned.
func ManifestKey(path string, info fs.FileInfo) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d|%d", filepath.Clean(path), info.ModTime().UnixNano(), info.Size())
	return PrefixManifest + ":" + hex.EncodeToString(h.Sum(nil))
}
