// Package cache provides the two manifest caches used by pkgjson-go: an
// in-process memory cache handing out shared PackageJSON instances, and a
// BadgerDB-backed store persisting serialized manifests across CLI runs.
package cache

import (
	"errors"
	"sync"

	"github.com/quantmind-br/pkgjson-go/internal/pkgjson"
)

// ErrMiss indicates a cache miss.
var ErrMiss = errors.New("cache miss")

// Ensure Memory implements pkgjson.Cache
var _ pkgjson.Cache = (*Memory)(nil)

// Memory is an in-process manifest cache keyed by absolute path. All owners
// receive the same shared PackageJSON instance. Safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]*pkgjson.PackageJSON
}

// NewMemory creates an empty memory cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]*pkgjson.PackageJSON)}
}

// Get returns the cached manifest for path, or nil on a miss.
func (c *Memory) Get(path string) *pkgjson.PackageJSON {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[path]
}

// Set stores a manifest under path.
func (c *Memory) Set(path string, pkg *pkgjson.PackageJSON) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[path] = pkg
}

// Len returns the number of cached manifests.
func (c *Memory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear removes all entries.
func (c *Memory) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*pkgjson.PackageJSON)
}
