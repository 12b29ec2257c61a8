package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmind-br/pkgjson-go/internal/pkgjson"
)

func TestMemory_GetSet(t *testing.T) {
	c := NewMemory()

	assert.Nil(t, c.Get("/project/package.json"))

	pkg := &pkgjson.PackageJSON{Path: "/project/package.json", Name: "demo"}
	c.Set("/project/package.json", pkg)

	got := c.Get("/project/package.json")
	assert.Same(t, pkg, got)
	assert.Equal(t, 1, c.Len())
}

func TestMemory_SetReplaces(t *testing.T) {
	c := NewMemory()

	first := &pkgjson.PackageJSON{Name: "first"}
	second := &pkgjson.PackageJSON{Name: "second"}
	c.Set("/p", first)
	c.Set("/p", second)

	assert.Same(t, second, c.Get("/p"))
	assert.Equal(t, 1, c.Len())
}

func TestMemory_Clear(t *testing.T) {
	c := NewMemory()
	c.Set("/a", &pkgjson.PackageJSON{})
	c.Set("/b", &pkgjson.PackageJSON{})

	c.Clear()
	assert.Equal(t, 0, c.Len())
	assert.Nil(t, c.Get("/a"))
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestStore_SetAndGet(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set("manifest:abc", []byte(`{"name":"demo"}`), 0))

	value, err := store.Get("manifest:abc")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"name":"demo"}`), value)
}

func TestStore_GetMiss(t *testing.T) {
	store := newTestStore(t)

	value, err := store.Get("manifest:missing")
	assert.Nil(t, value)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestStore_Has(t *testing.T) {
	store := newTestStore(t)

	assert.False(t, store.Has("key"))
	require.NoError(t, store.Set("key", []byte("v"), 0))
	assert.True(t, store.Has("key"))
}

func TestStore_Delete(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set("key", []byte("v"), 0))
	require.NoError(t, store.Delete("key"))
	assert.False(t, store.Has("key"))
}

func TestStore_Clear(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set("a", []byte("1"), 0))
	require.NoError(t, store.Set("b", []byte("2"), 0))
	require.Equal(t, int64(2), store.Size())

	require.NoError(t, store.Clear())
	assert.Equal(t, int64(0), store.Size())
}

func TestStore_OnDisk(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "store")
	store, err := NewStore(Options{Directory: dir})
	require.NoError(t, err)

	require.NoError(t, store.Set("key", []byte("v"), 0))
	require.NoError(t, store.Close())

	reopened, err := NewStore(Options{Directory: dir})
	require.NoError(t, err)
	defer reopened.Close()

	value, err := reopened.Get("key")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), value)
}

func TestManifestKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "package.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	info, err := os.Stat(path)
	require.NoError(t, err)

	key := ManifestKey(path, info)
	assert.Contains(t, key, PrefixManifest+":")

	// Same file state yields the same key.
	assert.Equal(t, key, ManifestKey(path, info))

	// A new mtime yields a new key.
	require.NoError(t, os.Chtimes(path, time.Now(), time.Now().Add(time.Hour)))
	info2, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotEqual(t, key, ManifestKey(path, info2))

	// A size change yields a new key.
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"x"}`), 0o644))
	info3, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotEqual(t, key, ManifestKey(path, info3))
}

func TestManifestKey_CleansPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "package.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	info, err := os.Stat(path)
	require.NoError(t, err)

	messy := filepath.Join(dir, ".", "package.json")
	assert.Equal(t, ManifestKey(path, info), ManifestKey(messy, info))
}
