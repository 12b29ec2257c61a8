package pkgjson_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/quantmind-br/pkgjson-go/internal/pkgjson"
	"github.com/quantmind-br/pkgjson-go/tests/mocks"
)

func TestParse_EmptySourceYieldsDefaults(t *testing.T) {
	for _, source := range []string{"", "   ", "\n\t "} {
		pkg, err := pkgjson.Parse("/project/package.json", source)
		require.NoError(t, err)

		assert.Equal(t, "/project/package.json", pkg.Path)
		assert.Equal(t, "", pkg.Name)
		assert.Equal(t, "", pkg.Version)
		assert.Equal(t, pkgjson.TypeNone, pkg.Type)
		assert.Nil(t, pkg.Exports)
		assert.Nil(t, pkg.Dependencies)
		assert.Nil(t, pkg.DevDependencies)
		assert.Nil(t, pkg.Scripts)
		assert.Nil(t, pkg.Workspaces)
		assert.Equal(t, "", pkg.Main(pkgjson.ESM))
		assert.Equal(t, "", pkg.Main(pkgjson.CJS))
	}
}

func TestParse_InvalidJSON(t *testing.T) {
	pkg, err := pkgjson.Parse("/project/package.json", `{not json}`)
	assert.Nil(t, pkg)

	var dErr *pkgjson.DeserializeError
	require.ErrorAs(t, err, &dErr)
	assert.Equal(t, "/project/package.json", dErr.Path)
	assert.Contains(t, err.Error(), "/project/package.json")
}

func TestParse_NonObjectTopLevel(t *testing.T) {
	for _, source := range []string{`[]`, `"text"`, `42`, `null`} {
		pkg, err := pkgjson.Parse("/project/package.json", source)
		require.NoError(t, err, source)
		assert.Equal(t, pkgjson.TypeNone, pkg.Type)
		assert.Equal(t, "", pkg.Name)
	}
}

func TestParse_RecognizedFields(t *testing.T) {
	pkg, err := pkgjson.Parse("/project/package.json", `{
		"name": "demo",
		"version": "1.0.0",
		"type": "module",
		"typings": "./typed.d.ts",
		"scripts": {"build": "tsc"},
		"workspaces": ["packages/*"],
		"unknown-field": {"ignored": true}
	}`)
	require.NoError(t, err)

	assert.Equal(t, "demo", pkg.Name)
	assert.Equal(t, "1.0.0", pkg.Version)
	assert.Equal(t, pkgjson.TypeModule, pkg.Type)
	assert.Equal(t, "./typed.d.ts", pkg.Types)
	assert.Equal(t, []string{"packages/*"}, pkg.Workspaces)

	build, ok := pkg.Scripts.Get("build")
	require.True(t, ok)
	assert.Equal(t, "tsc", build)
}

func TestParse_TypeNormalization(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"module", `{"type": "module"}`, pkgjson.TypeModule},
		{"commonjs", `{"type": "commonjs"}`, pkgjson.TypeCommonJS},
		{"unknown", `{"type": "weird"}`, pkgjson.TypeNone},
		{"number", `{"type": 4}`, pkgjson.TypeNone},
		{"absent", `{}`, pkgjson.TypeNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pkg, err := pkgjson.Parse("/package.json", tt.source)
			require.NoError(t, err)
			assert.Equal(t, tt.want, pkg.Type)
		})
	}
}

func TestParse_TypingsTakesPrecedenceOverTypes(t *testing.T) {
	pkg, err := pkgjson.Parse("/package.json", `{"typings": "./a.d.ts", "types": "./b.d.ts"}`)
	require.NoError(t, err)
	assert.Equal(t, "./a.d.ts", pkg.Types)

	// A present "typings" key wins even when its value is unusable.
	pkg, err = pkgjson.Parse("/package.json", `{"typings": null, "types": "./b.d.ts"}`)
	require.NoError(t, err)
	assert.Equal(t, "", pkg.Types)
}

func TestParse_NumberCoercedToLiteralText(t *testing.T) {
	pkg, err := pkgjson.Parse("/package.json", `{"version": 1.20, "scripts": {"count": 1e3}}`)
	require.NoError(t, err)

	assert.Equal(t, "1.20", pkg.Version)
	count, ok := pkg.Scripts.Get("count")
	require.True(t, ok)
	assert.Equal(t, "1e3", count)
}

func TestParse_StringMapDropsNonScalarEntries(t *testing.T) {
	pkg, err := pkgjson.Parse("/package.json", `{
		"dependencies": {"kept": "^1.0", "coerced": 2, "dropped": {"nested": true}, "also-dropped": null}
	}`)
	require.NoError(t, err)

	require.NotNil(t, pkg.Dependencies)
	assert.Equal(t, []string{"kept", "coerced"}, pkg.Dependencies.Keys())
	coerced, ok := pkg.Dependencies.Get("coerced")
	require.True(t, ok)
	assert.Equal(t, "2", coerced)
}

func TestParse_WorkspacesKeepsOnlyStrings(t *testing.T) {
	pkg, err := pkgjson.Parse("/package.json", `{"workspaces": ["a", 1, null, "b", {}]}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, pkg.Workspaces)

	pkg, err = pkgjson.Parse("/package.json", `{"workspaces": "not-an-array"}`)
	require.NoError(t, err)
	assert.Nil(t, pkg.Workspaces)
}

func TestParse_MixedExportsFail(t *testing.T) {
	pkg, err := pkgjson.Parse("/package.json", `{"exports": {".": "./a.js", "node": "./b.js"}}`)
	assert.Nil(t, pkg)
	assert.ErrorIs(t, err, pkgjson.ErrMixedExports)
}

func TestLoad_ReadsThroughFileSystem(t *testing.T) {
	fs := new(mocks.MockFileSystem)
	fs.On("ReadToStringLossy", "/project/package.json").Return(`{"name": "demo"}`, nil)

	pkg, err := pkgjson.Load("/project/package.json", fs, nil)
	require.NoError(t, err)
	assert.Equal(t, "demo", pkg.Name)
	fs.AssertExpectations(t)
}

func TestLoad_ReadFailure(t *testing.T) {
	fs := new(mocks.MockFileSystem)
	fs.On("ReadToStringLossy", "/project/package.json").Return("", os.ErrNotExist)

	pkg, err := pkgjson.Load("/project/package.json", fs, nil)
	assert.Nil(t, pkg)

	var ioErr *pkgjson.IOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "/project/package.json", ioErr.Path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoad_CacheHitSkipsRead(t *testing.T) {
	cached := &pkgjson.PackageJSON{Path: "/project/package.json", Name: "cached"}

	cache := new(mocks.MockCache)
	cache.On("Get", "/project/package.json").Return(cached)

	fs := new(mocks.MockFileSystem)

	pkg, err := pkgjson.Load("/project/package.json", fs, cache)
	require.NoError(t, err)
	assert.Same(t, cached, pkg)

	fs.AssertNotCalled(t, "ReadToStringLossy")
	cache.AssertExpectations(t)
}

func TestLoad_CacheMissStoresResult(t *testing.T) {
	cache := new(mocks.MockCache)
	cache.On("Get", "/project/package.json").Return(nil)
	cache.On("Set", "/project/package.json", mock.AnythingOfType("*pkgjson.PackageJSON")).Return()

	fs := new(mocks.MockFileSystem)
	fs.On("ReadToStringLossy", "/project/package.json").Return(`{"name": "demo"}`, nil)

	pkg, err := pkgjson.Load("/project/package.json", fs, cache)
	require.NoError(t, err)
	assert.Equal(t, "demo", pkg.Name)

	cache.AssertExpectations(t)
	fs.AssertExpectations(t)
}

func TestLoad_ParseErrorNotCached(t *testing.T) {
	cache := new(mocks.MockCache)
	cache.On("Get", "/project/package.json").Return(nil)

	fs := new(mocks.MockFileSystem)
	fs.On("ReadToStringLossy", "/project/package.json").Return(`{broken`, nil)

	pkg, err := pkgjson.Load("/project/package.json", fs, cache)
	assert.Nil(t, pkg)
	require.Error(t, err)

	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything)
}

func TestOSFileSystem_LossyDecode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "package.json")

	content := append([]byte(`{"name": "`), 0xff, 0xfe)
	content = append(content, []byte(`ok"}`)...)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	text, err := pkgjson.OSFileSystem{}.ReadToStringLossy(path)
	require.NoError(t, err)
	assert.Equal(t, `{"name": "`+"��"+`ok"}`, text)

	pkg, err := pkgjson.Parse(path, text)
	require.NoError(t, err)
	assert.Equal(t, "��ok", pkg.Name)
}

func TestOSFileSystem_MissingFile(t *testing.T) {
	_, err := pkgjson.OSFileSystem{}.ReadToStringLossy(filepath.Join(t.TempDir(), "nope.json"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
