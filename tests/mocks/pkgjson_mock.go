// Package mocks provides testify mocks for the pkgjson collaborator
// interfaces.
package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/quantmind-br/pkgjson-go/internal/pkgjson"
)

// MockFileSystem mocks the pkgjson.FileSystem interface
type MockFileSystem struct {
	mock.Mock
}

// ReadToStringLossy mocks the lossy file read
func (m *MockFileSystem) ReadToStringLossy(path string) (string, error) {
	args := m.Called(path)
	return args.String(0), args.Error(1)
}

// MockCache mocks the pkgjson.Cache interface
type MockCache struct {
	mock.Mock
}

// Get mocks the cache lookup
func (m *MockCache) Get(path string) *pkgjson.PackageJSON {
	args := m.Called(path)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*pkgjson.PackageJSON)
}

// Set mocks the cache store
func (m *MockCache) Set(path string, pkg *pkgjson.PackageJSON) {
	m.Called(path, pkg)
}
