// Package mocks provides hand-written test doubles for the ports.
package mocks

import (
	"bytes"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"sync"

	"github.com/user/layerpaint/pkg/ports"
)

// FileSystem is an in-memory ports.FileSystem. Writes create their parent
// directories the way the os adapter does, store a private copy of the data
// and are logged in order so tests can check which documents, exports and
// debug files a run produced.
type FileSystem struct {
	mu     sync.RWMutex
	files  map[string][]byte
	dirs   map[string]bool
	writes []string

	ReadFileFunc  func(path string) ([]byte, error)
	WriteFileFunc func(path string, data []byte) error
	MkdirAllFunc  func(path string) error
	ExistsFunc    func(path string) (bool, error)
	RemoveFunc    func(path string) error
}

// NewFileSystem creates an empty FileSystem.
func NewFileSystem() *FileSystem {
	return &FileSystem{
		files: make(map[string][]byte),
		dirs:  make(map[string]bool),
	}
}

// ReadFile returns a copy of the stored bytes. Missing files wrap
// fs.ErrNotExist.
func (m *FileSystem) ReadFile(name string) ([]byte, error) {
	if m.ReadFileFunc != nil {
		return m.ReadFileFunc(name)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[name]
	if !ok {
		return nil, fmt.Errorf("read %s: %w", name, fs.ErrNotExist)
	}
	return bytes.Clone(data), nil
}

func (m *FileSystem) WriteFile(name string, data []byte) error {
	if m.WriteFileFunc != nil {
		return m.WriteFileFunc(name, data)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dirs[name] {
		return fmt.Errorf("write %s: is a directory", name)
	}
	m.mkdirAll(path.Dir(name))
	m.files[name] = bytes.Clone(data)
	m.writes = append(m.writes, name)
	return nil
}

func (m *FileSystem) MkdirAll(name string) error {
	if m.MkdirAllFunc != nil {
		return m.MkdirAllFunc(name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mkdirAll(name)
	return nil
}

func (m *FileSystem) mkdirAll(dir string) {
	for dir != "." && dir != "/" && dir != "" {
		m.dirs[dir] = true
		dir = path.Dir(dir)
	}
}

func (m *FileSystem) Exists(name string) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(name)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, isFile := m.files[name]
	return isFile || m.dirs[name], nil
}

func (m *FileSystem) Remove(name string) error {
	if m.RemoveFunc != nil {
		return m.RemoveFunc(name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[name]; ok {
		delete(m.files, name)
		return nil
	}
	if !m.dirs[name] {
		return fmt.Errorf("remove %s: %w", name, fs.ErrNotExist)
	}
	for p := range m.files {
		if path.Dir(p) == name {
			return fmt.Errorf("remove %s: directory not empty", name)
		}
	}
	delete(m.dirs, name)
	return nil
}

// GetFile returns the stored contents of a file.
func (m *FileSystem) GetFile(name string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[name]
	return data, ok
}

// GetAllFiles returns a copy of the file table.
func (m *FileSystem) GetAllFiles() map[string][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make(map[string][]byte, len(m.files))
	for k, v := range m.files {
		result[k] = v
	}
	return result
}

// Paths returns the stored file paths in sorted order.
func (m *FileSystem) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.files))
	for k := range m.files {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Writes returns every successful WriteFile path in call order, including
// overwrites.
func (m *FileSystem) Writes() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.writes...)
}

var _ ports.FileSystem = (*FileSystem)(nil)
