package core

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

// MockFileSystem is an in-memory FileSystem for tests. Paths are cleaned with
// filepath.Clean; directories are implied by the files stored beneath them and
// may also be created explicitly with MkdirAll.
type MockFileSystem struct {
	mu    sync.Mutex
	files map[string][]byte
	dirs  map[string]bool

	// ReadFileErr, WriteFileErr and RemoveErr, when set, are returned for
	// every matching call. They let tests simulate I/O failures.
	ReadFileErr  error
	WriteFileErr error
	RemoveErr    error

	// ReadDirErrs fails ReadDir for the listed directories only.
	ReadDirErrs map[string]error
}

// NewMockFileSystem returns an empty in-memory filesystem.
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		files: make(map[string][]byte),
		dirs:  make(map[string]bool),
	}
}

// Ensure MockFileSystem implements FileSystem.
var _ FileSystem = (*MockFileSystem)(nil)

// SetFile stores content at path, creating parent directories implicitly.
func (m *MockFileSystem) SetFile(path string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[filepath.Clean(path)] = slices.Clone(content)
}

// GetFile returns the content stored at path.
func (m *MockFileSystem) GetFile(path string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[filepath.Clean(path)]
	return data, ok
}

func (m *MockFileSystem) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.ReadFileErr != nil {
		return nil, m.ReadFileErr
	}
	data, ok := m.GetFile(path)
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return slices.Clone(data), nil
}

func (m *MockFileSystem) WriteFile(ctx context.Context, path string, data []byte, _ os.FileMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.WriteFileErr != nil {
		return m.WriteFileErr
	}
	m.SetFile(path, data)
	return nil
}

func (m *MockFileSystem) AppendFile(ctx context.Context, path string, data []byte, _ os.FileMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.WriteFileErr != nil {
		return m.WriteFileErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	clean := filepath.Clean(path)
	parent := filepath.Dir(clean)
	if _, exists := m.files[clean]; !exists && !m.isDirLocked(parent) {
		return &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	m.files[clean] = append(slices.Clone(m.files[clean]), data...)
	return nil
}

func (m *MockFileSystem) Stat(ctx context.Context, path string) (os.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	clean := filepath.Clean(path)
	if data, ok := m.files[clean]; ok {
		return mockFileInfo{name: filepath.Base(clean), size: int64(len(data))}, nil
	}
	if m.isDirLocked(clean) {
		return mockFileInfo{name: filepath.Base(clean), dir: true}, nil
	}
	return nil, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrNotExist}
}

func (m *MockFileSystem) ReadDir(ctx context.Context, path string) ([]os.DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	dir := filepath.Clean(path)
	if err, ok := m.ReadDirErrs[dir]; ok {
		return nil, &fs.PathError{Op: "readdir", Path: path, Err: err}
	}
	if !m.isDirLocked(dir) {
		return nil, &fs.PathError{Op: "readdir", Path: path, Err: fs.ErrNotExist}
	}

	seen := make(map[string]os.DirEntry)
	add := func(p string, isDir bool, size int64) {
		rel, ok := childOf(dir, p)
		if !ok {
			return
		}
		name, _, nested := strings.Cut(rel, string(filepath.Separator))
		if _, exists := seen[name]; exists {
			return
		}
		info := mockFileInfo{name: name, dir: isDir || nested, size: size}
		if nested {
			info.size = 0
		}
		seen[name] = fs.FileInfoToDirEntry(info)
	}
	for p, data := range m.files {
		add(p, false, int64(len(data)))
	}
	for d := range m.dirs {
		add(d, true, 0)
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	slices.Sort(names)

	entries := make([]os.DirEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, seen[name])
	}
	return entries, nil
}

func (m *MockFileSystem) MkdirAll(ctx context.Context, path string, _ os.FileMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirs[filepath.Clean(path)] = true
	return nil
}

func (m *MockFileSystem) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.RemoveErr != nil {
		return m.RemoveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	clean := filepath.Clean(path)
	if _, ok := m.files[clean]; ok {
		delete(m.files, clean)
		return nil
	}
	if m.dirs[clean] {
		delete(m.dirs, clean)
		return nil
	}
	return &fs.PathError{Op: "remove", Path: path, Err: fs.ErrNotExist}
}

func (m *MockFileSystem) isDirLocked(dir string) bool {
	if dir == "." || dir == string(filepath.Separator) || m.dirs[dir] {
		return true
	}
	for p := range m.files {
		if _, ok := childOf(dir, p); ok {
			return true
		}
	}
	for d := range m.dirs {
		if _, ok := childOf(dir, d); ok {
			return true
		}
	}
	return false
}

// childOf returns p relative to dir when p lives strictly below dir.
func childOf(dir, p string) (string, bool) {
	if dir == "." {
		if filepath.IsAbs(p) || p == "." {
			return "", false
		}
		return p, true
	}
	prefix := dir
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	if !strings.HasPrefix(p, prefix) || p == dir {
		return "", false
	}
	return strings.TrimPrefix(p, prefix), true
}

type mockFileInfo struct {
	name string
	size int64
	dir  bool
}

func (i mockFileInfo) Name() string { return i.name }
func (i mockFileInfo) Size() int64  { return i.size }
func (i mockFileInfo) Mode() fs.FileMode {
	if i.dir {
		return fs.ModeDir | PermDir
	}
	return PermFile
}
func (i mockFileInfo) ModTime() time.Time { return time.Time{} }
func (i mockFileInfo) IsDir() bool        { return i.dir }
func (i mockFileInfo) Sys() any           { return nil }
