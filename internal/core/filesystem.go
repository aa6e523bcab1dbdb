// Package core holds the small abstractions shared by every relkit component:
// the filesystem seam used by readers, writers and walkers, and the file
// permission constants applied when relkit writes project files.
package core

import (
	"context"
	"os"
)

// File permission constants used when relkit writes files.
const (
	// PermOwnerRW is read/write for the owner only.
	PermOwnerRW os.FileMode = 0o600

	// PermFile is the conventional permission for tracked project files
	// (manifest, changelog) that other tools need to read.
	PermFile os.FileMode = 0o644

	// PermDir is the permission used when relkit creates directories.
	PermDir os.FileMode = 0o755
)

// FileSystem abstracts the filesystem operations relkit performs so that
// components can be exercised against an in-memory implementation in tests.
type FileSystem interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	WriteFile(ctx context.Context, path string, data []byte, perm os.FileMode) error
	// AppendFile appends data to path, creating the file if needed.
	AppendFile(ctx context.Context, path string, data []byte, perm os.FileMode) error
	Stat(ctx context.Context, path string) (os.FileInfo, error)
	ReadDir(ctx context.Context, path string) ([]os.DirEntry, error)
	MkdirAll(ctx context.Context, path string, perm os.FileMode) error
	Remove(ctx context.Context, path string) error
}

// OSFileSystem implements FileSystem on top of the os package.
type OSFileSystem struct{}

// NewOSFileSystem returns the production FileSystem.
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

// Ensure OSFileSystem implements FileSystem.
var _ FileSystem = (*OSFileSystem)(nil)

func (f *OSFileSystem) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

func (f *OSFileSystem) WriteFile(ctx context.Context, path string, data []byte, perm os.FileMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.WriteFile(path, data, perm)
}

func (f *OSFileSystem) AppendFile(ctx context.Context, path string, data []byte, perm os.FileMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, perm)
	if err != nil {
		return err
	}
	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

func (f *OSFileSystem) Stat(ctx context.Context, path string) (os.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.Stat(path)
}

func (f *OSFileSystem) ReadDir(ctx context.Context, path string) ([]os.DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadDir(path)
}

func (f *OSFileSystem) MkdirAll(ctx context.Context, path string, perm os.FileMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.MkdirAll(path, perm)
}

func (f *OSFileSystem) Remove(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return os.Remove(path)
}

// Exists reports whether path exists on fs. Any Stat error counts as absent.
func Exists(ctx context.Context, fs FileSystem, path string) bool {
	_, err := fs.Stat(ctx, path)
	return err == nil
}
