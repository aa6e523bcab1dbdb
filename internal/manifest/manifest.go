package manifest

import (
	"context"

	"github.com/indaco/relkit/internal/core"
	"github.com/indaco/relkit/internal/semver"
)

// File binds a Reader and Writer to a single manifest.
type File struct {
	cfg    FileConfig
	reader *Reader
	writer *Writer
}

// Open returns a File for path. format may be empty to detect it from path.
// The manifest itself is not touched until Read or Write is called.
func Open(fs core.FileSystem, path, format string) (*File, error) {
	f, err := ParseFormat(format, path)
	if err != nil {
		return nil, err
	}
	return &File{
		cfg:    FileConfig{Path: path, Format: f},
		reader: NewReader(fs),
		writer: NewWriter(fs),
	}, nil
}

// Path returns the manifest path.
func (f *File) Path() string { return f.cfg.Path }

// Format returns the manifest format in use.
func (f *File) Format() Format { return f.cfg.Format }

// Read returns the parsed manifest version.
func (f *File) Read(ctx context.Context) (semver.SemVersion, error) {
	return f.reader.Read(ctx, f.cfg)
}

// ReadRaw returns the manifest version string as written.
func (f *File) ReadRaw(ctx context.Context) (string, error) {
	return f.reader.ReadRaw(ctx, f.cfg)
}

// Write stores v in the manifest.
func (f *File) Write(ctx context.Context, v semver.SemVersion) error {
	return f.writer.Write(ctx, f.cfg, v)
}
