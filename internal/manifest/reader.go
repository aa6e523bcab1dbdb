package manifest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strings"

	"github.com/indaco/relkit/internal/core"
	"github.com/indaco/relkit/internal/semver"
	"github.com/tidwall/gjson"
)

var (
	// versionLineRegex captures a MAJOR.MINOR.PATCH assignment.
	versionLineRegex = regexp.MustCompile(`(?m)^version\s*=\s*"(\d+)\.(\d+)\.(\d+)"`)

	// anyVersionLineRegex captures whatever string the assignment holds.
	anyVersionLineRegex = regexp.MustCompile(`(?m)^version\s*=\s*"([^"]+)"`)
)

// jsonVersionField is the JSON path of the version in JSON manifests.
const jsonVersionField = "version"

// Reader provides version reading for the supported manifest formats.
type Reader struct {
	fs core.FileSystem
}

// NewReader creates a new Reader with the given filesystem.
func NewReader(fs core.FileSystem) *Reader {
	return &Reader{fs: fs}
}

// Read returns the manifest version parsed as MAJOR.MINOR.PATCH.
func (r *Reader) Read(ctx context.Context, cfg FileConfig) (semver.SemVersion, error) {
	data, err := r.load(ctx, cfg)
	if err != nil {
		return semver.SemVersion{}, err
	}

	var raw string
	switch cfg.Format {
	case FormatRegex:
		m := versionLineRegex.FindSubmatch(data)
		if m == nil {
			return semver.SemVersion{}, fmt.Errorf("%w from %s", ErrVersionNotFound, cfg.Path)
		}
		raw = fmt.Sprintf("%s.%s.%s", m[1], m[2], m[3])
	default:
		raw, err = r.extract(data, cfg)
		if err != nil {
			return semver.SemVersion{}, err
		}
	}

	v, err := semver.ParseVersion(raw)
	if err != nil {
		return semver.SemVersion{}, fmt.Errorf("%w from %s: %w", ErrVersionNotFound, cfg.Path, err)
	}
	return v, nil
}

// ReadRaw returns the version string as written in the manifest, without
// requiring it to be MAJOR.MINOR.PATCH.
func (r *Reader) ReadRaw(ctx context.Context, cfg FileConfig) (string, error) {
	data, err := r.load(ctx, cfg)
	if err != nil {
		return "", err
	}
	return r.extract(data, cfg)
}

func (r *Reader) load(ctx context.Context, cfg FileConfig) ([]byte, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("manifest path is required")
	}
	if !cfg.Format.IsValid() {
		return nil, fmt.Errorf("invalid format: %s", cfg.Format)
	}

	data, err := r.fs.ReadFile(ctx, cfg.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrManifestNotFound, cfg.Path)
		}
		return nil, fmt.Errorf("failed to read manifest %q: %w", cfg.Path, err)
	}
	return data, nil
}

func (r *Reader) extract(data []byte, cfg FileConfig) (string, error) {
	switch cfg.Format {
	case FormatRegex:
		m := anyVersionLineRegex.FindSubmatch(data)
		if m == nil {
			return "", fmt.Errorf("%w from %s", ErrVersionNotFound, cfg.Path)
		}
		return string(m[1]), nil
	case FormatJSON:
		if !gjson.ValidBytes(data) {
			return "", fmt.Errorf("failed to parse JSON in %q", cfg.Path)
		}
		res := gjson.GetBytes(data, jsonVersionField)
		if !res.Exists() || res.Type != gjson.String {
			return "", fmt.Errorf("%w from %s: %q field missing or not a string", ErrVersionNotFound, cfg.Path, jsonVersionField)
		}
		return res.String(), nil
	case FormatRaw:
		v := strings.TrimSpace(string(data))
		if v == "" {
			return "", fmt.Errorf("%w from %s: file is empty", ErrVersionNotFound, cfg.Path)
		}
		return v, nil
	default:
		return "", fmt.Errorf("unsupported format: %s", cfg.Format)
	}
}
