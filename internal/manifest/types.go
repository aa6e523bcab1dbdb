package manifest

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format represents the supported manifest formats.
type Format string

const (
	// FormatRegex matches a line-anchored `version = "..."` assignment.
	FormatRegex Format = "regex"

	// FormatJSON reads and writes the top-level "version" field.
	FormatJSON Format = "json"

	// FormatRaw treats the whole file as the version.
	FormatRaw Format = "raw"
)

var (
	// ErrManifestNotFound is returned when the manifest file does not exist.
	ErrManifestNotFound = errors.New("manifest not found")

	// ErrVersionNotFound is returned when no version can be located in the manifest.
	ErrVersionNotFound = errors.New("could not parse version")

	// ErrCorruptManifest is returned when a rewrite would leave a manifest
	// that no longer decodes.
	ErrCorruptManifest = errors.New("rewritten manifest is not valid")

	// ErrVersionMisplaced is returned when the first version assignment in a
	// TOML manifest is not the project version, such as a line inside a
	// multi-line string or a dependency table.
	ErrVersionMisplaced = errors.New("version assignment is not the project version")
)

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}

// IsValid returns true if the format is a known valid format.
func (f Format) IsValid() bool {
	switch f {
	case FormatRegex, FormatJSON, FormatRaw:
		return true
	default:
		return false
	}
}

// ParseFormat converts a configured format name. An empty name selects the
// format from the file name.
func ParseFormat(name, path string) (Format, error) {
	if name == "" {
		return FormatForFile(path), nil
	}
	f := Format(strings.ToLower(name))
	if !f.IsValid() {
		return "", fmt.Errorf("unknown manifest format %q (supported: regex, json, raw)", name)
	}
	return f, nil
}

// FormatForFile detects the format based on file extension or name.
func FormatForFile(path string) Format {
	base := strings.ToLower(filepath.Base(path))
	switch {
	case strings.HasSuffix(base, ".json"):
		return FormatJSON
	case base == ".version", base == "version", strings.HasSuffix(base, ".txt"):
		return FormatRaw
	default:
		return FormatRegex
	}
}

// FileConfig describes where and how a manifest stores its version.
type FileConfig struct {
	Path   string
	Format Format
}
