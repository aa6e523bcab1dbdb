// Package config loads relkit settings from .relkit.yaml, applies defaults and
// environment overrides, and resolves project-relative paths.
package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/indaco/relkit/internal/core"
)

// DefaultFile is the configuration file looked up in the project root.
const DefaultFile = ".relkit.yaml"

// EnvManifestPath overrides the manifest path from the environment.
const EnvManifestPath = "RELKIT_MANIFEST"

// Default values.
const (
	DefaultManifestPath   = "Cargo.toml"
	DefaultChangelogPath  = "CHANGELOG.md"
	DefaultFragmentsDir   = "changelog.d"
	DefaultFragmentSuffix = ".md"
	DefaultReservedName   = "README.md"
	DefaultMarker         = "<!-- changelog-insert-here -->"
	DefaultTagPrefix      = "v"
	DefaultForgeCLI       = "gh"
	DefaultMaxLines       = 1000
)

// ManifestConfig locates the file holding the project version.
type ManifestConfig struct {
	Path string `yaml:"path"`
	// Format is one of regex, json, raw. Empty means detect from the filename.
	Format string `yaml:"format,omitempty"`
}

// ChangelogConfig describes the changelog document and its fragment directory.
type ChangelogConfig struct {
	Path           string `yaml:"path"`
	FragmentsDir   string `yaml:"fragments-dir"`
	FragmentSuffix string `yaml:"fragment-suffix"`
	Reserved       string `yaml:"reserved"`
	Marker         string `yaml:"marker"`
}

// ReleaseConfig configures tagging, pushing and the forge CLI.
type ReleaseConfig struct {
	TagPrefix string `yaml:"tag-prefix"`
	ForgeCLI  string `yaml:"forge-cli"`
	// Remote is passed to git push when set; empty uses git's default.
	Remote string `yaml:"remote,omitempty"`
}

// LineCheckConfig configures the file-size lint.
type LineCheckConfig struct {
	MaxLines   int      `yaml:"max-lines"`
	Extensions []string `yaml:"extensions"`
	Exclude    []string `yaml:"exclude"`
}

// Config is the main configuration structure for relkit.
type Config struct {
	Manifest  ManifestConfig  `yaml:"manifest"`
	Changelog ChangelogConfig `yaml:"changelog"`
	Release   ReleaseConfig   `yaml:"release"`
	LineCheck LineCheckConfig `yaml:"linecheck"`

	// Dir is the project root every relative path is resolved against.
	// It is set by Load and never read from YAML.
	Dir string `yaml:"-"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Manifest: ManifestConfig{Path: DefaultManifestPath},
		Changelog: ChangelogConfig{
			Path:           DefaultChangelogPath,
			FragmentsDir:   DefaultFragmentsDir,
			FragmentSuffix: DefaultFragmentSuffix,
			Reserved:       DefaultReservedName,
			Marker:         DefaultMarker,
		},
		Release: ReleaseConfig{
			TagPrefix: DefaultTagPrefix,
			ForgeCLI:  DefaultForgeCLI,
		},
		LineCheck: LineCheckConfig{
			MaxLines:   DefaultMaxLines,
			Extensions: []string{".rs"},
			Exclude:    []string{"target", ".git", "node_modules"},
		},
		Dir: ".",
	}
}

// getenv is swapped in tests.
var getenv = os.Getenv

// Load reads configFile (relative to dir unless absolute). A missing file is
// not an error: defaults are returned. Unknown keys are rejected.
func Load(ctx context.Context, fsys core.FileSystem, dir, configFile string) (*Config, error) {
	if dir == "" {
		dir = "."
	}
	if configFile == "" {
		configFile = DefaultFile
	}
	path := configFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}

	cfg := Default()
	data, err := fsys.ReadFile(ctx, path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// fall through with defaults
	case err != nil:
		return nil, fmt.Errorf("failed to read config %q: %w", path, err)
	default:
		cfg, err = decode(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config %q: %w", path, err)
		}
	}
	cfg.Dir = dir

	if envPath := getenv(EnvManifestPath); envPath != "" {
		cleanPath := filepath.Clean(envPath)
		// Reject relative paths with traversal (use absolute paths instead)
		if hasParentRef(cleanPath) {
			return nil, fmt.Errorf("invalid %s: path traversal not allowed, use absolute path instead", EnvManifestPath)
		}
		cfg.Manifest.Path = cleanPath
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// hasParentRef reports whether any component of p is "..".
func hasParentRef(p string) bool {
	return slices.Contains(strings.Split(filepath.ToSlash(p), "/"), "..")
}

// presence records which optional keys a config file spelled out, so that an
// explicitly empty tag prefix or exclude list is honoured.
type presence struct {
	Release   map[string]any `yaml:"release"`
	LineCheck map[string]any `yaml:"linecheck"`
}

func decode(data []byte) (*Config, error) {
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data), yaml.Strict())
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	var keys presence
	if err := yaml.Unmarshal(data, &keys); err != nil {
		return nil, err
	}
	def := Default()
	if _, ok := keys.Release["tag-prefix"]; !ok {
		cfg.Release.TagPrefix = def.Release.TagPrefix
	}
	if _, ok := keys.LineCheck["exclude"]; !ok {
		cfg.LineCheck.Exclude = def.LineCheck.Exclude
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// applyDefaults restores defaults for values a config file left blank.
func (c *Config) applyDefaults() {
	def := Default()
	setIfEmpty := func(dst *string, v string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = v
		}
	}
	setIfEmpty(&c.Manifest.Path, def.Manifest.Path)
	setIfEmpty(&c.Changelog.Path, def.Changelog.Path)
	setIfEmpty(&c.Changelog.FragmentsDir, def.Changelog.FragmentsDir)
	setIfEmpty(&c.Changelog.FragmentSuffix, def.Changelog.FragmentSuffix)
	setIfEmpty(&c.Changelog.Reserved, def.Changelog.Reserved)
	setIfEmpty(&c.Changelog.Marker, def.Changelog.Marker)
	setIfEmpty(&c.Release.ForgeCLI, def.Release.ForgeCLI)
	if c.LineCheck.MaxLines == 0 {
		c.LineCheck.MaxLines = def.LineCheck.MaxLines
	}
	if len(c.LineCheck.Extensions) == 0 {
		c.LineCheck.Extensions = def.LineCheck.Extensions
	}
}

// Resolve returns p joined to the project root unless p is absolute.
func (c *Config) Resolve(p string) string {
	if filepath.IsAbs(p) || c.Dir == "" {
		return p
	}
	return filepath.Join(c.Dir, p)
}

// ManifestPath returns the resolved manifest path.
func (c *Config) ManifestPath() string { return c.Resolve(c.Manifest.Path) }

// ChangelogPath returns the resolved changelog path.
func (c *Config) ChangelogPath() string { return c.Resolve(c.Changelog.Path) }

// FragmentsDir returns the resolved fragment directory.
func (c *Config) FragmentsDir() string { return c.Resolve(c.Changelog.FragmentsDir) }

// TagName formats version as a release tag.
func (c *Config) TagName(version string) string {
	return c.Release.TagPrefix + version
}
