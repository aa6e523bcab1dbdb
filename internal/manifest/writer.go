package manifest

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strings"

	"github.com/indaco/relkit/internal/core"
	"github.com/indaco/relkit/internal/semver"
	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// assignmentRegex splits the first version assignment around its value.
var assignmentRegex = regexp.MustCompile(`(?m)^(version\s*=\s*")[^"]+(")`)

// projectVersionKeys are the dotted TOML keys that hold a project's own
// version in Cargo and Python manifests.
var projectVersionKeys = []string{
	"version",
	"package.version",
	"workspace.package.version",
	"project.version",
	"tool.poetry.version",
}

// Writer provides version writing for the supported manifest formats.
type Writer struct {
	fs core.FileSystem
}

// NewWriter creates a new Writer with the given filesystem.
func NewWriter(fs core.FileSystem) *Writer {
	return &Writer{fs: fs}
}

// Write stores version in the manifest described by cfg.
func (w *Writer) Write(ctx context.Context, cfg FileConfig, version semver.SemVersion) error {
	if cfg.Path == "" {
		return fmt.Errorf("manifest path is required")
	}

	switch cfg.Format {
	case FormatRegex:
		return w.writeRegex(ctx, cfg.Path, version.String())
	case FormatJSON:
		return w.writeJSON(ctx, cfg.Path, version.String())
	case FormatRaw:
		return w.writeRaw(ctx, cfg.Path, version.String())
	default:
		return fmt.Errorf("unsupported format: %s", cfg.Format)
	}
}

// writeRegex replaces the value of the first version assignment only.
func (w *Writer) writeRegex(ctx context.Context, path, version string) error {
	data, err := w.read(ctx, path)
	if err != nil {
		return err
	}

	loc := assignmentRegex.FindSubmatchIndex(data)
	if loc == nil {
		return fmt.Errorf("%w from %s", ErrVersionNotFound, path)
	}

	// loc[3] ends the `version = "` group, loc[4] starts the closing quote.
	updated := make([]byte, 0, len(data)+len(version))
	updated = append(updated, data[:loc[3]]...)
	updated = append(updated, version...)
	updated = append(updated, data[loc[4]:]...)

	if isTOML(path) {
		if err := checkTOML(data, updated, version); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}

	return w.write(ctx, path, updated)
}

// writeJSON rewrites the version field using sjson to preserve formatting
// and key order.
func (w *Writer) writeJSON(ctx context.Context, path, version string) error {
	data, err := w.read(ctx, path)
	if err != nil {
		return err
	}
	if !gjson.GetBytes(data, jsonVersionField).Exists() {
		return fmt.Errorf("%w from %s: %q field missing", ErrVersionNotFound, path, jsonVersionField)
	}

	updated, err := sjson.SetBytes(data, jsonVersionField, version)
	if err != nil {
		return fmt.Errorf("failed to set version in %q: %w", path, err)
	}
	return w.write(ctx, path, updated)
}

// writeRaw writes the version as the entire file contents.
func (w *Writer) writeRaw(ctx context.Context, path, version string) error {
	return w.write(ctx, path, []byte(version+"\n"))
}

func (w *Writer) read(ctx context.Context, path string) ([]byte, error) {
	return NewReader(w.fs).load(ctx, FileConfig{Path: path, Format: FormatRaw})
}

func (w *Writer) write(ctx context.Context, path string, data []byte) error {
	if err := w.fs.WriteFile(ctx, path, data, core.PermFile); err != nil {
		return fmt.Errorf("failed to write manifest %q: %w", path, err)
	}
	return nil
}

func isTOML(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".toml")
}

// checkTOML verifies a regex rewrite against the decoded documents: the
// rewrite must still decode, and the only value it may change is the project
// version. Manifests that were already invalid are left to their owners.
func checkTOML(original, updated []byte, version string) error {
	var before map[string]any
	if err := toml.Unmarshal(original, &before); err != nil {
		return nil
	}
	var after map[string]any
	if err := toml.Unmarshal(updated, &after); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptManifest, err)
	}

	changed := changedKeys(before, after, "")
	switch {
	case len(changed) == 0:
		return nil
	case len(changed) == 1 && slices.Contains(projectVersionKeys, changed[0]) && lookup(after, changed[0]) == version:
		return nil
	default:
		return fmt.Errorf("%w: first version assignment sets %s", ErrVersionMisplaced, strings.Join(changed, ", "))
	}
}

// changedKeys lists the dotted keys whose decoded values differ.
func changedKeys(before, after map[string]any, prefix string) []string {
	var keys []string
	for k, av := range after {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		bv := before[k]
		if am, ok := av.(map[string]any); ok {
			bm, _ := bv.(map[string]any)
			keys = append(keys, changedKeys(bm, am, key)...)
			continue
		}
		if !reflect.DeepEqual(av, bv) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return keys
}

func lookup(doc map[string]any, key string) any {
	var cur any = doc
	for part := range strings.SplitSeq(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[part]
	}
	return cur
}
