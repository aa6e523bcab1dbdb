package changelog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
)

// Fragment is one pending changelog entry file.
type Fragment struct {
	Name    string
	Path    string
	Content string
}

// IsEmpty reports whether the fragment holds only whitespace.
func (f Fragment) IsEmpty() bool {
	return f.Content == ""
}

// listFragments returns the fragment files in the staging directory, sorted
// by name. A missing directory yields no fragments.
func (s *Service) listFragments(ctx context.Context) ([]Fragment, error) {
	dir := s.opts.FragmentsDir
	entries, err := s.fs.ReadDir(ctx, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read fragment directory %q: %w", dir, err)
	}

	var fragments []Fragment
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, s.opts.FragmentSuffix) || name == s.opts.Reserved {
			continue
		}
		fragments = append(fragments, Fragment{Name: name, Path: filepath.Join(dir, name)})
	}
	slices.SortFunc(fragments, func(a, b Fragment) int { return strings.Compare(a.Name, b.Name) })
	return fragments, nil
}

// Collect reads every fragment and returns them along with the joined text of
// the non-empty ones, separated by a blank line. The returned slice includes
// empty fragments so that Remove deletes them too.
func (s *Service) Collect(ctx context.Context) ([]Fragment, string, error) {
	fragments, err := s.listFragments(ctx)
	if err != nil {
		return nil, "", err
	}

	parts := make([]string, 0, len(fragments))
	for i := range fragments {
		data, err := s.fs.ReadFile(ctx, fragments[i].Path)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read fragment %q: %w", fragments[i].Path, err)
		}
		fragments[i].Content = strings.TrimSpace(string(data))
		if !fragments[i].IsEmpty() {
			parts = append(parts, fragments[i].Content)
		}
	}
	return fragments, strings.Join(parts, "\n\n"), nil
}

// Remove deletes the given fragments and returns the removed paths. The
// reserved file is never deleted, even if passed in.
func (s *Service) Remove(ctx context.Context, fragments []Fragment) ([]string, error) {
	removed := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if f.Name == s.opts.Reserved {
			continue
		}
		if err := s.fs.Remove(ctx, f.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, fmt.Errorf("failed to remove fragment %q: %w", f.Path, err)
		}
		removed = append(removed, f.Path)
	}
	return removed, nil
}
