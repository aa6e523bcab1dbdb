// Package linecheck enforces a maximum line count per source file.
package linecheck

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/indaco/relkit/internal/core"
)

// DefaultMaxLines is the limit used by NewChecker.
const DefaultMaxLines = 1000

var (
	// DefaultExtensions are the file extensions checked by default.
	DefaultExtensions = []string{".rs"}
	// DefaultExclude are the path fragments skipped by default.
	DefaultExclude = []string{"target", ".git", "node_modules"}
)

// ErrLimitExceeded is returned when at least one file is over the limit.
var ErrLimitExceeded = errors.New("files exceed the line limit")

// Violation is a file over the limit.
type Violation struct {
	// Path is relative to the checked root, slash separated.
	Path  string
	Lines int
}

// Report is the outcome of a check.
type Report struct {
	MaxLines   int
	Checked    int
	Violations []Violation
}

// OK reports whether every checked file is within the limit.
func (r *Report) OK() bool {
	return len(r.Violations) == 0
}

// Err returns ErrLimitExceeded wrapped with the violation count, or nil.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	return fmt.Errorf("%w: %d file(s) over %d lines", ErrLimitExceeded, len(r.Violations), r.MaxLines)
}

// Checker walks a tree and counts lines in matching files.
type Checker struct {
	fs         core.FileSystem
	MaxLines   int
	Extensions []string
	// Exclude skips any file or directory whose name contains one of these
	// substrings.
	Exclude []string
}

// NewChecker returns a Checker with the default limit, extensions and
// exclusions.
func NewChecker(fs core.FileSystem) *Checker {
	return &Checker{
		fs:         fs,
		MaxLines:   DefaultMaxLines,
		Extensions: slices.Clone(DefaultExtensions),
		Exclude:    slices.Clone(DefaultExclude),
	}
}

// Check walks root and returns every file over the limit, sorted by path.
func (c *Checker) Check(ctx context.Context, root string) (*Report, error) {
	report := &Report{MaxLines: c.MaxLines}
	err := c.walk(ctx, root, func(path string) error {
		data, err := c.fs.ReadFile(ctx, path)
		if err != nil {
			return fmt.Errorf("failed to read %q: %w", path, err)
		}
		report.Checked++

		lines := CountLines(data)
		if lines <= c.MaxLines {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		report.Violations = append(report.Violations, Violation{Path: filepath.ToSlash(rel), Lines: lines})
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(report.Violations, func(a, b Violation) int { return strings.Compare(a.Path, b.Path) })
	return report, nil
}

func (c *Checker) walk(ctx context.Context, dir string, fn func(string) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries, err := c.fs.ReadDir(ctx, dir)
	if err != nil {
		return fmt.Errorf("failed to read %q: %w", dir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if c.excluded(name) {
			continue
		}
		path := filepath.Join(dir, name)

		if entry.IsDir() {
			if err := c.walk(ctx, path, fn); err != nil {
				return err
			}
			continue
		}
		if c.matches(name) {
			if err := fn(path); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Checker) excluded(name string) bool {
	for _, pattern := range c.Exclude {
		if pattern != "" && strings.Contains(name, pattern) {
			return true
		}
	}
	return false
}

func (c *Checker) matches(name string) bool {
	ext := filepath.Ext(name)
	return ext != "" && slices.Contains(c.Extensions, ext)
}

// CountLines returns the number of newline-terminated lines in data, plus one
// for a trailing line without a newline.
func CountLines(data []byte) int {
	n := bytes.Count(data, []byte{'\n'})
	if len(data) > 0 && data[len(data)-1] != '\n' {
		n++
	}
	return n
}
