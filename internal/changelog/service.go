package changelog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/indaco/relkit/internal/core"
)

// Options locates the changelog document and its fragments.
type Options struct {
	ChangelogPath  string
	FragmentsDir   string
	FragmentSuffix string
	Reserved       string
	Marker         string
}

// Service collects fragments into the changelog and reads sections back.
type Service struct {
	fs   core.FileSystem
	opts Options
	now  func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the clock used to date new sections.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a changelog Service.
func NewService(fs core.FileSystem, opts Options, options ...Option) *Service {
	s := &Service{fs: fs, opts: opts, now: time.Now}
	for _, o := range options {
		o(s)
	}
	return s
}

// Result describes a completed (or simulated) collection run.
type Result struct {
	Version   string
	Section   string
	Placement Placement
	// Removed lists the deleted fragment paths.
	Removed []string
	// Empty is true when no non-empty fragments were found; nothing else
	// happened in that case.
	Empty bool
}

// Release collects fragments, splices them into the changelog under version
// and deletes the consumed fragments. With dryRun the section is computed but
// nothing is written or removed.
func (s *Service) Release(ctx context.Context, version string, dryRun bool) (*Result, error) {
	fragments, text, err := s.Collect(ctx)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return &Result{Version: version, Empty: true}, nil
	}

	section := BuildSection(version, text, s.now())
	updated, placement, err := s.render(ctx, section)
	if err != nil {
		return nil, err
	}

	res := &Result{Version: version, Section: section, Placement: placement}
	if dryRun {
		return res, nil
	}

	if err := s.fs.WriteFile(ctx, s.opts.ChangelogPath, []byte(updated), core.PermFile); err != nil {
		return nil, fmt.Errorf("failed to write changelog %q: %w", s.opts.ChangelogPath, err)
	}

	res.Removed, err = s.Remove(ctx, fragments)
	if err != nil {
		return res, err
	}
	return res, nil
}

// render returns the changelog with section spliced in.
func (s *Service) render(ctx context.Context, section string) (string, Placement, error) {
	data, err := s.fs.ReadFile(ctx, s.opts.ChangelogPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewDocument(s.opts.Marker, section), PlacedCreated, nil
		}
		return "", 0, fmt.Errorf("failed to read changelog %q: %w", s.opts.ChangelogPath, err)
	}
	updated, placement := Splice(string(data), section, s.opts.Marker)
	return updated, placement, nil
}

// Notes returns the body of the section for version, or FallbackNotes(tag)
// when the changelog is missing or holds no non-empty section for it.
func (s *Service) Notes(ctx context.Context, version, tag string) (string, error) {
	data, err := s.fs.ReadFile(ctx, s.opts.ChangelogPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return FallbackNotes(tag), nil
		}
		return "", fmt.Errorf("failed to read changelog %q: %w", s.opts.ChangelogPath, err)
	}

	section, ok := Parse(string(data)).Section(version)
	if !ok || section.Body == "" {
		return FallbackNotes(tag), nil
	}
	return section.Body, nil
}
