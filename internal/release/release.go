// Package release bumps, commits, tags and pushes a new version in one step.
//
// The sequence is idempotent with respect to tags: if the tag for the next
// version already exists, nothing is written and the run reports that the
// version was already released. Later steps are not attempted once one
// fails, and completed steps are not rolled back.
package release

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/indaco/relkit/internal/ci"
	"github.com/indaco/relkit/internal/core"
	"github.com/indaco/relkit/internal/git"
	"github.com/indaco/relkit/internal/operations"
	"github.com/indaco/relkit/internal/semver"
)

// Signals receives CI step outputs.
type Signals interface {
	Set(ctx context.Context, name, value string) error
}

// Options configures a release run.
type Options struct {
	Kind        semver.BumpKind
	Description string
	DryRun      bool
}

// Result summarises a run.
type Result struct {
	Current semver.SemVersion
	Next    semver.SemVersion
	Tag     string
	// AlreadyReleased is set when the tag existed and the run stopped early.
	AlreadyReleased bool
	// Committed is false when staging produced no diff.
	Committed bool
	DryRun    bool
	// Staged lists the paths passed to git add, relative to the repository
	// directory where possible.
	Staged []string
}

// Orchestrator runs the release sequence.
type Orchestrator struct {
	fs        core.FileSystem
	manifest  operations.VersionFile
	git       git.Operations
	signals   Signals
	dir       string
	changelog string
	tagPrefix string

	// Progress receives one line per completed step. Nil discards them.
	Progress func(msg string)
}

// Config wires an Orchestrator.
type Config struct {
	FS        core.FileSystem
	Manifest  operations.VersionFile
	Git       git.Operations
	Signals   Signals
	Dir       string
	Changelog string
	TagPrefix string
}

// New creates an Orchestrator.
func New(cfg Config) *Orchestrator {
	return &Orchestrator{
		fs:        cfg.FS,
		manifest:  cfg.Manifest,
		git:       cfg.Git,
		signals:   cfg.Signals,
		dir:       cfg.Dir,
		changelog: cfg.Changelog,
		tagPrefix: cfg.TagPrefix,
	}
}

// CommitMessage returns the release commit message for tag.
func CommitMessage(tag, description string) string {
	return withDescription("chore: release "+tag, description)
}

// TagMessage returns the annotated tag message for tag.
func TagMessage(tag, description string) string {
	return withDescription("Release "+tag, description)
}

func withDescription(subject, description string) string {
	if description == "" {
		return subject
	}
	return subject + "\n\n" + description
}

// Run executes the release sequence.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*Result, error) {
	bump := operations.NewBumpOperation(o.manifest, opts.Kind)
	plan, err := bump.Plan(ctx)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Current: plan.Current,
		Next:    plan.Next,
		Tag:     o.tagPrefix + plan.Next.String(),
		DryRun:  opts.DryRun,
	}

	exists, err := o.git.TagExists(ctx, res.Tag)
	if err != nil {
		return nil, fmt.Errorf("failed to check tag %s: %w", res.Tag, err)
	}
	if exists {
		res.AlreadyReleased = true
		o.progress(fmt.Sprintf("Tag %s already exists", res.Tag))
		if opts.DryRun {
			return res, nil
		}
		return res, o.emit(ctx,
			ci.OutputAlreadyReleased, "true",
			ci.OutputNewVersion, res.Next.String(),
		)
	}

	res.Staged = o.stagePaths(ctx)
	if opts.DryRun {
		return res, nil
	}

	if err := bump.Apply(ctx, plan); err != nil {
		return nil, err
	}
	o.progress(fmt.Sprintf("Updated %s to version %s", filepath.Base(o.manifest.Path()), res.Next))

	if err := o.git.StageFiles(ctx, res.Staged...); err != nil {
		return nil, fmt.Errorf("failed to stage release files: %w", err)
	}

	staged, err := o.git.HasStagedChanges(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to inspect staged changes: %w", err)
	}
	if staged {
		if err := o.git.Commit(ctx, CommitMessage(res.Tag, opts.Description)); err != nil {
			return nil, fmt.Errorf("failed to commit release: %w", err)
		}
		res.Committed = true
		o.progress(fmt.Sprintf("Committed version %s", res.Next))
	}

	if err := o.git.CreateAnnotatedTag(ctx, res.Tag, TagMessage(res.Tag, opts.Description)); err != nil {
		return nil, fmt.Errorf("failed to create tag %s: %w", res.Tag, err)
	}
	o.progress(fmt.Sprintf("Created tag %s", res.Tag))

	if err := o.git.Push(ctx); err != nil {
		return nil, fmt.Errorf("failed to push: %w", err)
	}
	if err := o.git.PushTags(ctx); err != nil {
		return nil, fmt.Errorf("failed to push tags: %w", err)
	}
	o.progress("Pushed changes and tags")

	return res, o.emit(ctx,
		ci.OutputVersionCommitted, "true",
		ci.OutputNewVersion, res.Next.String(),
	)
}

// stagePaths returns the manifest and, when present on disk, the changelog.
func (o *Orchestrator) stagePaths(ctx context.Context) []string {
	paths := []string{o.relative(o.manifest.Path())}
	if o.changelog != "" && core.Exists(ctx, o.fs, o.changelog) {
		paths = append(paths, o.relative(o.changelog))
	}
	return paths
}

func (o *Orchestrator) relative(p string) string {
	if o.dir == "" {
		return p
	}
	if rel, err := filepath.Rel(o.dir, p); err == nil {
		return rel
	}
	return p
}

// emit sets name/value pairs in order.
func (o *Orchestrator) emit(ctx context.Context, pairs ...string) error {
	if o.signals == nil {
		return nil
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		if err := o.signals.Set(ctx, pairs[i], pairs[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func (o *Orchestrator) progress(msg string) {
	if o.Progress != nil {
		o.Progress(msg)
	}
}
