// Package operations provides the version bump shared by the bump and ship
// commands.
package operations

import (
	"context"
	"fmt"

	"github.com/indaco/relkit/internal/semver"
)

// VersionFile is a manifest holding the project version.
type VersionFile interface {
	Path() string
	Read(ctx context.Context) (semver.SemVersion, error)
	Write(ctx context.Context, v semver.SemVersion) error
}

// BumpResult is the outcome of planning a bump.
type BumpResult struct {
	Current semver.SemVersion
	Next    semver.SemVersion
}

// BumpOperation bumps the version recorded in a manifest.
type BumpOperation struct {
	file VersionFile
	kind semver.BumpKind
}

// NewBumpOperation creates a new bump operation.
func NewBumpOperation(file VersionFile, kind semver.BumpKind) *BumpOperation {
	return &BumpOperation{file: file, kind: kind}
}

// Plan reads the current version and computes the next one without writing.
func (op *BumpOperation) Plan(ctx context.Context) (BumpResult, error) {
	if err := ctx.Err(); err != nil {
		return BumpResult{}, err
	}

	current, err := op.file.Read(ctx)
	if err != nil {
		return BumpResult{}, fmt.Errorf("failed to read version from %s: %w", op.file.Path(), err)
	}
	return BumpResult{Current: current, Next: semver.Bump(current, op.kind)}, nil
}

// Apply writes the planned version.
func (op *BumpOperation) Apply(ctx context.Context, res BumpResult) error {
	if err := op.file.Write(ctx, res.Next); err != nil {
		return fmt.Errorf("failed to write version to %s: %w", op.file.Path(), err)
	}
	return nil
}

// Execute plans and applies the bump. With dryRun nothing is written.
func (op *BumpOperation) Execute(ctx context.Context, dryRun bool) (BumpResult, error) {
	res, err := op.Plan(ctx)
	if err != nil {
		return res, err
	}
	if dryRun {
		return res, nil
	}
	return res, op.Apply(ctx, res)
}
