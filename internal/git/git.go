// Package git wraps the repository operations needed to cut a release.
//
// Tag lookups read the repository directly through go-git. Everything that
// mutates the repository or talks to a remote shells out to the git CLI, so
// hooks, signing configuration and credential helpers behave exactly as they
// would for a developer running the same commands.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Operations is the set of git actions used by the release orchestrator.
type Operations interface {
	TagExists(ctx context.Context, name string) (bool, error)
	StageFiles(ctx context.Context, paths ...string) error
	HasStagedChanges(ctx context.Context) (bool, error)
	Commit(ctx context.Context, message string) error
	CreateAnnotatedTag(ctx context.Context, name, message string) error
	Push(ctx context.Context) error
	PushTags(ctx context.Context) error
}

// OSGitOperations implements Operations against the repository in Dir.
type OSGitOperations struct {
	// Dir is the working tree every command runs in.
	Dir string
	// Remote is passed to push when set.
	Remote string

	execCommand func(ctx context.Context, name string, arg ...string) *exec.Cmd
	openRepo    func(dir string) (*gogit.Repository, error)
}

// Verify OSGitOperations implements Operations.
var _ Operations = (*OSGitOperations)(nil)

// NewOSGitOperations creates git operations rooted at dir.
func NewOSGitOperations(dir, remote string) *OSGitOperations {
	return &OSGitOperations{
		Dir:         dir,
		Remote:      remote,
		execCommand: exec.CommandContext,
		openRepo:    openRepo,
	}
}

// openRepo opens the repository containing dir, walking up to find .git.
func openRepo(dir string) (*gogit.Repository, error) {
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", dir, err)
	}
	return repo, nil
}

// run executes git with args and returns its trimmed stdout. A non-empty
// stderr is folded into the returned error.
func (g *OSGitOperations) run(ctx context.Context, args ...string) (string, error) {
	cmd := g.execCommand(ctx, "git", args...)
	cmd.Dir = g.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("git %s: %w", args[0], ctxErr)
		}
		stderrMsg := strings.TrimSpace(stderr.String())
		if stderrMsg != "" {
			return "", fmt.Errorf("git %s: %s: %w", args[0], stderrMsg, err)
		}
		return "", fmt.Errorf("git %s failed: %w", args[0], err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// TagExists reports whether refs/tags/<name> exists.
func (g *OSGitOperations) TagExists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	repo, err := g.openRepo(g.Dir)
	if err != nil {
		return false, err
	}
	_, err = repo.Reference(plumbing.NewTagReferenceName(name), false)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, plumbing.ErrReferenceNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("looking up tag %s: %w", name, err)
	}
}

func (g *OSGitOperations) StageFiles(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	_, err := g.run(ctx, append([]string{"add", "--"}, paths...)...)
	return err
}

// HasStagedChanges reports whether the index differs from HEAD.
func (g *OSGitOperations) HasStagedChanges(ctx context.Context) (bool, error) {
	_, err := g.run(ctx, "diff", "--cached", "--quiet")
	if err == nil {
		return false, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return true, nil
	}
	return false, err
}

func (g *OSGitOperations) Commit(ctx context.Context, message string) error {
	_, err := g.run(ctx, "commit", "-m", message)
	return err
}

func (g *OSGitOperations) CreateAnnotatedTag(ctx context.Context, name, message string) error {
	_, err := g.run(ctx, "tag", "-a", name, "-m", message)
	return err
}

func (g *OSGitOperations) Push(ctx context.Context) error {
	_, err := g.run(ctx, g.pushArgs()...)
	return err
}

func (g *OSGitOperations) PushTags(ctx context.Context) error {
	_, err := g.run(ctx, append(g.pushArgs(), "--tags")...)
	return err
}

func (g *OSGitOperations) pushArgs() []string {
	if g.Remote == "" {
		return []string{"push"}
	}
	return []string{"push", g.Remote}
}
