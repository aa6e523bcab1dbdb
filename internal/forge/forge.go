// Package forge publishes releases on a hosted forge through its CLI.
package forge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

// DefaultCLI is the forge CLI binary used when none is configured.
const DefaultCLI = "gh"

var (
	// ErrReleaseExists is returned when the forge already has a release for
	// the tag. Callers treat it as a benign skip.
	ErrReleaseExists = errors.New("release already exists")
	// ErrCLINotFound is returned when the forge CLI binary is not on PATH.
	ErrCLINotFound = errors.New("forge CLI not found")
	// ErrUnauthenticated is returned when the forge rejects the credentials.
	ErrUnauthenticated = errors.New("forge authentication failed")
	// ErrRepositoryNotFound is returned when the target repository is unknown.
	ErrRepositoryNotFound = errors.New("repository not found")
)

// Release describes a release to publish.
type Release struct {
	Tag        string
	Title      string
	Repository string
	Notes      string
}

// Creator publishes releases.
type Creator interface {
	CreateRelease(ctx context.Context, r Release) (string, error)
}

// Client drives the forge CLI.
type Client struct {
	Binary string

	execCommand func(ctx context.Context, name string, arg ...string) *exec.Cmd
}

// Verify Client implements Creator.
var _ Creator = (*Client)(nil)

// NewClient returns a Client for binary, or DefaultCLI when empty.
func NewClient(binary string) *Client {
	if binary == "" {
		binary = DefaultCLI
	}
	return &Client{Binary: binary, execCommand: exec.CommandContext}
}

// Args returns the CLI arguments used to create r.
func (r Release) Args() []string {
	title := r.Title
	if title == "" {
		title = r.Tag
	}
	return []string{"release", "create", r.Tag, "--repo", r.Repository, "--title", title, "--notes", r.Notes}
}

// CreateRelease creates the release and returns the CLI's trimmed stdout,
// which for gh is the release URL.
func (c *Client) CreateRelease(ctx context.Context, r Release) (string, error) {
	cmd := c.execCommand(ctx, c.Binary, r.Args()...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("creating release %s: %w", r.Tag, ctxErr)
		}
		return "", classify(r.Tag, c.Binary, strings.TrimSpace(stderr.String()), err)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// failurePattern maps forge CLI stderr onto a sentinel error.
type failurePattern struct {
	pattern *regexp.Regexp
	err     error
	hint    string
}

// failurePatterns are checked in order; the first match wins.
var failurePatterns = []failurePattern{
	{
		pattern: regexp.MustCompile(`already exists`),
		err:     ErrReleaseExists,
	},
	{
		pattern: regexp.MustCompile(`(?i)HTTP 401|gh auth login|authentication required`),
		err:     ErrUnauthenticated,
		hint:    "set GH_TOKEN or run `gh auth login`",
	},
	{
		pattern: regexp.MustCompile(`(?i)could not resolve to a repository|HTTP 404`),
		err:     ErrRepositoryNotFound,
		hint:    "check the --repository value and token scope",
	},
}

// classify maps CLI failures onto the package sentinels where possible.
func classify(tag, binary, stderrMsg string, err error) error {
	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrCLINotFound, binary)
	}
	for _, p := range failurePatterns {
		if !p.pattern.MatchString(stderrMsg) {
			continue
		}
		if p.err == ErrReleaseExists {
			return fmt.Errorf("%w: %s", ErrReleaseExists, tag)
		}
		return fmt.Errorf("%w: %s (%s)", p.err, stderrMsg, p.hint)
	}
	if stderrMsg != "" {
		return fmt.Errorf("%s: %w", stderrMsg, err)
	}
	return fmt.Errorf("%s release create failed: %w", binary, err)
}
