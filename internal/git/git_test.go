package git

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

func gitCmd(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v failed: %v\n%s", args, err, out)
	}
	return strings.TrimSpace(string(out))
}

// setupTestRepo creates a repository with one commit and returns its path.
func setupTestRepo(t *testing.T) string {
	t.Helper()
	requireGit(t)

	dir := t.TempDir()
	gitCmd(t, dir, "init", "-q")
	gitCmd(t, dir, "config", "user.name", "Test")
	gitCmd(t, dir, "config", "user.email", "test@example.com")
	gitCmd(t, dir, "config", "commit.gpgsign", "false")
	gitCmd(t, dir, "config", "tag.gpgsign", "false")

	if err := os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte("version = \"1.0.0\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	gitCmd(t, dir, "add", "Cargo.toml")
	gitCmd(t, dir, "commit", "-q", "-m", "initial")
	return dir
}

func TestOSGitOperations_TagExists(t *testing.T) {
	dir := setupTestRepo(t)
	ops := NewOSGitOperations(dir, "")
	ctx := context.Background()

	exists, err := ops.TagExists(ctx, "v1.0.0")
	if err != nil {
		t.Fatalf("TagExists() unexpected error: %v", err)
	}
	if exists {
		t.Fatal("TagExists() = true before tagging")
	}

	if err := ops.CreateAnnotatedTag(ctx, "v1.0.0", "Release v1.0.0\n\nnotes"); err != nil {
		t.Fatalf("CreateAnnotatedTag() unexpected error: %v", err)
	}

	exists, err = ops.TagExists(ctx, "v1.0.0")
	if err != nil {
		t.Fatalf("TagExists() unexpected error: %v", err)
	}
	if !exists {
		t.Error("TagExists() = false after tagging")
	}

	if got := gitCmd(t, dir, "tag", "-l", "--format=%(contents)", "v1.0.0"); got != "Release v1.0.0\n\nnotes" {
		t.Errorf("tag message = %q", got)
	}
}

func TestOSGitOperations_TagExists_FromSubdirectory(t *testing.T) {
	dir := setupTestRepo(t)
	gitCmd(t, dir, "tag", "v2.0.0")
	sub := filepath.Join(dir, "crates", "core")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	exists, err := NewOSGitOperations(sub, "").TagExists(context.Background(), "v2.0.0")
	if err != nil || !exists {
		t.Errorf("TagExists() = %v, %v; want true, nil", exists, err)
	}
}

func TestOSGitOperations_TagExists_NotARepository(t *testing.T) {
	_, err := NewOSGitOperations(t.TempDir(), "").TagExists(context.Background(), "v1.0.0")
	if err == nil {
		t.Fatal("TagExists() expected error outside a repository")
	}
}

func TestOSGitOperations_StageAndCommit(t *testing.T) {
	dir := setupTestRepo(t)
	ops := NewOSGitOperations(dir, "")
	ctx := context.Background()

	staged, err := ops.HasStagedChanges(ctx)
	if err != nil {
		t.Fatalf("HasStagedChanges() unexpected error: %v", err)
	}
	if staged {
		t.Fatal("HasStagedChanges() = true on a clean index")
	}

	if err := os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte("version = \"1.1.0\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := ops.StageFiles(ctx, "Cargo.toml"); err != nil {
		t.Fatalf("StageFiles() unexpected error: %v", err)
	}

	staged, err = ops.HasStagedChanges(ctx)
	if err != nil || !staged {
		t.Fatalf("HasStagedChanges() = %v, %v; want true, nil", staged, err)
	}

	if err := ops.Commit(ctx, "chore: release v1.1.0"); err != nil {
		t.Fatalf("Commit() unexpected error: %v", err)
	}
	if got := gitCmd(t, dir, "log", "-1", "--format=%s"); got != "chore: release v1.1.0" {
		t.Errorf("last commit subject = %q", got)
	}

	staged, err = ops.HasStagedChanges(ctx)
	if err != nil || staged {
		t.Errorf("HasStagedChanges() after commit = %v, %v; want false, nil", staged, err)
	}
}

func TestOSGitOperations_StageFiles_Missing(t *testing.T) {
	dir := setupTestRepo(t)
	err := NewOSGitOperations(dir, "").StageFiles(context.Background(), "CHANGELOG.md")
	if err == nil {
		t.Fatal("StageFiles() expected error for a missing path")
	}
	if !strings.Contains(err.Error(), "CHANGELOG.md") {
		t.Errorf("error should carry git's stderr, got %v", err)
	}
}

func TestOSGitOperations_StageFiles_NoPaths(t *testing.T) {
	ops := &OSGitOperations{execCommand: func(context.Context, string, ...string) *exec.Cmd {
		t.Fatal("git must not run without paths")
		return nil
	}}
	if err := ops.StageFiles(context.Background()); err != nil {
		t.Errorf("StageFiles() unexpected error: %v", err)
	}
}

func TestOSGitOperations_PushAndPushTags(t *testing.T) {
	dir := setupTestRepo(t)
	remote := filepath.Join(t.TempDir(), "remote.git")
	gitCmd(t, dir, "init", "-q", "--bare", remote)
	gitCmd(t, dir, "remote", "add", "origin", remote)
	gitCmd(t, dir, "push", "-q", "-u", "origin", "HEAD")

	ops := NewOSGitOperations(dir, "origin")
	ctx := context.Background()

	if err := os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte("version = \"1.0.1\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	gitCmd(t, dir, "commit", "-q", "-am", "bump")
	if err := ops.CreateAnnotatedTag(ctx, "v1.0.1", "Release v1.0.1"); err != nil {
		t.Fatal(err)
	}

	if err := ops.Push(ctx); err != nil {
		t.Fatalf("Push() unexpected error: %v", err)
	}
	if err := ops.PushTags(ctx); err != nil {
		t.Fatalf("PushTags() unexpected error: %v", err)
	}

	repo, err := gogit.PlainOpen(remote)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Reference(plumbing.NewTagReferenceName("v1.0.1"), false); err != nil {
		t.Errorf("remote is missing tag v1.0.1: %v", err)
	}
	local := gitCmd(t, dir, "rev-parse", "HEAD")
	remoteHead := gitCmd(t, remote, "rev-parse", "HEAD")
	if local != remoteHead {
		t.Errorf("remote HEAD = %s, want %s", remoteHead, local)
	}
}

func TestOSGitOperations_PushArgs(t *testing.T) {
	tests := []struct {
		remote string
		want   string
	}{
		{"", "push"},
		{"upstream", "push upstream"},
	}
	for _, tt := range tests {
		ops := &OSGitOperations{Remote: tt.remote}
		if got := strings.Join(ops.pushArgs(), " "); got != tt.want {
			t.Errorf("pushArgs(%q) = %q, want %q", tt.remote, got, tt.want)
		}
	}
}

func TestOSGitOperations_RunFoldsStderr(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	ops := &OSGitOperations{
		Dir: t.TempDir(),
		execCommand: func(ctx context.Context, _ string, _ ...string) *exec.Cmd {
			return exec.CommandContext(ctx, "sh", "-c", "echo 'fatal: remote rejected' >&2; exit 128")
		},
	}

	err := ops.Push(context.Background())
	if err == nil {
		t.Fatal("Push() expected error")
	}
	if !strings.Contains(err.Error(), "fatal: remote rejected") {
		t.Errorf("error = %v, want stderr folded in", err)
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) || exitErr.ExitCode() != 128 {
		t.Errorf("error should wrap the exit status, got %v", err)
	}

	if _, err := ops.HasStagedChanges(context.Background()); err == nil {
		t.Error("HasStagedChanges() should fail on exit status other than 1")
	}
}

func TestOSGitOperations_ContextCanceled(t *testing.T) {
	dir := setupTestRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ops := NewOSGitOperations(dir, "")
	if err := ops.Commit(ctx, "never"); !errors.Is(err, context.Canceled) {
		t.Errorf("Commit() error = %v, want context.Canceled", err)
	}
	if _, err := ops.TagExists(ctx, "v1.0.0"); !errors.Is(err, context.Canceled) {
		t.Errorf("TagExists() error = %v, want context.Canceled", err)
	}
}

func TestMockGitOperations_Defaults(t *testing.T) {
	m := &MockGitOperations{}
	ctx := context.Background()

	if exists, _ := m.TagExists(ctx, "v1.0.0"); exists {
		t.Error("default TagExists should be false")
	}
	if staged, _ := m.HasStagedChanges(ctx); !staged {
		t.Error("default HasStagedChanges should be true")
	}
	if err := m.Push(ctx); err != nil {
		t.Error(err)
	}
}
