package cli

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/indaco/relkit/internal/config"
	"github.com/indaco/relkit/internal/semver"
	"github.com/indaco/relkit/internal/testutils"
)

func TestNew_Commands(t *testing.T) {
	app := New(config.Default())

	want := []string{"bump", "changelog", "release", "ship", "linecheck"}
	if len(app.Commands) != len(want) {
		t.Fatalf("got %d commands, want %d", len(app.Commands), len(want))
	}
	for i, name := range want {
		if app.Commands[i].Name != name {
			t.Errorf("command %d = %q, want %q", i, app.Commands[i].Name, name)
		}
	}
}

func TestNew_LoadsConfigFromDir(t *testing.T) {
	tmpDir := t.TempDir()
	testutils.WriteTempFile(t, tmpDir, config.DefaultFile, "manifest:\n  path: crates/core/Cargo.toml\n")
	manifestPath := testutils.WriteTempFile(t, tmpDir, "crates/core/Cargo.toml", "[package]\nversion = \"0.2.0\"\n")

	cfg := config.Default()
	out := testutils.RunCLITest(t, New(cfg), []string{"relkit", "--no-color", "--dir", tmpDir, "bump", "patch"})

	if !strings.Contains(out, "New version: 0.2.1") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if got := testutils.ReadFile(t, manifestPath); got != "[package]\nversion = \"0.2.1\"\n" {
		t.Errorf("manifest = %q", got)
	}
	if cfg.Dir != tmpDir {
		t.Errorf("cfg.Dir = %q, want %q", cfg.Dir, tmpDir)
	}
}

func TestNew_ExplicitConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := testutils.WriteTempFile(t, tmpDir, "ci/relkit.yaml", "manifest:\n  path: VERSION\n")
	manifestPath := testutils.WriteTempFile(t, tmpDir, "VERSION", "4.0.0\n")

	testutils.RunCLITest(t, New(config.Default()), []string{"relkit", "--dir", tmpDir, "--config", cfgPath, "bump", "minor"})

	if got := testutils.ReadFile(t, manifestPath); got != "4.1.0\n" {
		t.Errorf("VERSION = %q", got)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	testutils.WriteTempFile(t, tmpDir, config.DefaultFile, "unknown-key: true\n")

	_, err := testutils.RunCLITestAllowError(t, New(config.Default()), []string{"relkit", "--dir", tmpDir, "bump", "patch"})
	if err == nil {
		t.Fatal("expected error for an invalid config file")
	}
}

func TestNew_InvalidBumpKind(t *testing.T) {
	tmpDir := t.TempDir()
	testutils.WriteTempManifest(t, tmpDir, "1.0.0")

	_, err := testutils.RunCLITestAllowError(t, New(config.Default()), []string{"relkit", "--dir", tmpDir, "bump", "giant"})
	if !errors.Is(err, semver.ErrInvalidBumpKind) {
		t.Errorf("error = %v, want ErrInvalidBumpKind", err)
	}
}

func TestLoad_RelativeDir(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	cfg, err := load(context.Background(), "", "")
	if err != nil {
		t.Fatalf("load() unexpected error: %v", err)
	}
	if !filepath.IsAbs(cfg.Dir) {
		t.Errorf("cfg.Dir = %q, want absolute", cfg.Dir)
	}
}
