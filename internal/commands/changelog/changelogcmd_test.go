package changelog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/indaco/relkit/internal/testutils"
	"github.com/urfave/cli/v3"
)

const marker = "<!-- changelog-insert-here -->"

func TestCLI_ChangelogCollect(t *testing.T) {
	tmpDir := t.TempDir()
	testutils.WriteTempManifest(t, tmpDir, "1.4.0")
	changelogPath := testutils.WriteTempFile(t, tmpDir, "CHANGELOG.md",
		"# Changelog\n\n"+marker+"\n\n## [1.3.0] - 2024-01-01\n\n- Old\n")
	testutils.WriteTempFile(t, tmpDir, "changelog.d/b-fix.md", "- Fixed Y\n")
	testutils.WriteTempFile(t, tmpDir, "changelog.d/a-feature.md", "- Added X\n")
	readme := testutils.WriteTempFile(t, tmpDir, "changelog.d/README.md", "Fragments go here.\n")

	appCli := testutils.BuildCLIForTests([]*cli.Command{Run(testutils.ConfigFor(tmpDir))})
	out := testutils.RunCLITest(t, appCli, []string{"relkit", "changelog", "collect"})

	for _, want := range []string{
		"Collecting changelog fragments for version 1.4.0",
		"Removed " + filepath.Join(tmpDir, "changelog.d", "a-feature.md"),
		"Updated CHANGELOG.md with version 1.4.0",
		"Changelog collection complete",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	today := time.Now().Format("2006-01-02")
	want := "# Changelog\n\n" + marker + "\n## [1.4.0] - " + today + "\n\n- Added X\n\n- Fixed Y\n\n\n## [1.3.0] - 2024-01-01\n\n- Old\n"
	if got := testutils.ReadFile(t, changelogPath); got != want {
		t.Errorf("changelog =\n%q\nwant\n%q", got, want)
	}

	entries, err := os.ReadDir(filepath.Join(tmpDir, "changelog.d"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != filepath.Base(readme) {
		t.Errorf("fragment dir holds %v, want only README.md", entries)
	}
}

func TestCLI_ChangelogCollect_NoFragments(t *testing.T) {
	tmpDir := t.TempDir()
	testutils.WriteTempManifest(t, tmpDir, "1.0.0")

	appCli := testutils.BuildCLIForTests([]*cli.Command{Run(testutils.ConfigFor(tmpDir))})
	out := testutils.RunCLITest(t, appCli, []string{"relkit", "changelog", "collect"})

	if !strings.Contains(out, "No changelog fragments found") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "CHANGELOG.md")); !os.IsNotExist(err) {
		t.Error("changelog must not be created without fragments")
	}
}

func TestCLI_ChangelogCollect_CreatesChangelog(t *testing.T) {
	tmpDir := t.TempDir()
	testutils.WriteTempManifest(t, tmpDir, "0.1.0")
	testutils.WriteTempFile(t, tmpDir, "changelog.d/first.md", "- Initial release")

	appCli := testutils.BuildCLIForTests([]*cli.Command{Run(testutils.ConfigFor(tmpDir))})
	testutils.RunCLITest(t, appCli, []string{"relkit", "changelog", "collect"})

	got := testutils.ReadFile(t, filepath.Join(tmpDir, "CHANGELOG.md"))
	if !strings.HasPrefix(got, "# Changelog\n") || !strings.Contains(got, marker+"\n\n## [0.1.0]") {
		t.Errorf("changelog = %q", got)
	}
}

func TestCLI_ChangelogCollect_DryRun(t *testing.T) {
	tmpDir := t.TempDir()
	testutils.WriteTempManifest(t, tmpDir, "2.0.0")
	changelogPath := testutils.WriteTempFile(t, tmpDir, "CHANGELOG.md", "# Changelog\n\n"+marker+"\n")
	fragment := testutils.WriteTempFile(t, tmpDir, "changelog.d/x.md", "- Breaking")

	appCli := testutils.BuildCLIForTests([]*cli.Command{Run(testutils.ConfigFor(tmpDir))})
	out := testutils.RunCLITest(t, appCli, []string{"relkit", "changelog", "collect", "--dry-run"})

	if !strings.Contains(out, "Dry run") || !strings.Contains(out, "## [2.0.0]") || !strings.Contains(out, "- Breaking") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if got := testutils.ReadFile(t, changelogPath); got != "# Changelog\n\n"+marker+"\n" {
		t.Errorf("dry run modified changelog: %q", got)
	}
	if _, err := os.Stat(fragment); err != nil {
		t.Errorf("dry run removed the fragment: %v", err)
	}
}

func TestCLI_ChangelogCollect_MissingManifest(t *testing.T) {
	appCli := testutils.BuildCLIForTests([]*cli.Command{Run(testutils.ConfigFor(t.TempDir()))})
	if _, err := testutils.RunCLITestAllowError(t, appCli, []string{"relkit", "changelog", "collect"}); err == nil {
		t.Fatal("expected error for a missing manifest")
	}
}
