package ship

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/indaco/relkit/internal/ci"
	"github.com/indaco/relkit/internal/config"
	"github.com/indaco/relkit/internal/console"
	"github.com/indaco/relkit/internal/core"
	"github.com/indaco/relkit/internal/git"
	"github.com/indaco/relkit/internal/manifest"
	"github.com/indaco/relkit/internal/printer"
	"github.com/indaco/relkit/internal/release"
	"github.com/indaco/relkit/internal/semver"
	"github.com/urfave/cli/v3"
)

// newGitOps builds the repository operations; swapped in tests.
var newGitOps = func(dir, remote string) git.Operations {
	return git.NewOSGitOperations(dir, remote)
}

// Run returns the "ship" command.
func Run(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "ship",
		Usage:     "Bump the version, commit, tag and push in one step",
		UsageText: "relkit ship --bump-type <patch|minor|major> [--description TEXT] [--dry-run]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "bump-type",
				Usage:    "Version component to bump: " + strings.Join(semver.BumpKinds(), ", "),
				Required: true,
			},
			&cli.StringFlag{
				Name:  "description",
				Usage: "Text appended to the release commit and tag messages",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Report what would be released without touching the repository",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			kind, err := semver.ParseBumpKind(cmd.String("bump-type"))
			if err != nil {
				return err
			}
			return runShip(ctx, cfg, release.Options{
				Kind:        kind,
				Description: cmd.String("description"),
				DryRun:      cmd.Bool("dry-run"),
			})
		},
	}
}

func runShip(ctx context.Context, cfg *config.Config, opts release.Options) error {
	fs := core.NewOSFileSystem()
	file, err := manifest.Open(fs, cfg.ManifestPath(), cfg.Manifest.Format)
	if err != nil {
		return err
	}

	if console.IsCI() && os.Getenv(ci.EnvOutputFile) == "" && !opts.DryRun {
		printer.PrintFaint(ci.EnvOutputFile + " is not set, step outputs go to stdout only")
	}

	orch := release.New(release.Config{
		FS:        fs,
		Manifest:  file,
		Git:       newGitOps(cfg.Dir, cfg.Release.Remote),
		Signals:   ci.FromEnv(fs),
		Dir:       cfg.Dir,
		Changelog: cfg.ChangelogPath(),
		TagPrefix: cfg.Release.TagPrefix,
	})
	orch.Progress = printer.PrintInfo

	res, err := orch.Run(ctx, opts)
	if err != nil {
		return err
	}

	if opts.DryRun {
		printDryRun(res)
	}
	return nil
}

func printDryRun(res *release.Result) {
	printer.PrintWarning("Dry run - repository not modified")
	printer.PrintPlain(fmt.Sprintf("Current version: %s", res.Current))
	printer.PrintPlain(fmt.Sprintf("New version: %s", res.Next))
	if res.AlreadyReleased {
		printer.PrintPlain("Nothing to release")
		return
	}
	printer.PrintPlain(fmt.Sprintf("Would stage: %s", strings.Join(res.Staged, ", ")))
	printer.PrintPlain(fmt.Sprintf("Would commit, tag %s and push", res.Tag))
}
