package bump

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/indaco/relkit/internal/config"
	"github.com/indaco/relkit/internal/core"
	"github.com/indaco/relkit/internal/manifest"
	"github.com/indaco/relkit/internal/operations"
	"github.com/indaco/relkit/internal/printer"
	"github.com/indaco/relkit/internal/semver"
	"github.com/urfave/cli/v3"
)

// Run returns the "bump" parent command.
func Run(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "bump",
		Usage:     "Bump the manifest version (patch, minor, major)",
		UsageText: "relkit bump <patch|minor|major> [--dry-run]",
		Commands: []*cli.Command{
			kindCmd(cfg, semver.BumpPatch, "Increment patch version"),
			kindCmd(cfg, semver.BumpMinor, "Increment minor version and reset patch"),
			kindCmd(cfg, semver.BumpMajor, "Increment major version and reset minor and patch"),
		},
		// Reached only when the argument is not one of the subcommands.
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, err := semver.ParseBumpKind(cmd.Args().First())
			return err
		},
	}
}

func kindCmd(cfg *config.Config, kind semver.BumpKind, usage string) *cli.Command {
	return &cli.Command{
		Name:  string(kind),
		Usage: usage,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Show the new version without writing it",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runBump(ctx, cfg, kind, cmd.Bool("dry-run"))
		},
	}
}

func runBump(ctx context.Context, cfg *config.Config, kind semver.BumpKind, dryRun bool) error {
	file, err := manifest.Open(core.NewOSFileSystem(), cfg.ManifestPath(), cfg.Manifest.Format)
	if err != nil {
		return err
	}

	res, err := operations.NewBumpOperation(file, kind).Execute(ctx, dryRun)
	if err != nil {
		return err
	}

	printer.PrintPlain(fmt.Sprintf("Current version: %s", res.Current))
	printer.PrintInfo(fmt.Sprintf("New version: %s", res.Next))
	if dryRun {
		printer.PrintWarning("Dry run - no changes made")
		return nil
	}
	printer.PrintSuccess(fmt.Sprintf("Updated %s", filepath.Base(file.Path())))
	return nil
}
