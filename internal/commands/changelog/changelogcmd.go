package changelog

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	clog "github.com/indaco/relkit/internal/changelog"
	"github.com/indaco/relkit/internal/config"
	"github.com/indaco/relkit/internal/core"
	"github.com/indaco/relkit/internal/manifest"
	"github.com/indaco/relkit/internal/printer"
	"github.com/urfave/cli/v3"
)

// Run returns the "changelog" parent command.
func Run(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "changelog",
		Usage:     "Manage the changelog",
		UsageText: "relkit changelog <subcommand> [--flags]",
		Commands: []*cli.Command{
			collectCmd(cfg),
		},
	}
}

func collectCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "collect",
		Usage: "Fold pending fragments into the changelog under the manifest version",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Print the section that would be inserted without touching any file",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runCollect(ctx, cfg, cmd.Bool("dry-run"))
		},
	}
}

// NewService returns the changelog service configured by cfg.
func NewService(fs core.FileSystem, cfg *config.Config) *clog.Service {
	return clog.NewService(fs, clog.Options{
		ChangelogPath:  cfg.ChangelogPath(),
		FragmentsDir:   cfg.FragmentsDir(),
		FragmentSuffix: cfg.Changelog.FragmentSuffix,
		Reserved:       cfg.Changelog.Reserved,
		Marker:         cfg.Changelog.Marker,
	})
}

func runCollect(ctx context.Context, cfg *config.Config, dryRun bool) error {
	fs := core.NewOSFileSystem()
	file, err := manifest.Open(fs, cfg.ManifestPath(), cfg.Manifest.Format)
	if err != nil {
		return err
	}
	version, err := file.ReadRaw(ctx)
	if err != nil {
		return err
	}

	printer.PrintInfo(fmt.Sprintf("Collecting changelog fragments for version %s", version))

	res, err := NewService(fs, cfg).Release(ctx, version, dryRun)
	if res != nil {
		for _, path := range res.Removed {
			printer.PrintFaint(fmt.Sprintf("Removed %s", path))
		}
	}
	if err != nil {
		return err
	}

	if res.Empty {
		printer.PrintWarning("No changelog fragments found")
		return nil
	}

	changelogName := filepath.Base(cfg.ChangelogPath())
	if dryRun {
		printer.PrintWarning(fmt.Sprintf("Dry run - %s not modified (%s)", changelogName, res.Placement))
		printer.PrintPlain(strings.TrimSpace(res.Section))
		return nil
	}

	if res.Placement == clog.PlacedAppended {
		printer.PrintWarning("No insertion marker or release heading found, section appended at the end")
	}
	printer.PrintSuccess(fmt.Sprintf("Updated %s with version %s", changelogName, version))
	printer.PrintSuccess("Changelog collection complete")
	return nil
}
