package release

import (
	"context"
	"errors"
	"fmt"
	"strings"

	changelogcmd "github.com/indaco/relkit/internal/commands/changelog"
	"github.com/indaco/relkit/internal/config"
	"github.com/indaco/relkit/internal/core"
	"github.com/indaco/relkit/internal/forge"
	"github.com/indaco/relkit/internal/printer"
	"github.com/indaco/relkit/internal/semver"
	"github.com/urfave/cli/v3"
)

// newCreator builds the forge client; swapped in tests.
var newCreator = func(binary string) forge.Creator {
	return forge.NewClient(binary)
}

// Run returns the "release" parent command.
func Run(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "release",
		Usage:     "Publish releases on the forge",
		UsageText: "relkit release <subcommand> [--flags]",
		Commands: []*cli.Command{
			createCmd(cfg),
		},
	}
}

func createCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "Create a forge release whose notes are the changelog section for the version",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "version",
				Usage:    "Version to release, e.g. 1.2.0",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "repository",
				Aliases:  []string{"repo"},
				Usage:    "Repository in OWNER/NAME form",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Print the release without creating it",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runCreate(ctx, cfg, cmd.String("version"), cmd.String("repository"), cmd.Bool("dry-run"))
		},
	}
}

func runCreate(ctx context.Context, cfg *config.Config, version, repository string, dryRun bool) error {
	if !semver.IsValid(version) {
		return fmt.Errorf("%w: %q", semver.ErrInvalidVersion, version)
	}
	version = strings.TrimPrefix(strings.TrimSpace(version), "v")
	tag := cfg.TagName(version)

	notes, err := changelogcmd.NewService(core.NewOSFileSystem(), cfg).Notes(ctx, version, tag)
	if err != nil {
		return err
	}

	rel := forge.Release{Tag: tag, Title: tag, Repository: repository, Notes: notes}
	if dryRun {
		printer.PrintWarning("Dry run - release not created")
		printer.PrintBold(fmt.Sprintf("Tag: %s", rel.Tag))
		printer.PrintPlain(fmt.Sprintf("Repository: %s", rel.Repository))
		printer.PrintPlain(fmt.Sprintf("Notes:\n%s", rel.Notes))
		return nil
	}

	out, err := newCreator(cfg.Release.ForgeCLI).CreateRelease(ctx, rel)
	switch {
	case errors.Is(err, forge.ErrReleaseExists):
		printer.PrintWarning(fmt.Sprintf("Release %s already exists, skipping", tag))
		return nil
	case err != nil:
		return fmt.Errorf("error creating release: %w", err)
	}

	printer.PrintSuccess(fmt.Sprintf("Created release %s", tag))
	if out != "" {
		printer.PrintPlain(out)
	}
	return nil
}
