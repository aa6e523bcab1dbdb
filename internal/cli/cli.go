// Package cli assembles the relkit command tree.
package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/indaco/relkit/internal/commands/bump"
	"github.com/indaco/relkit/internal/commands/changelog"
	"github.com/indaco/relkit/internal/commands/linecheck"
	"github.com/indaco/relkit/internal/commands/release"
	"github.com/indaco/relkit/internal/commands/ship"
	"github.com/indaco/relkit/internal/config"
	"github.com/indaco/relkit/internal/console"
	"github.com/indaco/relkit/internal/core"
	"github.com/indaco/relkit/internal/printer"
	"github.com/indaco/relkit/internal/version"
	urfavecli "github.com/urfave/cli/v3"
)

// New builds the root command. cfg is filled from --dir and --config before
// any subcommand runs; subcommands read it at action time.
func New(cfg *config.Config) *urfavecli.Command {
	return &urfavecli.Command{
		Name:                  "relkit",
		Version:               version.GetVersion(),
		Usage:                 "Release automation: bump, changelog, tag, publish",
		EnableShellCompletion: true,
		Flags: []urfavecli.Flag{
			&urfavecli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to the configuration file",
				DefaultText: config.DefaultFile,
			},
			&urfavecli.StringFlag{
				Name:    "dir",
				Aliases: []string{"C"},
				Usage:   "Project root directory",
				Value:   ".",
			},
			&urfavecli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
		},
		Before: func(ctx context.Context, cmd *urfavecli.Command) (context.Context, error) {
			printer.SetNoColor(console.ColorDisabled(cmd.Bool("no-color")))

			loaded, err := load(ctx, cmd.String("dir"), cmd.String("config"))
			if err != nil {
				return ctx, err
			}
			*cfg = *loaded
			return ctx, nil
		},
		Commands: []*urfavecli.Command{
			bump.Run(cfg),
			changelog.Run(cfg),
			release.Run(cfg),
			ship.Run(cfg),
			linecheck.Run(cfg),
		},
	}
}

func load(ctx context.Context, dir, configFile string) (*config.Config, error) {
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid --dir %q: %w", dir, err)
	}
	return config.Load(ctx, core.NewOSFileSystem(), abs, configFile)
}
