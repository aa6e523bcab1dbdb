package linecheck

import (
	"context"
	"fmt"
	"strings"

	"github.com/indaco/relkit/internal/config"
	"github.com/indaco/relkit/internal/core"
	"github.com/indaco/relkit/internal/linecheck"
	"github.com/indaco/relkit/internal/printer"
	"github.com/urfave/cli/v3"
)

// Run returns the "linecheck" command.
func Run(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "linecheck",
		Usage:     "Fail when source files exceed a maximum line count",
		UsageText: "relkit linecheck [--max-lines N] [--ext .rs]... [--exclude target]... [DIR]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "max-lines",
				Usage:       "Maximum lines allowed per file",
				DefaultText: fmt.Sprint(config.DefaultMaxLines),
			},
			&cli.StringSliceFlag{
				Name:        "ext",
				Usage:       "File extension to check (repeatable)",
				DefaultText: ".rs",
			},
			&cli.StringSliceFlag{
				Name:        "exclude",
				Usage:       "Skip paths containing this name fragment (repeatable)",
				DefaultText: "target, .git, node_modules",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			checker := linecheck.NewChecker(core.NewOSFileSystem())
			checker.MaxLines = cfg.LineCheck.MaxLines
			checker.Extensions = cfg.LineCheck.Extensions
			checker.Exclude = cfg.LineCheck.Exclude

			if cmd.IsSet("max-lines") {
				checker.MaxLines = cmd.Int("max-lines")
			}
			if cmd.IsSet("ext") {
				checker.Extensions = normalizeExtensions(cmd.StringSlice("ext"))
			}
			if cmd.IsSet("exclude") {
				checker.Exclude = cmd.StringSlice("exclude")
			}

			root := cfg.Dir
			if cmd.Args().Present() {
				root = cfg.Resolve(cmd.Args().First())
			}
			if root == "" {
				root = "."
			}
			return runCheck(ctx, checker, root)
		},
	}
}

func runCheck(ctx context.Context, checker *linecheck.Checker, root string) error {
	if checker.MaxLines <= 0 {
		return fmt.Errorf("--max-lines must be positive, got %d", checker.MaxLines)
	}

	printer.PrintInfo(fmt.Sprintf("Checking %s files for maximum %d lines...",
		strings.Join(checker.Extensions, ", "), checker.MaxLines))

	report, err := checker.Check(ctx, root)
	if err != nil {
		return err
	}

	if report.OK() {
		printer.PrintSuccess("All files are within the line limit")
		return nil
	}

	printer.PrintError("Found files exceeding the line limit:")
	for _, v := range report.Violations {
		printer.PrintPlain(fmt.Sprintf("  %s: %d lines (exceeds %d)", v.Path, v.Lines, report.MaxLines))
	}
	printer.PrintWarning(fmt.Sprintf("Please refactor these files to be under %d lines", report.MaxLines))
	return report.Err()
}

// normalizeExtensions accepts "rs" as well as ".rs".
func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}
