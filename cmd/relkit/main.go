package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/indaco/relkit/internal/cli"
	"github.com/indaco/relkit/internal/config"
	"github.com/indaco/relkit/internal/printer"
)

func main() {
	if err := runCLI(os.Args); err != nil {
		printer.ReportError(err)
		os.Exit(1)
	}
}

// runCLI builds the command tree and runs it with args, cancelling on
// SIGINT or SIGTERM.
func runCLI(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.New(config.Default()).Run(ctx, args)
}
