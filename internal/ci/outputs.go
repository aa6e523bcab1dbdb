// Package ci emits step outputs for CI workflows.
//
// Each output is written twice: as the legacy "::set-output" workflow
// command on stdout, which older runners and log scrapers still read, and
// appended to the file named by GITHUB_OUTPUT when that variable is set.
package ci

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/indaco/relkit/internal/core"
)

// EnvOutputFile names the file GitHub Actions reads step outputs from.
const EnvOutputFile = "GITHUB_OUTPUT"

// Signal names emitted by the release orchestrator.
const (
	OutputAlreadyReleased  = "already_released"
	OutputVersionCommitted = "version_committed"
	OutputNewVersion       = "new_version"
)

// Outputs writes step outputs.
type Outputs struct {
	fs   core.FileSystem
	w    io.Writer
	path string
}

// NewOutputs writes workflow commands to w and appends to the output file at
// path on fs, if path is non-empty.
func NewOutputs(fs core.FileSystem, w io.Writer, path string) *Outputs {
	return &Outputs{fs: fs, w: w, path: path}
}

// FromEnv returns Outputs bound to stdout and $GITHUB_OUTPUT.
func FromEnv(fs core.FileSystem) *Outputs {
	return NewOutputs(fs, os.Stdout, os.Getenv(EnvOutputFile))
}

// Set emits a single output.
func (o *Outputs) Set(ctx context.Context, name, value string) error {
	if _, err := fmt.Fprintf(o.w, "::set-output name=%s::%s\n", name, value); err != nil {
		return fmt.Errorf("writing output %s: %w", name, err)
	}
	if o.path == "" {
		return nil
	}

	if err := o.fs.AppendFile(ctx, o.path, []byte(formatEntry(name, value)), core.PermFile); err != nil {
		return fmt.Errorf("writing output %s to %s: %w", name, EnvOutputFile, err)
	}
	return nil
}

// formatEntry renders name=value, switching to the heredoc form for values
// spanning several lines.
func formatEntry(name, value string) string {
	if !strings.ContainsAny(value, "\r\n") {
		return name + "=" + value + "\n"
	}
	delim := "relkit_" + randomSuffix()
	return fmt.Sprintf("%s<<%s\n%s\n%s\n", name, delim, value, delim)
}

func randomSuffix() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
