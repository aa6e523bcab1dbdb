// Package testutils holds helpers shared by command and package tests.
package testutils

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/indaco/relkit/internal/config"
	"github.com/urfave/cli/v3"
)

// CaptureStdout runs fn and returns everything it wrote to os.Stdout.
func CaptureStdout(fn func()) (string, error) {
	return capture(&os.Stdout, fn)
}

// CaptureStderr runs fn and returns everything it wrote to os.Stderr.
func CaptureStderr(fn func()) (string, error) {
	return capture(&os.Stderr, fn)
}

func capture(target **os.File, fn func()) (string, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return "", err
	}
	orig := *target
	*target = w

	done := make(chan struct{})
	var buf bytes.Buffer
	go func() {
		_, _ = io.Copy(&buf, r)
		close(done)
	}()

	defer func() {
		*target = orig
	}()
	fn()

	_ = w.Close()
	<-done
	_ = r.Close()
	return buf.String(), nil
}

// WriteTempFile writes content to dir/name, creating parent directories, and
// returns the full path.
func WriteTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// WriteTempManifest writes a minimal Cargo.toml holding version into dir.
func WriteTempManifest(t *testing.T, dir, version string) string {
	t.Helper()
	return WriteTempFile(t, dir, config.DefaultManifestPath,
		"[package]\nname = \"widget\"\nversion = \""+version+"\"\nedition = \"2021\"\n")
}

// ReadFile returns the content of path or fails the test.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// ConfigFor returns the default configuration rooted at dir.
func ConfigFor(dir string) *config.Config {
	cfg := config.Default()
	cfg.Dir = dir
	return cfg
}

// BuildCLIForTests returns a root command hosting cmds.
func BuildCLIForTests(cmds []*cli.Command) *cli.Command {
	return &cli.Command{
		Name:     "relkit",
		Commands: cmds,
	}
}

// RunCLITest runs args against app, failing the test on error, and returns
// captured stdout.
func RunCLITest(t *testing.T, app *cli.Command, args []string) string {
	t.Helper()
	out, err := RunCLITestAllowError(t, app, args)
	if err != nil {
		t.Fatalf("%v failed: %v\noutput:\n%s", args, err, out)
	}
	return out
}

// RunCLITestAllowError runs args against app and returns captured stdout
// together with the command error.
func RunCLITestAllowError(t *testing.T, app *cli.Command, args []string) (string, error) {
	t.Helper()
	var runErr error
	out, err := CaptureStdout(func() {
		runErr = app.Run(context.Background(), args)
	})
	if err != nil {
		t.Fatalf("failed to capture stdout: %v", err)
	}
	return out, runErr
}
