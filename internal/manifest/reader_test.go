package manifest

import (
	"context"
	"errors"
	"testing"

	"github.com/indaco/relkit/internal/core"
	"github.com/indaco/relkit/internal/semver"
)

const cargoToml = `[package]
name = "links"
version = "0.4.2"
edition = "2021"

[dependencies]
serde = { version = "1.0", features = ["derive"] }
`

func TestFormatForFile(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"Cargo.toml", FormatRegex},
		{"pyproject.toml", FormatRegex},
		{"web/package.json", FormatJSON},
		{".version", FormatRaw},
		{"VERSION", FormatRaw},
		{"version.txt", FormatRaw},
		{"setup.cfg", FormatRegex},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := FormatForFile(tt.path); got != tt.want {
				t.Errorf("FormatForFile(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("", "package.json"); err != nil || f != FormatJSON {
		t.Errorf("ParseFormat(\"\", package.json) = %v, %v", f, err)
	}
	if f, err := ParseFormat("RAW", "Cargo.toml"); err != nil || f != FormatRaw {
		t.Errorf("ParseFormat(RAW) = %v, %v", f, err)
	}
	if _, err := ParseFormat("xml", "pom.xml"); err == nil {
		t.Error("ParseFormat(xml) expected error")
	}
}

func TestReader_ReadRegex(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    semver.SemVersion
		wantErr error
	}{
		{
			name:    "cargo manifest",
			content: cargoToml,
			want:    semver.SemVersion{Major: 0, Minor: 4, Patch: 2},
		},
		{
			name:    "no spaces around equals",
			content: "version=\"10.0.1\"\n",
			want:    semver.SemVersion{Major: 10, Minor: 0, Patch: 1},
		},
		{
			name:    "indented assignment is not top level",
			content: "[package]\n  version = \"1.0.0\"\n",
			wantErr: ErrVersionNotFound,
		},
		{
			name:    "pre-release does not match",
			content: "version = \"1.0.0-rc.1\"\n",
			wantErr: ErrVersionNotFound,
		},
		{
			name:    "no version line",
			content: "[package]\nname = \"links\"\n",
			wantErr: ErrVersionNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := core.NewMockFileSystem()
			fs.SetFile("/repo/Cargo.toml", []byte(tt.content))

			got, err := NewReader(fs).Read(context.Background(), FileConfig{Path: "/repo/Cargo.toml", Format: FormatRegex})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Read() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Read() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Read() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReader_MissingManifest(t *testing.T) {
	fs := core.NewMockFileSystem()
	_, err := NewReader(fs).Read(context.Background(), FileConfig{Path: "/repo/Cargo.toml", Format: FormatRegex})
	if !errors.Is(err, ErrManifestNotFound) {
		t.Fatalf("Read() error = %v, want ErrManifestNotFound", err)
	}
}

func TestReader_ReadRaw(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		format  Format
		content string
		want    string
		wantErr bool
	}{
		{"regex keeps suffix", "/r/Cargo.toml", FormatRegex, "version = \"2.0.0-beta.1\"\n", "2.0.0-beta.1", false},
		{"json field", "/r/package.json", FormatJSON, `{"name":"x","version":"3.1.4"}`, "3.1.4", false},
		{"json missing field", "/r/package.json", FormatJSON, `{"name":"x"}`, "", true},
		{"json non-string field", "/r/package.json", FormatJSON, `{"version":3}`, "", true},
		{"json invalid", "/r/package.json", FormatJSON, `{"version":`, "", true},
		{"raw trimmed", "/r/.version", FormatRaw, "  1.0.0\n", "1.0.0", false},
		{"raw empty", "/r/.version", FormatRaw, "\n", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := core.NewMockFileSystem()
			fs.SetFile(tt.path, []byte(tt.content))

			got, err := NewReader(fs).ReadRaw(context.Background(), FileConfig{Path: tt.path, Format: tt.format})
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ReadRaw() expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadRaw() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ReadRaw() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReader_InvalidConfig(t *testing.T) {
	r := NewReader(core.NewMockFileSystem())
	if _, err := r.ReadRaw(context.Background(), FileConfig{Format: FormatRegex}); err == nil {
		t.Error("expected error for empty path")
	}
	if _, err := r.ReadRaw(context.Background(), FileConfig{Path: "/x", Format: "yaml"}); err == nil {
		t.Error("expected error for invalid format")
	}
}
