package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

var validManifestFormats = []string{"", "regex", "json", "raw"}

// Validate checks values that would make a command misbehave rather than fail.
// All problems are reported together.
func (c *Config) Validate() error {
	var problems []string

	formatOK := false
	for _, f := range validManifestFormats {
		if c.Manifest.Format == f {
			formatOK = true
			break
		}
	}
	if !formatOK {
		problems = append(problems, fmt.Sprintf("manifest.format %q must be one of regex, json, raw", c.Manifest.Format))
	}

	if !strings.HasPrefix(c.Changelog.FragmentSuffix, ".") {
		problems = append(problems, fmt.Sprintf("changelog.fragment-suffix %q must start with a dot", c.Changelog.FragmentSuffix))
	}
	if strings.ContainsRune(c.Changelog.Reserved, filepath.Separator) {
		problems = append(problems, fmt.Sprintf("changelog.reserved %q must be a file name, not a path", c.Changelog.Reserved))
	}
	if strings.ContainsAny(c.Changelog.Marker, "\r\n") {
		problems = append(problems, "changelog.marker must fit on a single line")
	}

	if strings.ContainsAny(c.Release.TagPrefix, " \t~^:?*[\\") {
		problems = append(problems, fmt.Sprintf("release.tag-prefix %q contains characters git does not allow in tag names", c.Release.TagPrefix))
	}

	if c.LineCheck.MaxLines < 0 {
		problems = append(problems, fmt.Sprintf("linecheck.max-lines must be positive, got %d", c.LineCheck.MaxLines))
	}
	for _, ext := range c.LineCheck.Extensions {
		if !strings.HasPrefix(ext, ".") {
			problems = append(problems, fmt.Sprintf("linecheck.extensions entry %q must start with a dot", ext))
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w:\n  - %s", ErrInvalidConfig, strings.Join(problems, "\n  - "))
}
