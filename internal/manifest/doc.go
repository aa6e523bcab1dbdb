// Package manifest reads and rewrites the version recorded in a project
// manifest.
//
// The default regex format targets files such as Cargo.toml or pyproject.toml
// where the version is a line of the form
//
//	version = "1.2.3"
//
// Only the first such line is rewritten and every other byte of the file is
// preserved. JSON manifests (package.json) and raw version files (.version)
// are supported as well.
package manifest
