// Package version reports the relkit build version.
package version

import "runtime/debug"

// version is set at build time with
// -ldflags "-X github.com/indaco/relkit/internal/version.version=1.2.3".
var version = ""

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

// GetVersion returns the linker-injected version, falling back to the module
// version recorded in the build info, then "devel".
func GetVersion() string {
	if version != "" {
		return version
	}
	if info, ok := readBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "devel"
}
