// Package console inspects the environment relkit runs in: whether stdout is
// a terminal and whether the process runs under a CI system.
package console

import (
	"os"

	"golang.org/x/term"
)

// ciEnvs lists environment variables set by common CI providers.
var ciEnvs = []string{
	"CI",                     // Generic CI indicator
	"CONTINUOUS_INTEGRATION", // Generic CI indicator
	"GITHUB_ACTIONS",         // GitHub Actions
	"GITLAB_CI",              // GitLab CI
	"CIRCLECI",               // CircleCI
	"TRAVIS",                 // Travis CI
	"JENKINS_HOME",           // Jenkins
	"BUILDKITE",              // Buildkite
	"BITBUCKET_BUILD_NUMBER", // Bitbucket Pipelines
	"DRONE",                  // Drone CI
	"TF_BUILD",               // Azure Pipelines
}

// lookupEnv and isTerminal are swapped in tests.
var (
	lookupEnv  = os.Getenv
	isTerminal = func() bool {
		return term.IsTerminal(int(os.Stdout.Fd())) //nolint:gosec // G115: fd is a small value, no overflow risk
	}
)

// IsTTY reports whether stdout is a terminal.
func IsTTY() bool {
	return isTerminal()
}

// IsCI reports whether any known CI environment variable is set.
func IsCI() bool {
	for _, env := range ciEnvs {
		if lookupEnv(env) != "" {
			return true
		}
	}
	return false
}

// ColorDisabled reports whether styling should be turned off: when the user
// asked for it, when NO_COLOR is set, or when stdout is not a terminal.
func ColorDisabled(flag bool) bool {
	if flag || lookupEnv("NO_COLOR") != "" {
		return true
	}
	return !IsTTY()
}
