// Package semver models the MAJOR.MINOR.PATCH version recorded in a project
// manifest and the increment rules applied when cutting a release.
package semver

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	xsemver "golang.org/x/mod/semver"
)

// SemVersion represents a semantic version (major.minor.patch).
// Pre-release and build metadata are not modeled.
type SemVersion struct {
	Major int
	Minor int
	Patch int
}

// BumpKind selects which component of a version is incremented.
type BumpKind string

const (
	BumpMajor BumpKind = "major"
	BumpMinor BumpKind = "minor"
	BumpPatch BumpKind = "patch"
)

var (
	// versionRegex matches "1.2.3" with an optional "v" prefix.
	versionRegex = regexp.MustCompile(`^v?(\d+)\.(\d+)\.(\d+)$`)

	// ErrInvalidVersion is returned when a version string does not conform
	// to the MAJOR.MINOR.PATCH format.
	ErrInvalidVersion = errors.New("invalid version format")

	// ErrInvalidBumpKind is returned for labels other than major, minor, patch.
	ErrInvalidBumpKind = errors.New("invalid bump kind")
)

// maxVersionLength is the maximum allowed length for a version string.
const maxVersionLength = 128

// String returns the "major.minor.patch" representation.
func (v SemVersion) String() string {
	var sb strings.Builder
	sb.Grow(16)
	sb.WriteString(strconv.Itoa(v.Major))
	sb.WriteByte('.')
	sb.WriteString(strconv.Itoa(v.Minor))
	sb.WriteByte('.')
	sb.WriteString(strconv.Itoa(v.Patch))
	return sb.String()
}

// ParseVersion parses "1.2.3" or "v1.2.3".
func ParseVersion(s string) (SemVersion, error) {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) > maxVersionLength {
		return SemVersion{}, fmt.Errorf("%w: version string exceeds maximum length of %d", ErrInvalidVersion, maxVersionLength)
	}

	matches := versionRegex.FindStringSubmatch(trimmed)
	if matches == nil {
		return SemVersion{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}

	parts := [3]int{}
	for i, name := range []string{"major", "minor", "patch"} {
		n, err := strconv.Atoi(matches[i+1])
		if err != nil {
			return SemVersion{}, fmt.Errorf("%w: invalid %s version: %s", ErrInvalidVersion, name, err.Error())
		}
		parts[i] = n
	}

	return SemVersion{Major: parts[0], Minor: parts[1], Patch: parts[2]}, nil
}

// ParseBumpKind validates a bump label.
func ParseBumpKind(label string) (BumpKind, error) {
	switch k := BumpKind(strings.ToLower(strings.TrimSpace(label))); k {
	case BumpMajor, BumpMinor, BumpPatch:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q (expected major, minor or patch)", ErrInvalidBumpKind, label)
	}
}

// BumpKinds returns the accepted bump labels in display order.
func BumpKinds() []string {
	return []string{string(BumpMajor), string(BumpMinor), string(BumpPatch)}
}

// Bump returns the version that follows v for the given kind:
//   - major: 1.2.3 -> 2.0.0
//   - minor: 1.2.3 -> 1.3.0
//   - patch: 1.2.3 -> 1.2.4
//
// Any kind other than major or minor is treated as patch.
func Bump(v SemVersion, kind BumpKind) SemVersion {
	switch kind {
	case BumpMajor:
		return SemVersion{Major: v.Major + 1}
	case BumpMinor:
		return SemVersion{Major: v.Major, Minor: v.Minor + 1}
	default:
		return SemVersion{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
	}
}

// IsValid reports whether s is a valid semantic version, with or without a
// leading "v". Unlike ParseVersion it accepts pre-release and build suffixes,
// which forge releases may legitimately carry.
func IsValid(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if !strings.HasPrefix(s, "v") {
		s = "v" + s
	}
	// x/mod/semver accepts shorthand like "v1" and "v1.2"; releases need all three.
	core := s
	if i := strings.IndexAny(core, "-+"); i >= 0 {
		core = core[:i]
	}
	return xsemver.IsValid(s) && strings.Count(core, ".") == 2
}

// Compare returns -1, 0 or +1 depending on whether v sorts before, equal to,
// or after other.
func (v SemVersion) Compare(other SemVersion) int {
	if c := compareInt(v.Major, other.Major); c != 0 {
		return c
	}
	if c := compareInt(v.Minor, other.Minor); c != 0 {
		return c
	}
	return compareInt(v.Patch, other.Patch)
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
