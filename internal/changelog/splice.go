package changelog

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout formats section dates as YYYY-MM-DD.
const DateLayout = "2006-01-02"

// Placement records where Splice put a new section.
type Placement int

const (
	// PlacedCreated means the document did not exist and was synthesized.
	PlacedCreated Placement = iota
	// PlacedAfterMarker means the section follows the insertion marker.
	PlacedAfterMarker
	// PlacedBeforeSection means the section precedes the newest existing one.
	PlacedBeforeSection
	// PlacedAppended means neither anchor was found and the section was
	// added at the end of the document.
	PlacedAppended
)

// String returns a human-readable description of the placement.
func (p Placement) String() string {
	switch p {
	case PlacedCreated:
		return "new changelog"
	case PlacedAfterMarker:
		return "after insertion marker"
	case PlacedBeforeSection:
		return "before latest release"
	case PlacedAppended:
		return "end of changelog"
	default:
		return "unknown"
	}
}

// header opens a changelog synthesized from scratch.
const header = `# Changelog

All notable changes to this project will be documented in this file.

The format is based on [Keep a Changelog](https://keepachangelog.com/en/1.0.0/),
and this project adheres to [Semantic Versioning](https://semver.org/spec/v2.0.0.html).

`

// BuildSection renders a release section. The leading newline separates it
// from whatever precedes the insertion point.
func BuildSection(version, text string, date time.Time) string {
	return fmt.Sprintf("\n## [%s] - %s\n\n%s\n", version, date.Format(DateLayout), text)
}

// NewDocument returns a fresh changelog holding the marker and one section.
func NewDocument(marker, section string) string {
	return header + marker + "\n" + section + "\n"
}

// Splice inserts section into content:
//   - right after the first occurrence of marker, keeping the marker, so the
//     newest release always sits next to it;
//   - otherwise on its own line before the first line starting with "## [";
//   - otherwise at the end of the document.
func Splice(content, section, marker string) (string, Placement) {
	if marker != "" {
		if i := strings.Index(content, marker); i >= 0 {
			end := i + len(marker)
			return content[:end] + section + content[end:], PlacedAfterMarker
		}
	}

	if i := firstHeadingOffset(content); i >= 0 {
		return content[:i] + section + "\n" + content[i:], PlacedBeforeSection
	}

	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + section, PlacedAppended
}

// firstHeadingOffset returns the byte offset of the first line beginning with
// the section heading prefix, or -1.
func firstHeadingOffset(content string) int {
	if strings.HasPrefix(content, headingPrefix) {
		return 0
	}
	if i := strings.Index(content, "\n"+headingPrefix); i >= 0 {
		return i + 1
	}
	return -1
}
