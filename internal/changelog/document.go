package changelog

import (
	"strings"
)

// headingPrefix starts every release section heading.
const headingPrefix = "## ["

// Section is one release section of a changelog document.
type Section struct {
	// Heading is the full heading line, e.g. "## [1.2.0] - 2024-05-01".
	Heading string
	Version string
	Date    string
	// Body is the text between the heading line and the next heading,
	// trimmed of surrounding whitespace.
	Body string
}

// Document is a changelog split into the text before the first release
// section and the sections in document order.
type Document struct {
	Preamble string
	Sections []Section
}

// Parse splits content into sections. A section heading is any line that
// begins with "## [". Nothing else about the Markdown is interpreted.
func Parse(content string) Document {
	var doc Document
	lines := strings.Split(content, "\n")

	var (
		current *Section
		body    []string
		pre     []string
	)
	flush := func() {
		if current != nil {
			current.Body = strings.TrimSpace(strings.Join(body, "\n"))
			doc.Sections = append(doc.Sections, *current)
		}
	}

	for _, line := range lines {
		if strings.HasPrefix(line, headingPrefix) {
			flush()
			current = parseHeading(strings.TrimRight(line, "\r"))
			body = body[:0]
			continue
		}
		if current == nil {
			pre = append(pre, line)
			continue
		}
		body = append(body, line)
	}
	flush()

	doc.Preamble = strings.Join(pre, "\n")
	return doc
}

func parseHeading(line string) *Section {
	s := &Section{Heading: line}
	rest := strings.TrimPrefix(line, headingPrefix)
	version, after, ok := strings.Cut(rest, "]")
	if !ok {
		return s
	}
	s.Version = version
	after = strings.TrimSpace(after)
	if date, found := strings.CutPrefix(after, "- "); found {
		s.Date = strings.TrimSpace(date)
	}
	return s
}

// Section returns the first section for version.
func (d Document) Section(version string) (Section, bool) {
	for _, s := range d.Sections {
		if s.Version == version {
			return s, true
		}
	}
	return Section{}, false
}

// FallbackNotes is the release body used when a version has no section.
func FallbackNotes(tag string) string {
	return "Release " + tag
}
