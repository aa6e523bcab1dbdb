// Package changelog maintains a Keep a Changelog style document.
//
// Pending changes live as fragment files in a staging directory. At release
// time the fragments are concatenated in filename order, spliced into the
// changelog as a new "## [version] - date" section and deleted. The section
// for a released version can later be extracted to serve as release notes.
package changelog
