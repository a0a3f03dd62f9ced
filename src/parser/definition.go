package parser

import "github.com/thought-machine/analysis/src/issues"

// A ContinuationMode decides which lines following a header belong to the same diagnostic.
type ContinuationMode string

const (
	// ContinueNonBlank treats any non-blank line that isn't a header as a continuation.
	// This is the default when no mode is given.
	ContinueNonBlank ContinuationMode = "nonblank"
	// ContinueIndented treats non-blank lines starting with a space or tab as continuations.
	ContinueIndented ContinuationMode = "indented"
	// ContinuePattern treats lines matching Definition.ContinuationPattern as continuations.
	ContinuePattern ContinuationMode = "pattern"
	// ContinueNone means every diagnostic is exactly one line long.
	ContinueNone ContinuationMode = "none"
)

// Names of the capture groups understood in a header pattern.
const (
	GroupFile        = "file"
	GroupLine        = "line"
	GroupLineEnd     = "lineEnd"
	GroupColumn      = "column"
	GroupColumnEnd   = "columnEnd"
	GroupCategory    = "category"
	GroupMessage     = "message"
	GroupDescription = "description"
	GroupPackage     = "package"
)

var knownGroups = map[string]bool{
	GroupFile:        true,
	GroupLine:        true,
	GroupLineEnd:     true,
	GroupColumn:      true,
	GroupColumnEnd:   true,
	GroupCategory:    true,
	GroupMessage:     true,
	GroupDescription: true,
	GroupPackage:     true,
}

// A Definition is the raw description of a line-oriented tool format.
// It's plain data so it can come from code or from a config file; NewConfiguration
// validates it and turns it into something the engine can use.
type Definition struct {
	// ID identifies the tool. It becomes the type of every issue parsed with this definition.
	ID string
	// Name is a human-readable name for the tool.
	Name string
	// Header is a regular expression matching the first line of a diagnostic.
	// Fields are extracted from named groups; see the Group constants.
	Header string
	// Continuation decides which subsequent lines extend the message.
	Continuation ContinuationMode
	// ContinuationPattern is the regular expression used with ContinuePattern.
	ContinuationPattern string
	// Priorities maps categories to priorities. Lookups are case-insensitive and
	// anything not in here is Normal.
	Priorities map[string]issues.Priority
	// DefaultCategory is used when the header has no category group or it didn't match.
	DefaultCategory string
	// DefaultFileName is used when the header doesn't capture a file name.
	DefaultFileName string
	// StripColour removes ANSI colour escapes from lines before matching.
	StripColour bool
}
