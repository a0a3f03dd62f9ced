package issues

import "strings"

// DefaultFileName is the placeholder used when a tool doesn't report a file.
const DefaultFileName = "-"

// DefaultPackageName is used when a tool doesn't report a package.
const DefaultPackageName = "-"

// A Builder assembles an Issue from whatever fields a tool reported.
//
// Builders are values; each setter returns an updated copy, so one builder can be
// used as a template for many issues without them affecting one another.
type Builder struct {
	issue       Issue
	placeholder string
}

// NewBuilder returns a new Builder with no fields set.
func NewBuilder() Builder {
	return Builder{placeholder: DefaultFileName}
}

// SetFileNamePlaceholder sets the file name used when none is given.
func (b Builder) SetFileNamePlaceholder(placeholder string) Builder {
	b.placeholder = placeholder
	return b
}

// SetFileName sets the file the issue occurred in.
func (b Builder) SetFileName(fileName string) Builder {
	b.issue.fileName = fileName
	return b
}

// SetLine sets both the start and end line to the same value.
func (b Builder) SetLine(line int) Builder {
	b.issue.lineStart = line
	b.issue.lineEnd = line
	return b
}

// SetLineStart sets the first line of the issue.
func (b Builder) SetLineStart(line int) Builder {
	b.issue.lineStart = line
	return b
}

// SetLineEnd sets the last line of the issue.
func (b Builder) SetLineEnd(line int) Builder {
	b.issue.lineEnd = line
	return b
}

// SetColumn sets both the start and end column to the same value.
func (b Builder) SetColumn(column int) Builder {
	b.issue.columnStart = column
	b.issue.columnEnd = column
	return b
}

// SetColumnStart sets the first column of the issue.
func (b Builder) SetColumnStart(column int) Builder {
	b.issue.columnStart = column
	return b
}

// SetColumnEnd sets the last column of the issue.
func (b Builder) SetColumnEnd(column int) Builder {
	b.issue.columnEnd = column
	return b
}

// SetCategory sets the tool-defined category.
func (b Builder) SetCategory(category string) Builder {
	b.issue.category = category
	return b
}

// SetType sets the ID of the parser producing the issue.
func (b Builder) SetType(issueType string) Builder {
	b.issue.issueType = issueType
	return b
}

// SetPriority sets the priority of the issue.
func (b Builder) SetPriority(priority Priority) Builder {
	b.issue.priority = priority
	return b
}

// SetMessage sets the message.
func (b Builder) SetMessage(message string) Builder {
	b.issue.message = message
	return b
}

// SetDescription sets the description.
func (b Builder) SetDescription(description string) Builder {
	b.issue.description = description
	return b
}

// SetPackageName sets the package name.
func (b Builder) SetPackageName(packageName string) Builder {
	b.issue.packageName = packageName
	return b
}

// Build returns the finished Issue with defaults applied and its fingerprint computed.
func (b Builder) Build() Issue {
	issue := b.issue
	if strings.TrimSpace(issue.fileName) == "" {
		issue.fileName = b.placeholder
		if issue.fileName == "" {
			issue.fileName = DefaultFileName
		}
	}
	if issue.packageName == "" {
		issue.packageName = DefaultPackageName
	}
	if !issue.priority.Valid() {
		issue.priority = Normal
	}
	issue.lineStart = nonNegative(issue.lineStart)
	issue.lineEnd = nonNegative(issue.lineEnd)
	issue.columnStart = nonNegative(issue.columnStart)
	issue.columnEnd = nonNegative(issue.columnEnd)
	if issue.lineEnd < issue.lineStart {
		issue.lineEnd = issue.lineStart
	}
	if issue.columnEnd < issue.columnStart {
		issue.columnEnd = issue.columnStart
	}
	issue.fingerprint = Fingerprint(issue.fileName, issue.lineStart, issue.category, issue.message)
	return issue
}

func nonNegative(i int) int {
	if i < 0 {
		return 0
	}
	return i
}
