// Package issues contains the normalised model that all tool output is parsed into.
//
// An Issue is immutable once built; the only way to construct one is via a Builder,
// which fills in defaults and computes the fingerprint. Issues is the ordered
// collection returned from a single parse.
package issues

import (
	"encoding/json"
	"fmt"
)

// An Issue is one diagnostic reported by a tool, e.g. a single compiler warning.
type Issue struct {
	fileName                 string
	lineStart, lineEnd       int
	columnStart, columnEnd   int
	category, issueType      string
	priority                 Priority
	message, description     string
	packageName, fingerprint string
}

// FileName returns the file this issue was reported in, or a placeholder if the tool didn't say.
func (i Issue) FileName() string { return i.fileName }

// LineStart returns the first line of the issue. 0 means unknown.
func (i Issue) LineStart() int { return i.lineStart }

// LineEnd returns the last line of the issue. 0 means unknown.
func (i Issue) LineEnd() int { return i.lineEnd }

// ColumnStart returns the first column of the issue. 0 means unknown.
func (i Issue) ColumnStart() int { return i.columnStart }

// ColumnEnd returns the last column of the issue. 0 means unknown.
func (i Issue) ColumnEnd() int { return i.columnEnd }

// Category returns the tool-defined classification, e.g. "Warning".
func (i Issue) Category() string { return i.category }

// Type returns the ID of the parser that produced this issue.
func (i Issue) Type() string { return i.issueType }

// Priority returns the severity of this issue.
func (i Issue) Priority() Priority { return i.priority }

// Message returns the issue's message. It may span multiple lines.
func (i Issue) Message() string { return i.message }

// Description returns any extra description of the issue, which is often empty.
func (i Issue) Description() string { return i.description }

// PackageName returns the package / module the issue belongs to, or "-".
func (i Issue) PackageName() string { return i.packageName }

// Fingerprint returns a hash identifying this issue across independent parses.
func (i Issue) Fingerprint() string { return i.fingerprint }

// String implements the fmt.Stringer interface.
func (i Issue) String() string {
	return fmt.Sprintf("%s:%d: [%s] %s: %s", i.fileName, i.lineStart, i.priority, i.category, i.message)
}

// jsonIssue is the serialised form of an Issue.
type jsonIssue struct {
	FileName    string   `json:"fileName"`
	LineStart   int      `json:"lineStart"`
	LineEnd     int      `json:"lineEnd"`
	ColumnStart int      `json:"columnStart"`
	ColumnEnd   int      `json:"columnEnd"`
	Category    string   `json:"category"`
	Type        string   `json:"type"`
	Priority    Priority `json:"priority"`
	Message     string   `json:"message"`
	Description string   `json:"description"`
	PackageName string   `json:"packageName"`
	Fingerprint string   `json:"fingerprint"`
}

// MarshalJSON implements the json.Marshaler interface.
func (i Issue) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonIssue{
		FileName:    i.fileName,
		LineStart:   i.lineStart,
		LineEnd:     i.lineEnd,
		ColumnStart: i.columnStart,
		ColumnEnd:   i.columnEnd,
		Category:    i.category,
		Type:        i.issueType,
		Priority:    i.priority,
		Message:     i.message,
		Description: i.description,
		PackageName: i.packageName,
		Fingerprint: i.fingerprint,
	})
}

// UnmarshalJSON implements the json.Unmarshaler interface.
// The issue goes back through a Builder so defaults are applied; a stored
// fingerprint is kept as-is so that baselines written by older versions still line up.
func (i *Issue) UnmarshalJSON(data []byte) error {
	var j jsonIssue
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	b := NewBuilder().
		SetFileName(j.FileName).
		SetLineStart(j.LineStart).
		SetLineEnd(j.LineEnd).
		SetColumnStart(j.ColumnStart).
		SetColumnEnd(j.ColumnEnd).
		SetCategory(j.Category).
		SetType(j.Type).
		SetMessage(j.Message).
		SetDescription(j.Description).
		SetPackageName(j.PackageName)
	if j.Priority.Valid() {
		b = b.SetPriority(j.Priority)
	}
	*i = b.Build()
	if j.Fingerprint != "" {
		i.fingerprint = j.Fingerprint
	}
	return nil
}
