package parser

import "fmt"

// A ParseError is returned when tool output couldn't be read.
// Unrecognised content is never an error; this only happens when the underlying stream fails
// (or the parse is cancelled), and it means no results were produced.
type ParseError struct {
	// Parser is the ID of the parser that was running.
	Parser string
	// Line is the line we were trying to read when it failed, or 0 if not known.
	Line int
	Err  error
}

// Error implements the builtin error interface.
func (err *ParseError) Error() string {
	if err.Line == 0 {
		return fmt.Sprintf("failed to read %s output: %s", err.Parser, err.Err)
	}
	return fmt.Sprintf("failed to read %s output at line %d: %s", err.Parser, err.Line, err.Err)
}

// Unwrap returns the underlying error.
func (err *ParseError) Unwrap() error {
	return err.Err
}
