// Package parsers contains the built-in tool formats.
//
// Almost all of these are just data: a Definition for the line-scanning engine in
// package parser. Formats that aren't line-oriented (e.g. XML reports) implement
// parser.Parser directly.
package parsers

import (
	"github.com/thought-machine/analysis/src/issues"
	"github.com/thought-machine/analysis/src/parser"
)

// Definitions returns the definitions of all built-in line-oriented formats.
// It returns a fresh slice each time so callers are free to modify it.
func Definitions() []parser.Definition {
	return []parser.Definition{
		NagFortran(),
		GCC(),
		TypeScript(),
		Ruff(),
		Maven(),
		GolangCILint(),
		GoMetaLinter(),
	}
}

// NewRegistry builds a registry of all built-in parsers, plus any extra ones given
// (for example those defined in config files).
func NewRegistry(extra ...parser.Parser) (*parser.Registry, error) {
	all := []parser.Parser{NewJSLintParser()}
	for _, def := range Definitions() {
		p, err := parser.NewLineParserFromDefinition(def)
		if err != nil {
			return nil, err
		}
		all = append(all, p)
	}
	return parser.NewRegistry(append(all, extra...)...)
}

// NagFortran is the format of the NAG Fortran compiler.
// Messages may run onto further lines, which are indented.
func NagFortran() parser.Definition {
	return parser.Definition{
		ID:           "nag-fortran",
		Name:         "NAG Fortran Compiler",
		Header:       `^(?P<category>Info|Warning|Questionable|Extension|Obsolescent|Deleted feature used|(?:Runtime )?Error|Fatal Error|Panic):\s+(?P<file>(?:[A-Za-z]:)?[^:,]+?)(?:, line (?P<line>\d+))?:\s*(?P<message>.*)$`,
		Continuation: parser.ContinueIndented,
		Priorities: map[string]issues.Priority{
			"Info":                 issues.Low,
			"Warning":              issues.Normal,
			"Questionable":         issues.Normal,
			"Extension":            issues.Normal,
			"Obsolescent":          issues.Normal,
			"Deleted feature used": issues.Normal,
			"Error":                issues.High,
			"Runtime Error":        issues.High,
			"Fatal Error":          issues.High,
			"Panic":                issues.High,
		},
	}
}

// GCC is the format of gcc and clang diagnostics.
// The source excerpts and carets they print afterwards aren't part of the message.
func GCC() parser.Definition {
	return parser.Definition{
		ID:           "gcc",
		Name:         "GNU C Compiler",
		Header:       `^(?P<file>[^:\s][^:]*):(?P<line>\d+):(?:(?P<column>\d+):)?\s+(?P<category>warning|error|fatal error|note):\s+(?P<message>.*)$`,
		Continuation: parser.ContinueNone,
		Priorities: map[string]issues.Priority{
			"note":        issues.Low,
			"warning":     issues.Normal,
			"error":       issues.High,
			"fatal error": issues.High,
		},
		StripColour: true,
	}
}

// TypeScript is the format of tsc. Chained messages are indented beneath the first line.
func TypeScript() parser.Definition {
	return parser.Definition{
		ID:           "tsc",
		Name:         "TypeScript Compiler",
		Header:       `^(?P<file>.+?)\((?P<line>\d+),(?P<column>\d+)\):\s+(?P<category>error|warning|message)\s+(?P<description>TS\d+):\s+(?P<message>.*)$`,
		Continuation: parser.ContinueIndented,
		Priorities: map[string]issues.Priority{
			"message": issues.Low,
			"warning": issues.Normal,
			"error":   issues.High,
		},
		StripColour: true,
	}
}

// Ruff is the concise format of ruff and flake8, where the category is the rule code.
func Ruff() parser.Definition {
	return parser.Definition{
		ID:           "ruff",
		Name:         "Ruff / Flake8",
		Header:       `^(?P<file>[^:\s][^:]*):(?P<line>\d+):(?P<column>\d+):\s+(?P<category>[A-Z]+\d+)\s+(?P<message>.*)$`,
		Continuation: parser.ContinueNone,
		Priorities: map[string]issues.Priority{
			"E999": issues.High,
			"F821": issues.High,
		},
	}
}

// Maven is the format of compiler errors and warnings in Maven builds.
func Maven() parser.Definition {
	return parser.Definition{
		ID:           "maven",
		Name:         "Maven",
		Header:       `^\[(?P<category>ERROR|WARNING|INFO)\]\s+(?P<file>[^\s\[][^\[]*?):\[(?P<line>\d+),(?P<column>\d+)\]\s+(?P<message>.*)$`,
		Continuation: parser.ContinueNone,
		Priorities: map[string]issues.Priority{
			"INFO":    issues.Low,
			"WARNING": issues.Normal,
			"ERROR":   issues.High,
		},
	}
}

// GolangCILint is the line format of golangci-lint, where the linter name is the category.
func GolangCILint() parser.Definition {
	return parser.Definition{
		ID:           "golangci-lint",
		Name:         "golangci-lint",
		Header:       `^(?P<file>[^:\s][^:]*):(?P<line>\d+)(?::(?P<column>\d+))?:\s+(?P<message>.*?)\s+\((?P<category>[\w-]+)\)$`,
		Continuation: parser.ContinueNone,
		Priorities: map[string]issues.Priority{
			"typecheck": issues.High,
		},
		StripColour: true,
	}
}

// GoMetaLinter is the format of gometalinter and friends, with the linter name between the
// position and the message.
func GoMetaLinter() parser.Definition {
	return parser.Definition{
		ID:           "gometalinter",
		Name:         "gometalinter",
		Header:       `^(?P<file>[^:\s][^:]*):(?P<line>[0-9]+):(?P<column>[0-9]+) +(?P<category>[a-z]+) +(?P<message>.*)$`,
		Continuation: parser.ContinueNone,
	}
}
