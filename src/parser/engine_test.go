package parser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thought-machine/analysis/src/issues"
)

var testDefinition = Definition{
	ID:           "test",
	Name:         "Test compiler",
	Header:       `^(?P<category>Info|Warning|Error): (?P<file>[^,:]+)(?:, line (?P<line>\d+))?: (?P<message>.*)$`,
	Continuation: ContinueIndented,
	Priorities: map[string]issues.Priority{
		"Info":  issues.Low,
		"Error": issues.High,
	},
	DefaultFileName: "<none>",
}

func mustParse(t *testing.T, def Definition, in string) *issues.Issues {
	t.Helper()
	config, err := NewConfiguration(def)
	require.NoError(t, err)
	is, err := Parse(strings.NewReader(in), config)
	require.NoError(t, err)
	return is
}

func TestSingleLine(t *testing.T) {
	is := mustParse(t, testDefinition, "Warning: a.f90, line 5: unused variable X\n")
	require.Equal(t, 1, is.Size())
	issue := is.Get(0)
	assert.Equal(t, "a.f90", issue.FileName())
	assert.Equal(t, 5, issue.LineStart())
	assert.Equal(t, 5, issue.LineEnd())
	assert.Equal(t, "Warning", issue.Category())
	assert.Equal(t, "test", issue.Type())
	assert.Equal(t, issues.Normal, issue.Priority())
	assert.Equal(t, "unused variable X", issue.Message())
	assert.Equal(t, "-", issue.PackageName())
	assert.Equal(t, "", issue.Description())
}

func TestNoLineNumber(t *testing.T) {
	is := mustParse(t, testDefinition, "Error: b.f90: it broke")
	require.Equal(t, 1, is.Size())
	assert.Equal(t, 0, is.Get(0).LineStart())
	assert.Equal(t, 0, is.Get(0).LineEnd())
	assert.Equal(t, issues.High, is.Get(0).Priority())
}

func TestMultiLine(t *testing.T) {
	const in = "Error: c.f90, line 3: first\n" +
		"    second\n" +
		"\tthird\n" +
		"Info: d.f90, line 1: next\n"
	is := mustParse(t, testDefinition, in)
	require.Equal(t, 2, is.Size())
	assert.Equal(t, "first\n    second\n\tthird", is.Get(0).Message())
	assert.Equal(t, 2, strings.Count(is.Get(0).Message(), "\n"))
	assert.Equal(t, "next", is.Get(1).Message())
	assert.Equal(t, issues.Low, is.Get(1).Priority())
}

func TestNoiseEndsDiagnostic(t *testing.T) {
	const in = "compiling...\n" +
		"Warning: a.f90, line 1: one\n" +
		"not indented so not part of it\n" +
		"    and an indented line after noise is also dropped\n" +
		"Warning: a.f90, line 2: two\n" +
		"\n" +
		"    indented after a blank line\n" +
		"done\n"
	is := mustParse(t, testDefinition, in)
	require.Equal(t, 2, is.Size())
	assert.Equal(t, "one", is.Get(0).Message())
	assert.Equal(t, "two", is.Get(1).Message())
}

func TestEmptyInput(t *testing.T) {
	is := mustParse(t, testDefinition, "")
	assert.NotNil(t, is)
	assert.Equal(t, 0, is.Size())
}

func TestCountMatchesHeaders(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 50; i++ {
		fmt.Fprintf(&b, "Warning: f.f90, line %d: warning %d\n", i, i)
		if i%3 == 0 {
			b.WriteString("   continued\n   and again\n")
		}
		if i%7 == 0 {
			b.WriteString("random noise\n")
		}
	}
	is := mustParse(t, testDefinition, b.String())
	assert.Equal(t, 50, is.Size())
	for i := 0; i < 50; i++ {
		assert.Equal(t, i+1, is.Get(i).LineStart())
	}
}

func TestDuplicatesAreKept(t *testing.T) {
	is := mustParse(t, testDefinition, "Warning: a.f90, line 1: same\nWarning: a.f90, line 1: same\n")
	require.Equal(t, 2, is.Size())
	assert.Equal(t, is.Get(0), is.Get(1))
}

func TestUnmappedCategoryIsNormal(t *testing.T) {
	def := testDefinition
	def.Header = `^(?P<category>\w+): (?P<message>.*)$`
	is := mustParse(t, def, "Whatever: something\n")
	require.Equal(t, 1, is.Size())
	assert.Equal(t, issues.Normal, is.Get(0).Priority())
	assert.Equal(t, "<none>", is.Get(0).FileName())
}

func TestCaseInsensitivePriorities(t *testing.T) {
	def := testDefinition
	def.Header = `^(?P<category>\w+): (?P<message>.*)$`
	is := mustParse(t, def, "ERROR: something\n")
	assert.Equal(t, issues.High, is.Get(0).Priority())
	assert.Equal(t, "ERROR", is.Get(0).Category())
}

func TestColumnsAndRanges(t *testing.T) {
	def := Definition{
		ID:              "ranges",
		Header:          `^(?P<file>[^:]+):(?P<line>\d+)-(?P<lineEnd>\d+):(?P<column>\d+)-(?P<columnEnd>\d+): (?P<message>.*) \[(?P<package>[^\]]+)\]$`,
		DefaultCategory: "lint",
	}
	is := mustParse(t, def, "src/x.go:3-7:2-9: too long [pkg/x]\n")
	require.Equal(t, 1, is.Size())
	issue := is.Get(0)
	assert.Equal(t, 3, issue.LineStart())
	assert.Equal(t, 7, issue.LineEnd())
	assert.Equal(t, 2, issue.ColumnStart())
	assert.Equal(t, 9, issue.ColumnEnd())
	assert.Equal(t, "lint", issue.Category())
	assert.Equal(t, "pkg/x", issue.PackageName())
}

func TestContinuationModes(t *testing.T) {
	const in = "Warning: a.f90, line 1: head\n" +
		"tail one\n" +
		"  > tail two\n"
	def := testDefinition

	def.Continuation = ContinueNonBlank
	assert.Equal(t, "head\ntail one\n  > tail two", mustParse(t, def, in).Get(0).Message())

	def.Continuation = ContinueIndented
	assert.Equal(t, "head", mustParse(t, def, in).Get(0).Message())

	def.Continuation = ContinueNone
	assert.Equal(t, "head", mustParse(t, def, in).Get(0).Message())

	def.Continuation = ContinuePattern
	def.ContinuationPattern = `^\s+>`
	assert.Equal(t, "head", mustParse(t, def, in).Get(0).Message(), "the unmatched line closes the diagnostic")

	def.ContinuationPattern = `^(tail|\s+>)`
	assert.Equal(t, "head\ntail one\n  > tail two", mustParse(t, def, in).Get(0).Message())
}

func TestDefaultContinuationIsNonBlank(t *testing.T) {
	def := testDefinition
	def.Continuation = ""
	is := mustParse(t, def, "Warning: a.f90, line 1: head\ntail\n\nafter blank\n")
	require.Equal(t, 1, is.Size())
	assert.Equal(t, "head\ntail", is.Get(0).Message())
}

func TestWindowsLineEndings(t *testing.T) {
	is := mustParse(t, testDefinition, "Error: c.f90, line 3: first\r\n    second\r\n")
	require.Equal(t, 1, is.Size())
	assert.Equal(t, "first\n    second", is.Get(0).Message())
}

func TestStripColour(t *testing.T) {
	def := testDefinition
	def.StripColour = true
	is := mustParse(t, def, "\x1b[1;35mWarning\x1b[0m: a.f90, line 1: \x1b[1mcoloured\x1b[0m\n")
	require.Equal(t, 1, is.Size())
	assert.Equal(t, "coloured", is.Get(0).Message())
}

func TestLongLines(t *testing.T) {
	long := strings.Repeat("x", 200*1024)
	is := mustParse(t, testDefinition, "Warning: a.f90, line 1: "+long+"\n")
	require.Equal(t, 1, is.Size())
	assert.Equal(t, long, is.Get(0).Message())
}

func TestIOFailure(t *testing.T) {
	config := MustNewConfiguration(testDefinition)
	r := io.MultiReader(
		strings.NewReader("Warning: a.f90, line 1: one\nWarning: a.f90, line 2: two\n"),
		iotest.ErrReader(errors.New("disk on fire")),
	)
	is, err := Parse(r, config)
	assert.Nil(t, is)
	require.Error(t, err)
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "test", perr.Parser)
	assert.Equal(t, 3, perr.Line)
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestCancelled(t *testing.T) {
	config := MustNewConfiguration(testDefinition)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	is, err := ParseContext(ctx, strings.NewReader("Warning: a.f90, line 1: one\nmore\n"), config)
	assert.Nil(t, is)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestDeterministic(t *testing.T) {
	const in = "Error: c.f90, line 3: first\n    second\nInfo: d.f90, line 1: next\n"
	a := mustParse(t, testDefinition, in)
	b := mustParse(t, testDefinition, in)
	assert.Equal(t, a.All(), b.All())
}

func TestConcurrentParsesAreIsolated(t *testing.T) {
	config := MustNewConfiguration(testDefinition)
	const n = 20
	var wg sync.WaitGroup
	results := make([]*issues.Issues, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var b strings.Builder
			for j := 0; j <= i; j++ {
				fmt.Fprintf(&b, "Warning: file%d.f90, line %d: message\n    from %d\n", i, j+1, i)
			}
			results[i], errs[i] = Parse(strings.NewReader(b.String()), config)
		}(i)
	}
	wg.Wait()
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, i+1, results[i].Size())
		results[i].Each(func(issue issues.Issue) {
			assert.Equal(t, fmt.Sprintf("file%d.f90", i), issue.FileName())
			assert.Equal(t, fmt.Sprintf("message\n    from %d", i), issue.Message())
		})
	}
}
