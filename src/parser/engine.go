// Package parser implements the engine that turns line-oriented tool output into issues.
//
// Each tool is described by a Configuration; the engine makes one pass over the input,
// opening a diagnostic on every header line and extending it with any continuation
// lines that follow. Lines that are neither are ignored.
package parser

import (
	"bufio"
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/peterebden/go-deferred-regex"

	"github.com/thought-machine/analysis/src/cli/logging"
	"github.com/thought-machine/analysis/src/issues"
)

var log = logging.Log

// ansiEscape matches the colour escapes compilers like to write when they think they're on a terminal.
var ansiEscape = deferredregex.DeferredRegex{Re: "\x1b\\[[0-9;]*[mK]"}

// Parse reads the given input and returns the issues found in it.
// It only fails if the input can't be read, in which case no issues are returned.
func Parse(r io.Reader, config *Configuration) (*issues.Issues, error) {
	return ParseContext(context.Background(), r, config)
}

// ParseContext is like Parse but stops early with an error if the context is cancelled.
func ParseContext(ctx context.Context, r io.Reader, config *Configuration) (*issues.Issues, error) {
	s := newScanner(config)
	reader := bufio.NewReader(r)
	for lineNumber := 1; ; lineNumber++ {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			s.process(line)
		}
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, &ParseError{Parser: config.id, Line: lineNumber, Err: err}
		} else if err := ctx.Err(); err != nil {
			return nil, &ParseError{Parser: config.id, Line: lineNumber, Err: err}
		}
	}
	s.finalise()
	result := s.collector.Issues()
	log.Debug("Found %d issues in %s output", result.Size(), config.id)
	return result, nil
}

// A scanner holds the state of a single parse. It's never shared between parses.
type scanner struct {
	config    *Configuration
	collector *issues.Collector
	template  issues.Builder
	pending   *pendingIssue
}

// A pendingIssue is a diagnostic whose header we've seen but which may have more lines to come.
type pendingIssue struct {
	builder issues.Builder
	message []string
}

func newScanner(config *Configuration) *scanner {
	return &scanner{
		config:    config,
		collector: issues.NewCollector(),
		template:  issues.NewBuilder().SetType(config.id).SetFileNamePlaceholder(config.defaultFileName),
	}
}

// process handles a single physical line of input.
func (s *scanner) process(line string) {
	line = s.config.clean(line)
	matches := s.config.header.FindStringSubmatch(line)
	if s.pending != nil {
		if matches == nil && s.config.isContinuation(line) {
			s.pending.message = append(s.pending.message, line)
			return
		}
		// Either a new header or something unrelated; both end the current diagnostic.
		s.finalise()
	}
	if matches != nil {
		s.open(matches)
	}
}

// open starts a new pending diagnostic from the matches of a header line.
func (s *scanner) open(matches []string) {
	config := s.config
	category := strings.TrimSpace(config.field(matches, GroupCategory))
	if category == "" {
		category = config.defaultCategory
	}
	b := s.template.
		SetFileName(strings.TrimSpace(config.field(matches, GroupFile))).
		SetCategory(category).
		SetPriority(config.PriorityOf(category)).
		SetDescription(config.field(matches, GroupDescription))
	if pkg := strings.TrimSpace(config.field(matches, GroupPackage)); pkg != "" {
		b = b.SetPackageName(pkg)
	}
	line := atoi(config.field(matches, GroupLine))
	b = b.SetLine(line)
	if lineEnd := atoi(config.field(matches, GroupLineEnd)); lineEnd > 0 {
		b = b.SetLineEnd(lineEnd)
	}
	b = b.SetColumn(atoi(config.field(matches, GroupColumn)))
	if columnEnd := atoi(config.field(matches, GroupColumnEnd)); columnEnd > 0 {
		b = b.SetColumnEnd(columnEnd)
	}
	s.pending = &pendingIssue{
		builder: b,
		message: []string{strings.TrimSpace(config.field(matches, GroupMessage))},
	}
}

// finalise builds the pending diagnostic, if there is one, and adds it to the results.
func (s *scanner) finalise() {
	if s.pending == nil {
		return
	}
	s.collector.Add(s.pending.builder.SetMessage(strings.Join(s.pending.message, "\n")).Build())
	s.pending = nil
}

// atoi converts a captured number, returning 0 for anything empty, negative or unparseable.
func atoi(s string) int {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || i < 0 {
		return 0
	}
	return i
}
