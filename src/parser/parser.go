package parser

import (
	"bufio"
	"bytes"
	"io"

	"github.com/thought-machine/analysis/src/issues"
)

// A Parser turns the output of one tool into issues.
// Implementations must be safe for concurrent use.
type Parser interface {
	// ID returns the identifier of the tool, which is also the type of its issues.
	ID() string
	// Name returns a human-readable name for the tool.
	Name() string
	// Parse reads the tool's output and returns the issues in it.
	Parse(r io.Reader) (*issues.Issues, error)
}

// A Scorer is a Parser that can estimate how well it understands a sample of input.
// It's used to guess the format of input when the user doesn't say.
type Scorer interface {
	Parser
	// Score returns how many diagnostics the parser recognises in the sample.
	Score(sample []byte) int
}

// A LineParser is a Parser that drives the line-scanning engine with a single configuration.
type LineParser struct {
	config *Configuration
}

// NewLineParser returns a new LineParser for the given configuration.
func NewLineParser(config *Configuration) *LineParser {
	return &LineParser{config: config}
}

// NewLineParserFromDefinition validates a definition and returns a LineParser for it.
func NewLineParserFromDefinition(def Definition) (*LineParser, error) {
	config, err := NewConfiguration(def)
	if err != nil {
		return nil, err
	}
	return NewLineParser(config), nil
}

// ID implements the Parser interface.
func (p *LineParser) ID() string {
	return p.config.ID()
}

// Name implements the Parser interface.
func (p *LineParser) Name() string {
	return p.config.Name()
}

// Configuration returns the configuration this parser uses.
func (p *LineParser) Configuration() *Configuration {
	return p.config
}

// Parse implements the Parser interface.
func (p *LineParser) Parse(r io.Reader) (*issues.Issues, error) {
	return Parse(r, p.config)
}

// Score implements the Scorer interface by counting header lines in the sample.
func (p *LineParser) Score(sample []byte) int {
	n := 0
	s := bufio.NewScanner(bytes.NewReader(sample))
	s.Buffer(nil, len(sample)+1)
	for s.Scan() {
		if p.config.IsHeader(s.Text()) {
			n++
		}
	}
	return n
}
