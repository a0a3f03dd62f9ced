package parsers

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/thought-machine/analysis/src/cli/logging"
	"github.com/thought-machine/analysis/src/issues"
	"github.com/thought-machine/analysis/src/parser"
)

var log = logging.Log

// JSLintID is the ID of the JSLint XML report parser.
const JSLintID = "jslint"

// jslintPriorities maps the severity attribute of an issue onto a priority.
var jslintPriorities = map[string]issues.Priority{
	"info":    issues.Low,
	"warning": issues.Normal,
	"error":   issues.High,
}

// JSLintParser parses the XML reports written by JSLint, JSHint and CSSLint
// (the latter's "lint-xml" and "jslint-xml" formats). They look like
//
//	<jslint>
//	  <file name="style.css">
//	    <issue line="3" char="5" severity="warning" reason="Don't use IDs in selectors." evidence="#x {"/>
//	  </file>
//	</jslint>
type JSLintParser struct{}

// NewJSLintParser returns a new JSLintParser.
func NewJSLintParser() *JSLintParser {
	return &JSLintParser{}
}

// ID implements the parser.Parser interface.
func (p *JSLintParser) ID() string {
	return JSLintID
}

// Name implements the parser.Parser interface.
func (p *JSLintParser) Name() string {
	return "JSLint / CSSLint XML"
}

type jslintIssue struct {
	Line     int    `xml:"line,attr"`
	Char     int    `xml:"char,attr"`
	Severity string `xml:"severity,attr"`
	Reason   string `xml:"reason,attr"`
	Evidence string `xml:"evidence,attr"`
}

// Parse implements the parser.Parser interface.
// Unlike the line formats a malformed document is a failure, since we can't tell
// where the damage ends.
func (p *JSLintParser) Parse(r io.Reader) (*issues.Issues, error) {
	collector := issues.NewCollector()
	template := issues.NewBuilder().SetType(JSLintID)
	decoder := xml.NewDecoder(r)
	fileName := ""
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, &parser.ParseError{Parser: JSLintID, Err: err}
		}
		switch tok := token.(type) { //nolint:gocritic
		case xml.StartElement:
			switch tok.Name.Local {
			case "file":
				fileName = attr(tok, "name")
			case "issue":
				var ji jslintIssue
				if err := decoder.DecodeElement(&ji, &tok); err != nil {
					return nil, &parser.ParseError{Parser: JSLintID, Err: err}
				}
				category := strings.ToLower(strings.TrimSpace(ji.Severity))
				if category == "" {
					category = "warning"
				}
				priority, present := jslintPriorities[category]
				if !present {
					priority = issues.Normal
				}
				collector.Add(template.
					SetFileName(fileName).
					SetLine(ji.Line).
					SetColumn(ji.Char).
					SetCategory(category).
					SetPriority(priority).
					SetMessage(ji.Reason).
					SetDescription(ji.Evidence).
					Build())
			}
		case xml.EndElement:
			if tok.Name.Local == "file" {
				fileName = ""
			}
		}
	}
	result := collector.Issues()
	log.Debug("Found %d issues in %s output", result.Size(), JSLintID)
	return result, nil
}

// Score implements the parser.Scorer interface.
func (p *JSLintParser) Score(sample []byte) int {
	if !bytes.Contains(sample, []byte("<jslint")) && !bytes.Contains(sample, []byte("<lint")) {
		return 0
	}
	return bytes.Count(sample, []byte("<issue"))
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}
