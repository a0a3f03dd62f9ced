// Package report defines the results of a run over some inputs and how they're written out.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/thought-machine/analysis/src/cli/logging"
	"github.com/thought-machine/analysis/src/issues"
)

var log = logging.Log

// An Input describes one input that was parsed.
type Input struct {
	Path   string `json:"path"`
	Parser string `json:"parser"`
	Size   int64  `json:"size"`
	Digest string `json:"digest,omitempty"`
	Issues int    `json:"issues"`
	Error  string `json:"error,omitempty"`
}

// A Report is the result of a run.
type Report struct {
	RunID    uuid.UUID      `json:"run_id"`
	Started  time.Time      `json:"started"`
	Duration time.Duration  `json:"duration"`
	Inputs   []Input        `json:"inputs"`
	Issues   *issues.Issues `json:"issues"`

	collector *issues.Collector
}

// New returns a new, empty report for a run starting now.
func New() *Report {
	return &Report{
		RunID:     uuid.New(),
		Started:   time.Now(),
		Inputs:    []Input{},
		Issues:    issues.NewCollector().Issues(),
		collector: issues.NewCollector(),
	}
}

// Add adds the results of one input to the report. is may be nil if the input failed.
func (r *Report) Add(input Input, is *issues.Issues) {
	input.Issues = is.Size()
	r.Inputs = append(r.Inputs, input)
	if r.collector == nil {
		// Reports read back from JSON don't have one yet.
		r.collector = issues.NewCollector()
		r.Issues.Each(r.collector.Add)
	}
	is.Each(r.collector.Add)
	r.Issues = r.collector.Snapshot()
}

// Finish marks the end of the run.
func (r *Report) Finish() {
	r.Duration = time.Since(r.Started)
}

// Failed returns the number of inputs that couldn't be parsed.
func (r *Report) Failed() int {
	n := 0
	for _, input := range r.Inputs {
		if input.Error != "" {
			n++
		}
	}
	return n
}

// Size returns the total size of all the inputs, in bytes.
func (r *Report) Size() int64 {
	var size int64
	for _, input := range r.Inputs {
		size += input.Size
	}
	return size
}

// WriteJSON writes the report as JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// ReadJSON reads a report previously written by WriteJSON.
func ReadJSON(r io.Reader) (*Report, error) {
	report := &Report{}
	if err := json.NewDecoder(r).Decode(report); err != nil {
		return nil, fmt.Errorf("invalid report: %w", err)
	}
	if report.Issues == nil {
		report.Issues = issues.NewCollector().Issues()
	}
	return report, nil
}

// ReadFile reads a JSON report from the given file.
func ReadFile(filename string) (*Report, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	report, err := ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	log.Debug("Read report %s with %d issues from %s", report.RunID, report.Issues.Size(), filename)
	return report, nil
}
