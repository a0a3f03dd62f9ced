// Package analyse runs parsers over a set of inputs and gathers the results into a report.
package analyse

import (
	"bufio"
	"context"
	"errors"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/thought-machine/analysis/src/cli/logging"
	"github.com/thought-machine/analysis/src/issues"
	"github.com/thought-machine/analysis/src/metrics"
	"github.com/thought-machine/analysis/src/parser"
	"github.com/thought-machine/analysis/src/report"
)

var log = logging.Log

// AutoDetect is the parser name that means the format of each input is guessed.
const AutoDetect = "auto"

// minSampleSize is the smallest sample we'll use for detecting formats.
const minSampleSize = 4096

// A Runner parses inputs with a given parser.
// One Runner can be used for any number of runs, including concurrently.
type Runner struct {
	registry    *parser.Registry
	parser      parser.Parser
	parallelism int
	sampleSize  int
	metrics     *metrics.Metrics
}

// NewRunner creates a new Runner using the parser with the given ID from the registry,
// or guessing the format of each input if the ID is AutoDetect.
// m may be nil, in which case no metrics are recorded.
func NewRunner(registry *parser.Registry, parserID string, parallelism, sampleSize int, m *metrics.Metrics) (*Runner, error) {
	r := &Runner{
		registry:    registry,
		parallelism: parallelism,
		sampleSize:  sampleSize,
		metrics:     m,
	}
	if r.parallelism <= 0 {
		r.parallelism = 1
	}
	if r.sampleSize < minSampleSize {
		r.sampleSize = minSampleSize
	}
	if parserID != AutoDetect {
		p, err := registry.Get(parserID)
		if err != nil {
			return nil, err
		}
		r.parser = p
	}
	return r, nil
}

type result struct {
	input  report.Input
	issues *issues.Issues
}

// Run parses all the given inputs and returns a report of them.
// A failure to read one input is recorded against it in the report and doesn't affect
// the others. The only error returned is from the context being cancelled.
func (r *Runner) Run(ctx context.Context, inputs []string) (*report.Report, error) {
	rep := report.New()
	results := make([]result, len(inputs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallelism)
	for i, input := range inputs {
		i, input := i, input
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i].input, results[i].issues = r.ParseOne(input)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, res := range results {
		rep.Add(res.input, res.issues)
	}
	rep.Finish()
	log.Info("Parsed %d inputs in %s, found %d issues", len(inputs), rep.Duration, rep.Issues.Size())
	return rep, nil
}

// ParseOne parses a single input. Any failure is recorded in the returned Input.
func (r *Runner) ParseOne(path string) (report.Input, *issues.Issues) {
	start := time.Now()
	input := report.Input{Path: path, Parser: AutoDetect}
	if r.parser != nil {
		input.Parser = r.parser.ID()
	}
	is, err := r.parseOne(path, &input)
	if err != nil {
		log.Warning("Failed to parse %s: %s", path, err)
		input.Error = err.Error()
		r.metrics.RecordFailure(input.Parser, time.Since(start))
		return input, nil
	}
	log.Debug("Parsed %s with %s: %d issues", path, input.Parser, is.Size())
	r.metrics.Record(input.Parser, is, time.Since(start))
	return input, is
}

func (r *Runner) parseOne(path string, input *report.Input) (*issues.Issues, error) {
	f, err := parser.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	d := report.NewDigestReader(f)
	br := bufio.NewReaderSize(d, r.sampleSize)
	p := r.parser
	if p == nil {
		// Peek returns whatever it has along with an error if the input is shorter than the sample.
		sample, _ := br.Peek(r.sampleSize)
		if p, err = parser.Detect(r.registry, sample); errors.Is(err, parser.ErrUnrecognised) {
			// Nothing any parser recognises is a clean input, not a failure.
			log.Info("No diagnostics recognised in %s", path)
			return drain(br, d, input)
		} else if err != nil {
			return nil, err
		}
		input.Parser = p.ID()
	}
	is, err := p.Parse(br)
	input.Size = d.Size()
	if err != nil {
		return nil, err
	}
	input.Digest = d.Digest()
	return is, nil
}

// drain reads the rest of an input that has no diagnostics in it, so its size and digest
// are still recorded.
func drain(br io.Reader, d *report.DigestReader, input *report.Input) (*issues.Issues, error) {
	_, err := io.Copy(io.Discard, br)
	input.Size = d.Size()
	if err != nil {
		return nil, &parser.ParseError{Parser: AutoDetect, Err: err}
	}
	input.Digest = d.Digest()
	return issues.NewCollector().Issues(), nil
}
