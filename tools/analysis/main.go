// Package main implements analysis, a tool to normalise the output of compilers and linters
// into a common set of issues.
//
// It can write them out as text or JSON, summarise them, compare them against a previous
// run and fail a build if there are too many.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/thought-machine/analysis/src/analyse"
	"github.com/thought-machine/analysis/src/cli"
	"github.com/thought-machine/analysis/src/cli/logging"
	"github.com/thought-machine/analysis/src/config"
	"github.com/thought-machine/analysis/src/fs"
	"github.com/thought-machine/analysis/src/issues"
	"github.com/thought-machine/analysis/src/metrics"
	"github.com/thought-machine/analysis/src/parser"
	"github.com/thought-machine/analysis/src/parsers"
	"github.com/thought-machine/analysis/src/report"
)

var log = logging.Log

// version is the version of the tool, which config files can place constraints on.
var version = "1.0.0"

// Exit codes.
const (
	exitSuccess   = 0
	exitFailed    = 1
	exitThreshold = 2
)

var opts = struct {
	Usage string

	Verbosity    cli.Verbosity `short:"v" long:"verbosity" default:"warning" description:"Verbosity of output (higher number = more output)"`
	LogFile      string        `long:"log_file" description:"File to echo full logging output to"`
	LogFileLevel cli.Verbosity `long:"log_file_level" default:"debug" description:"Log level for file output"`
	Config       []string      `short:"c" long:"config" description:"Additional config files to read, after the default ones"`
	NumThreads   int           `short:"n" long:"num_threads" description:"Number of inputs to parse concurrently. Overrides the config setting."`

	Parse struct {
		Parser   string       `short:"p" long:"parser" description:"ID of the parser to use, or 'auto' to guess for each input. Defaults to the config setting."`
		Format   string       `short:"f" long:"format" choice:"text" choice:"json" choice:"summary" default:"text" description:"Format to write results in"`
		Output   string       `short:"o" long:"output" description:"File to write results to. Defaults to stdout."`
		Baseline string       `short:"b" long:"baseline" description:"JSON report from a previous run to compare against. Only new issues are written as text or counted towards --fail_on."`
		FailOn   cli.Priority `long:"fail_on" description:"Exit unsuccessfully if there are any issues of at least this priority"`
		Suffix   []string     `short:"s" long:"suffix" description:"Suffixes of files to parse when given directories. Defaults to all files."`
		Args     struct {
			Inputs cli.Filepaths `positional-arg-name:"inputs" description:"Files or directories to parse. - or nothing means stdin."`
		} `positional-args:"true"`
	} `command:"parse" alias:"p" description:"Parses tool output into issues"`

	Watch struct {
		Parser string `short:"p" long:"parser" description:"ID of the parser to use, or 'auto' to guess for each input. Defaults to the config setting."`
		Args   struct {
			Inputs cli.Filepaths `positional-arg-name:"inputs" description:"Files to watch" required:"true"`
		} `positional-args:"true" required:"true"`
	} `command:"watch" alias:"w" description:"Parses files whenever they change and prints their issues"`

	Parsers struct{} `command:"parsers" description:"Lists all the available parsers"`
	Version struct{} `command:"version" description:"Prints the version of this tool"`
}{
	Usage: `
analysis normalises the output of compilers and linters into a common set of issues.

Each issue has a file, position, category, priority (low, normal or high) and message.
Formats are defined by config files as well as a set of built-in parsers; see 'analysis parsers'.
`,
}

var subCommands = map[string]func(*config.Configuration, *parser.Registry) int{
	"parse": func(conf *config.Configuration, registry *parser.Registry) int {
		inputs, err := fs.CollectInputs(orStdin(opts.Parse.Args.Inputs.AsStrings()), opts.Parse.Suffix)
		if err != nil {
			log.Fatalf("%s", err)
		}
		m := mustMetrics(conf)
		runner := mustRunner(conf, registry, opts.Parse.Parser, m)
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()
		rep, err := runner.Run(ctx, inputs)
		if err != nil {
			log.Fatalf("%s", err)
		}
		var delta *issues.Delta
		if opts.Parse.Baseline != "" {
			baseline, err := report.ReadFile(opts.Parse.Baseline)
			if err != nil {
				log.Fatalf("Failed to read baseline: %s", err)
			}
			d := issues.Diff(baseline.Issues, rep.Issues)
			delta = &d
		}
		if err := writeOutput(opts.Parse.Output, func(w io.Writer) error {
			return write(w, opts.Parse.Format, rep, delta)
		}); err != nil {
			log.Fatalf("Failed to write output: %s", err)
		}
		if err := m.Push(); err != nil {
			log.Warning("%s", err)
		}
		return exitCode(rep, delta, opts.Parse.FailOn.Priority)
	},
	"watch": func(conf *config.Configuration, registry *parser.Registry) int {
		runner := mustRunner(conf, registry, opts.Watch.Parser, nil)
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()
		if err := runner.Watch(ctx, opts.Watch.Args.Inputs.AsStrings(), func(input report.Input, is *issues.Issues) {
			if input.Error != "" {
				fmt.Fprintf(os.Stderr, "%s: %s\n", input.Path, input.Error)
				return
			}
			fmt.Printf("%s: %d issues\n", input.Path, is.Size())
			if err := report.WriteText(os.Stdout, is); err != nil {
				log.Error("%s", err)
			}
		}); err != nil {
			log.Fatalf("%s", err)
		}
		return exitSuccess
	},
	"parsers": func(conf *config.Configuration, registry *parser.Registry) int {
		for _, p := range registry.Parsers() {
			fmt.Printf("%-16s %s\n", p.ID(), p.Name())
		}
		return exitSuccess
	},
	"version": func(conf *config.Configuration, registry *parser.Registry) int {
		fmt.Printf("analysis version %s\n", version)
		return exitSuccess
	},
}

func orStdin(inputs []string) []string {
	if len(inputs) == 0 {
		return []string{fs.Stdin}
	}
	return inputs
}

func mustMetrics(conf *config.Configuration) *metrics.Metrics {
	if conf.Metrics.PushGatewayURL == "" {
		return nil
	}
	labels, err := conf.MetricLabels()
	if err != nil {
		log.Fatalf("%s", err)
	}
	m, err := metrics.New(conf.Metrics.PushGatewayURL.String(), time.Duration(conf.Metrics.PushTimeout), labels)
	if err != nil {
		log.Fatalf("%s", err)
	}
	return m
}

func mustRunner(conf *config.Configuration, registry *parser.Registry, parserID string, m *metrics.Metrics) *analyse.Runner {
	if parserID == "" {
		parserID = conf.Analysis.DefaultParser
	}
	runner, err := analyse.NewRunner(registry, parserID, conf.Analysis.NumThreads, int(conf.Analysis.DetectSample), m)
	if err != nil {
		log.Fatalf("%s", err)
	}
	return runner
}

func writeOutput(filename string, f func(w io.Writer) error) error {
	if filename == "" {
		return f(os.Stdout)
	}
	if err := fs.EnsureDir(filename); err != nil {
		return err
	}
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := f(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func write(w io.Writer, format string, rep *report.Report, delta *issues.Delta) error {
	switch format {
	case "json":
		return rep.WriteJSON(w)
	case "summary":
		return report.WriteSummary(w, rep, delta)
	}
	if delta != nil {
		return report.WriteText(w, delta.New)
	}
	return report.WriteText(w, rep.Issues)
}

// exitCode returns the code to exit with for a run. Failing to parse anything takes precedence
// over breaching the threshold, since the issues can't be trusted if some are missing.
func exitCode(rep *report.Report, delta *issues.Delta, failOn issues.Priority) int {
	if rep.Failed() > 0 {
		return exitFailed
	} else if !failOn.Valid() {
		return exitSuccess
	}
	is := rep.Issues
	if delta != nil {
		is = delta.New
	}
	if n := is.AtLeast(failOn); n > 0 {
		log.Error("%d issues of at least %s priority", n, failOn)
		return exitThreshold
	}
	return exitSuccess
}

func main() {
	command := cli.ParseFlagsOrDie("analysis", &opts)
	closeLog := func() {}
	if opts.LogFile != "" {
		f, err := cli.InitFileLogging(opts.Verbosity, opts.LogFile, opts.LogFileLevel)
		if err != nil {
			log.Fatalf("Failed to open log file: %s", err)
		}
		closeLog = f
	} else {
		cli.InitLogging(opts.Verbosity)
	}
	conf, err := config.ReadFiles(append(config.DefaultFiles(), opts.Config...))
	if err != nil {
		log.Fatalf("%s", err)
	} else if err := conf.CheckVersion(version); err != nil {
		log.Fatalf("%s", err)
	}
	if opts.NumThreads > 0 {
		conf.Analysis.NumThreads = opts.NumThreads
	}
	extra, err := conf.Parsers()
	if err != nil {
		log.Fatalf("Invalid parser in config: %s", err)
	}
	registry, err := parsers.NewRegistry(extra...)
	if err != nil {
		log.Fatalf("%s", err)
	}
	code := subCommands[command](conf, registry)
	closeLog()
	os.Exit(code)
}
