// Package config reads the analysis config files.
//
// These are gcfg (git-config style) files, read in order with later ones overriding earlier
// ones. Besides general settings they can define extra line-oriented parsers:
//
//	[parser "mytool"]
//	name = My tool
//	header = "^(?P<file>[^:]+):(?P<line>\\d+): (?P<category>\\w+): (?P<message>.*)$"
//	continuation = indented
//	priority = error:high
//	priority = info:low
//
// gcfg doesn't allow a bare backslash in a value, so regular expressions that use them must
// be quoted and have their backslashes doubled, as above.
package config

import (
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/hashicorp/go-multierror"
	"github.com/please-build/gcfg"

	"github.com/thought-machine/analysis/src/cli"
	"github.com/thought-machine/analysis/src/cli/logging"
	"github.com/thought-machine/analysis/src/fs"
	"github.com/thought-machine/analysis/src/issues"
	"github.com/thought-machine/analysis/src/parser"
)

var log = logging.Log

// UserFileName is the user's own config file, which applies to all repos.
const UserFileName = "~/.config/analysis/analysisconfig"

// FileName is the name of the typical repo config file. This is normally checked in.
const FileName = ".analysisconfig"

// LocalFileName is the name of the local config file, which overrides the repo one and is
// not normally checked in.
const LocalFileName = ".analysisconfig.local"

// A Configuration is the contents of the config files.
type Configuration struct {
	Analysis struct {
		NumThreads      int          `help:"Number of inputs to parse concurrently. Defaults to the number of CPUs."`
		DefaultParser   string       `help:"Parser to use when none is given on the command line. 'auto' guesses from the input."`
		DetectSample    cli.ByteSize `help:"How much of an input to look at when guessing its format."`
		RequiredVersion string       `help:"Semver constraint on the version of the tool that may read this config."`
	}
	Metrics struct {
		PushGatewayURL cli.URL      `help:"URL of a Prometheus pushgateway to send metrics to."`
		PushTimeout    cli.Duration `help:"Timeout on pushing metrics."`
		Label          []string     `help:"Extra labels on all metrics, as name:command where the command's output is the value."`
	}
	Parser map[string]*struct {
		Name                string   `help:"Human-readable name of the tool."`
		Header              string   `help:"Regular expression matching the first line of a diagnostic. Must be quoted if it contains backslashes, which are then doubled."`
		Continuation        string   `help:"How to recognise further lines of a diagnostic; one of nonblank, indented, pattern or none."`
		ContinuationPattern string   `help:"Regular expression matching further lines when continuation = pattern. Quoted like header."`
		DefaultCategory     string   `help:"Category of issues whose header doesn't capture one."`
		DefaultFileName     string   `help:"File name of issues whose header doesn't capture one."`
		StripColour         bool     `help:"Remove ANSI colour escapes before matching."`
		Priority            []string `help:"Priority of a category, as category:priority. Can be repeated."`
	}
}

// DefaultConfiguration returns the default configuration, before any files are read.
func DefaultConfiguration() *Configuration {
	config := &Configuration{}
	config.Analysis.NumThreads = runtime.GOMAXPROCS(0)
	config.Analysis.DefaultParser = "auto"
	config.Analysis.DetectSample = 64 * 1024
	config.Metrics.PushTimeout = cli.Duration(5 * time.Second)
	return config
}

// DefaultFiles returns the config files that are read when nothing else is specified,
// in the order they're read.
func DefaultFiles() []string {
	return []string{fs.ExpandHomePath(UserFileName), FileName, LocalFileName}
}

// ReadFiles reads the given config files in order, starting from the defaults.
// It's not an error for any of them not to exist.
func ReadFiles(filenames []string) (*Configuration, error) {
	config := DefaultConfiguration()
	for _, filename := range filenames {
		if err := readFile(config, filename); err != nil {
			return config, err
		}
	}
	if config.Analysis.NumThreads <= 0 {
		config.Analysis.NumThreads = runtime.GOMAXPROCS(0)
	}
	return config, nil
}

// ReadString reads config from a string on top of the defaults.
func ReadString(contents string) (*Configuration, error) {
	config := DefaultConfiguration()
	if err := gcfg.ReadStringInto(config, contents); err != nil {
		return nil, err
	}
	return config, nil
}

func readFile(config *Configuration, filename string) error {
	if err := gcfg.ReadFileInto(config, filename); err != nil && os.IsNotExist(err) {
		return nil // It's not an error to not have the file at all.
	} else if err != nil {
		return fmt.Errorf("failed to read config from %s: %w", filename, err)
	}
	log.Debug("Read config from %s", filename)
	return nil
}

// CheckVersion returns an error if the config requires a different version of the tool.
func (config *Configuration) CheckVersion(version string) error {
	if config.Analysis.RequiredVersion == "" {
		return nil
	}
	c, err := semver.NewConstraint(config.Analysis.RequiredVersion)
	if err != nil {
		return fmt.Errorf("invalid requiredversion %s: %w", config.Analysis.RequiredVersion, err)
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("invalid version %s: %w", version, err)
	}
	if ok, errs := c.Validate(v); !ok {
		var merr *multierror.Error
		for _, err := range errs {
			merr = multierror.Append(merr, err)
		}
		return fmt.Errorf("this config requires version %s of the tool: %w", config.Analysis.RequiredVersion, merr)
	}
	return nil
}

// MetricLabels returns the custom metric labels as a map of name to command.
func (config *Configuration) MetricLabels() (map[string]string, error) {
	var errs *multierror.Error
	labels := make(map[string]string, len(config.Metrics.Label))
	for _, label := range config.Metrics.Label {
		name, command, found := strings.Cut(label, ":")
		if name = strings.TrimSpace(name); !found || name == "" || strings.TrimSpace(command) == "" {
			errs = multierror.Append(errs, fmt.Errorf("invalid metric label %q, should be name:command", label))
			continue
		}
		labels[name] = strings.TrimSpace(command)
	}
	return labels, errs.ErrorOrNil()
}

// Definitions returns the definitions of all the parsers in the config, sorted by ID.
// Each is only checked as far as the config format goes; parser.NewConfiguration does the rest.
func (config *Configuration) Definitions() ([]parser.Definition, error) {
	ids := make([]string, 0, len(config.Parser))
	for id := range config.Parser {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var errs *multierror.Error
	defs := make([]parser.Definition, 0, len(ids))
	for _, id := range ids {
		section := config.Parser[id]
		def := parser.Definition{
			ID:                  id,
			Name:                section.Name,
			Header:              section.Header,
			Continuation:        parser.ContinuationMode(strings.ToLower(strings.TrimSpace(section.Continuation))),
			ContinuationPattern: section.ContinuationPattern,
			Priorities:          make(map[string]issues.Priority, len(section.Priority)),
			DefaultCategory:     section.DefaultCategory,
			DefaultFileName:     section.DefaultFileName,
			StripColour:         section.StripColour,
		}
		for _, entry := range section.Priority {
			// Split on the last colon; categories may contain them but priorities never do.
			idx := strings.LastIndexByte(entry, ':')
			if idx == -1 {
				errs = multierror.Append(errs, fmt.Errorf("parser %s: invalid priority %q, should be category:priority", id, entry))
				continue
			}
			prio, err := issues.ParsePriority(strings.TrimSpace(entry[idx+1:]))
			if err != nil {
				errs = multierror.Append(errs, fmt.Errorf("parser %s: %w", id, err))
				continue
			}
			def.Priorities[strings.TrimSpace(entry[:idx])] = prio
		}
		defs = append(defs, def)
	}
	return defs, errs.ErrorOrNil()
}

// Parsers compiles all the parsers defined in the config.
func (config *Configuration) Parsers() ([]parser.Parser, error) {
	defs, err := config.Definitions()
	if err != nil {
		return nil, err
	}
	var errs *multierror.Error
	parsers := make([]parser.Parser, 0, len(defs))
	for _, def := range defs {
		p, err := parser.NewLineParserFromDefinition(def)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		parsers = append(parsers, p)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return parsers, nil
}
