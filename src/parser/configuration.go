package parser

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/thought-machine/analysis/src/issues"
)

// A Configuration is a validated, compiled Definition.
// It's immutable once created and can be shared between any number of concurrent parses.
type Configuration struct {
	id, name        string
	header          *regexp.Regexp
	groups          map[string]int
	continuation    ContinuationMode
	continuationRe  *regexp.Regexp
	priorities      map[string]issues.Priority
	categories      []string
	defaultCategory string
	defaultFileName string
	stripColour     bool
}

// NewConfiguration validates the given definition and compiles it.
// All problems found are returned together rather than just the first.
func NewConfiguration(def Definition) (*Configuration, error) {
	var errs *multierror.Error
	config := &Configuration{
		id:              strings.TrimSpace(def.ID),
		name:            def.Name,
		groups:          map[string]int{},
		continuation:    def.Continuation,
		priorities:      make(map[string]issues.Priority, len(def.Priorities)),
		defaultCategory: def.DefaultCategory,
		defaultFileName: def.DefaultFileName,
		stripColour:     def.StripColour,
	}
	if config.id == "" {
		errs = multierror.Append(errs, fmt.Errorf("parser has no ID"))
	}
	if config.name == "" {
		config.name = config.id
	}
	if config.defaultFileName == "" {
		config.defaultFileName = issues.DefaultFileName
	}
	if def.Header == "" {
		errs = multierror.Append(errs, fmt.Errorf("no header pattern given"))
	} else if re, err := regexp.Compile(def.Header); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("invalid header pattern: %w", err))
	} else {
		config.header = re
		for i, name := range re.SubexpNames() {
			if name == "" {
				continue
			} else if !knownGroups[name] {
				errs = multierror.Append(errs, fmt.Errorf("unknown capture group %q in header pattern", name))
			} else {
				config.groups[name] = i
			}
		}
		if _, present := config.groups[GroupMessage]; !present {
			errs = multierror.Append(errs, fmt.Errorf("header pattern has no %q group", GroupMessage))
		}
		if _, present := config.groups[GroupCategory]; !present && config.defaultCategory == "" {
			errs = multierror.Append(errs, fmt.Errorf("header pattern has no %q group and there is no default category", GroupCategory))
		}
	}
	switch config.continuation {
	case "":
		config.continuation = ContinueNonBlank
	case ContinueNonBlank, ContinueIndented, ContinueNone:
	case ContinuePattern:
		if def.ContinuationPattern == "" {
			errs = multierror.Append(errs, fmt.Errorf("continuation mode %s needs a continuation pattern", ContinuePattern))
		} else if re, err := regexp.Compile(def.ContinuationPattern); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("invalid continuation pattern: %w", err))
		} else {
			config.continuationRe = re
		}
	default:
		errs = multierror.Append(errs, fmt.Errorf("unknown continuation mode %q", config.continuation))
	}
	for category, priority := range def.Priorities {
		if strings.TrimSpace(category) == "" {
			errs = multierror.Append(errs, fmt.Errorf("empty category in priority table"))
		} else if !priority.Valid() {
			errs = multierror.Append(errs, fmt.Errorf("invalid priority %s for category %q", priority, category))
		} else {
			config.priorities[strings.ToLower(category)] = priority
			config.categories = append(config.categories, category)
		}
	}
	sort.Strings(config.categories)
	if err := errs.ErrorOrNil(); err != nil {
		if config.id != "" {
			return nil, fmt.Errorf("invalid configuration for parser %s: %w", config.id, err)
		}
		return nil, err
	}
	return config, nil
}

// MustNewConfiguration is like NewConfiguration but panics on error.
// It's intended for static built-in definitions.
func MustNewConfiguration(def Definition) *Configuration {
	config, err := NewConfiguration(def)
	if err != nil {
		panic(err)
	}
	return config
}

// ID returns the identifier of the tool, which is used as the type of its issues.
func (config *Configuration) ID() string {
	return config.id
}

// Name returns the human-readable name of the tool.
func (config *Configuration) Name() string {
	return config.name
}

// Categories returns the categories in the priority table, sorted.
func (config *Configuration) Categories() []string {
	return append([]string(nil), config.categories...)
}

// PriorityOf returns the priority of the given category. Unmapped categories are Normal.
func (config *Configuration) PriorityOf(category string) issues.Priority {
	if priority, present := config.priorities[strings.ToLower(category)]; present {
		return priority
	}
	return issues.Normal
}

// IsHeader returns true if the given line opens a new diagnostic.
func (config *Configuration) IsHeader(line string) bool {
	return config.header.MatchString(config.clean(line))
}

// isContinuation returns true if the given line (which is not a header) extends the current diagnostic.
func (config *Configuration) isContinuation(line string) bool {
	if strings.TrimSpace(line) == "" {
		return false
	}
	switch config.continuation {
	case ContinueNonBlank:
		return true
	case ContinueIndented:
		return line[0] == ' ' || line[0] == '\t'
	case ContinuePattern:
		return config.continuationRe.MatchString(line)
	}
	return false
}

// field returns the named group from a set of matches, or the empty string if the
// header doesn't have that group or it didn't participate in the match.
func (config *Configuration) field(matches []string, name string) string {
	if i, present := config.groups[name]; present {
		return matches[i]
	}
	return ""
}

// clean prepares a raw line for matching.
func (config *Configuration) clean(line string) string {
	line = strings.TrimRight(line, " \t\r\n")
	if config.stripColour {
		line = ansiEscape.ReplaceAllString(line, "")
	}
	return line
}
