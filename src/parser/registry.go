package parser

import (
	"fmt"
	"sort"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// maxSuggestionDistance is the furthest an ID can be from an unknown one for us to suggest it.
const maxSuggestionDistance = 4

// A Registry maps tool IDs to parsers.
//
// It's built explicitly by whoever needs one; there is no global registry. Once built it's
// only read, so it can be shared between goroutines; Register must not be called
// concurrently with anything else.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry returns a new registry containing the given parsers.
func NewRegistry(parsers ...Parser) (*Registry, error) {
	r := &Registry{parsers: make(map[string]Parser, len(parsers))}
	for _, p := range parsers {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a parser to the registry. It's an error to register the same ID twice.
func (r *Registry) Register(p Parser) error {
	id := p.ID()
	if id == "" {
		return fmt.Errorf("can't register a parser with no ID")
	} else if _, present := r.parsers[id]; present {
		return fmt.Errorf("duplicate parser ID %s", id)
	}
	r.parsers[id] = p
	return nil
}

// Get returns the parser with the given ID.
// If there isn't one, the error suggests any similarly named ones.
func (r *Registry) Get(id string) (Parser, error) {
	if p, present := r.parsers[id]; present {
		return p, nil
	}
	if suggestions := r.suggest(id); len(suggestions) > 0 {
		return nil, fmt.Errorf("unknown parser %s, maybe you meant %s?", id, joinSuggestions(suggestions))
	}
	return nil, fmt.Errorf("unknown parser %s", id)
}

// IDs returns the IDs of all registered parsers, sorted.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.parsers))
	for id := range r.parsers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Parsers returns all registered parsers, sorted by ID.
func (r *Registry) Parsers() []Parser {
	ids := r.IDs()
	ret := make([]Parser, len(ids))
	for i, id := range ids {
		ret[i] = r.parsers[id]
	}
	return ret
}

// suggest returns registered IDs close to the given one, closest first.
func (r *Registry) suggest(id string) []string {
	type suggestion struct {
		id   string
		dist int
	}
	needle := []rune(id)
	options := []suggestion{}
	for _, candidate := range r.IDs() {
		dist := levenshtein.DistanceForStrings(needle, []rune(candidate), levenshtein.DefaultOptions)
		if dist <= maxSuggestionDistance {
			options = append(options, suggestion{id: candidate, dist: dist})
		}
	}
	sort.SliceStable(options, func(i, j int) bool { return options[i].dist < options[j].dist })
	ret := make([]string, len(options))
	for i, o := range options {
		ret[i] = o.id
	}
	return ret
}

func joinSuggestions(suggestions []string) string {
	msg := ""
	for i, s := range suggestions {
		if i > 0 {
			if i < len(suggestions)-1 {
				msg += ", "
			} else {
				msg += " or "
			}
		}
		msg += s
	}
	return msg
}
