package issues

import (
	"encoding/json"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Issues is an ordered collection of issues produced by a single parse.
// Order is the order the issues were completed in, which is the order they appeared in the input.
// Duplicates are allowed. There is no way to modify an Issues once it's been handed out.
type Issues struct {
	items []Issue
}

// Size returns the number of issues.
func (is *Issues) Size() int {
	if is == nil {
		return 0
	}
	return len(is.items)
}

// Get returns the i'th issue. It panics if i is out of range, like indexing a slice would.
func (is *Issues) Get(i int) Issue {
	return is.items[i]
}

// All returns a copy of the issues as a slice.
func (is *Issues) All() []Issue {
	if is == nil {
		return nil
	}
	ret := make([]Issue, len(is.items))
	copy(ret, is.items)
	return ret
}

// Each calls f for each issue in order.
func (is *Issues) Each(f func(Issue)) {
	if is == nil {
		return
	}
	for _, issue := range is.items {
		f(issue)
	}
}

// SizeOf returns the number of issues with the given priority.
func (is *Issues) SizeOf(priority Priority) int {
	n := 0
	is.Each(func(issue Issue) {
		if issue.priority == priority {
			n++
		}
	})
	return n
}

// HighPrioritySize returns the number of high priority issues.
func (is *Issues) HighPrioritySize() int { return is.SizeOf(High) }

// NormalPrioritySize returns the number of normal priority issues.
func (is *Issues) NormalPrioritySize() int { return is.SizeOf(Normal) }

// LowPrioritySize returns the number of low priority issues.
func (is *Issues) LowPrioritySize() int { return is.SizeOf(Low) }

// AtLeast returns the number of issues with at least the given priority.
func (is *Issues) AtLeast(priority Priority) int {
	n := 0
	is.Each(func(issue Issue) {
		if issue.priority >= priority {
			n++
		}
	})
	return n
}

// Categories returns the distinct categories of these issues, sorted.
func (is *Issues) Categories() []string {
	return is.distinct(Issue.Category)
}

// Types returns the distinct types of these issues, sorted.
func (is *Issues) Types() []string {
	return is.distinct(Issue.Type)
}

func (is *Issues) distinct(field func(Issue) string) []string {
	seen := map[string]struct{}{}
	is.Each(func(issue Issue) {
		seen[field(issue)] = struct{}{}
	})
	ret := maps.Keys(seen)
	slices.Sort(ret)
	return ret
}

// MarshalJSON implements the json.Marshaler interface.
func (is *Issues) MarshalJSON() ([]byte, error) {
	if is == nil || is.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(is.items)
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (is *Issues) UnmarshalJSON(data []byte) error {
	var items []Issue
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	is.items = items
	return nil
}

// Merge returns a new Issues containing all of the given ones, in order.
func Merge(all ...*Issues) *Issues {
	c := NewCollector()
	for _, is := range all {
		is.Each(c.Add)
	}
	return c.Issues()
}

// A Collector is the write side of an Issues. Producers add to it while parsing and
// then hand out the result; after Issues is called the collector starts afresh.
type Collector struct {
	items []Issue
}

// NewCollector returns a new, empty Collector.
func NewCollector() *Collector {
	return &Collector{items: []Issue{}}
}

// Add appends an issue.
func (c *Collector) Add(issue Issue) {
	c.items = append(c.items, issue)
}

// Len returns the number of issues added so far.
func (c *Collector) Len() int {
	return len(c.items)
}

// Snapshot returns the issues collected so far without resetting the collector.
// Issues added later don't show up in it.
func (c *Collector) Snapshot() *Issues {
	return &Issues{items: c.items[:len(c.items):len(c.items)]}
}

// Issues returns the collected issues. The collector is reset afterwards so the
// returned value can't be modified through it.
func (c *Collector) Issues() *Issues {
	is := &Issues{items: c.items}
	c.items = []Issue{}
	return is
}
