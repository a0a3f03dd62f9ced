package issues

import (
	"fmt"
	"strings"
)

// A Priority is the severity tier of an issue.
// The set is closed and ordered: Low < Normal < High.
type Priority int

const (
	// Low is for informational findings.
	Low Priority = iota + 1
	// Normal is the default for anything we can't otherwise classify.
	Normal
	// High is for errors that usually break the build.
	High
)

// Priorities returns all priorities in ascending order.
func Priorities() []Priority {
	return []Priority{Low, Normal, High}
}

// ParsePriority converts a string to a Priority. It's case-insensitive and accepts
// a few common severity names as aliases.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "info", "note":
		return Low, nil
	case "normal", "warning", "warn", "medium":
		return Normal, nil
	case "high", "error", "fatal":
		return High, nil
	}
	return 0, fmt.Errorf("unknown priority %q, must be one of low, normal or high", s)
}

// Valid returns true if this is one of the three known priorities.
func (p Priority) Valid() bool {
	return p >= Low && p <= High
}

// String implements the fmt.Stringer interface.
func (p Priority) String() string {
	switch p {
	case Low:
		return "LOW"
	case Normal:
		return "NORMAL"
	case High:
		return "HIGH"
	}
	return fmt.Sprintf("Priority(%d)", int(p))
}

// MarshalText implements the encoding.TextMarshaler interface.
func (p Priority) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid priority %d", int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (p *Priority) UnmarshalText(text []byte) error {
	prio, err := ParsePriority(string(text))
	if err != nil {
		return err
	}
	*p = prio
	return nil
}

// UnmarshalFlag implements the flags.Unmarshaler interface.
func (p *Priority) UnmarshalFlag(in string) error {
	return p.UnmarshalText([]byte(in))
}
