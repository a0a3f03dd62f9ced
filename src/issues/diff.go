package issues

// A Delta is the result of comparing the issues of two runs by fingerprint.
type Delta struct {
	// New are issues in the current run that weren't in the previous one.
	New *Issues
	// Fixed are issues in the previous run that aren't in the current one.
	Fixed *Issues
	// Outstanding are issues present in both.
	Outstanding *Issues
}

// Diff compares two sets of issues by fingerprint.
// Duplicates are matched up one-for-one, so if a warning appeared twice before and
// three times now, one of the current ones counts as new.
func Diff(previous, current *Issues) Delta {
	remaining := map[string]int{}
	previous.Each(func(issue Issue) {
		remaining[issue.fingerprint]++
	})
	newIssues := NewCollector()
	outstanding := NewCollector()
	current.Each(func(issue Issue) {
		if remaining[issue.fingerprint] > 0 {
			remaining[issue.fingerprint]--
			outstanding.Add(issue)
		} else {
			newIssues.Add(issue)
		}
	})
	fixed := NewCollector()
	previous.Each(func(issue Issue) {
		if remaining[issue.fingerprint] > 0 {
			remaining[issue.fingerprint]--
			fixed.Add(issue)
		}
	})
	return Delta{
		New:         newIssues.Issues(),
		Fixed:       fixed.Issues(),
		Outstanding: outstanding.Issues(),
	}
}
