package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/thought-machine/analysis/src/issues"
)

// WriteText writes issues one per line, as
//
//	file:line: [PRIORITY] category: message
//
// Further lines of multi-line messages follow, indented by a tab.
func WriteText(w io.Writer, is *issues.Issues) error {
	var err error
	is.Each(func(issue issues.Issue) {
		if err != nil {
			return
		}
		lines := strings.Split(issue.Message(), "\n")
		_, err = fmt.Fprintf(w, "%s: [%s] %s: %s\n", location(issue), issue.Priority(), issue.Category(), lines[0])
		for _, line := range lines[1:] {
			if err == nil {
				_, err = fmt.Fprintf(w, "\t%s\n", line)
			}
		}
	})
	return err
}

func location(issue issues.Issue) string {
	if issue.LineStart() == 0 {
		return issue.FileName()
	} else if issue.ColumnStart() == 0 {
		return fmt.Sprintf("%s:%d", issue.FileName(), issue.LineStart())
	}
	return fmt.Sprintf("%s:%d:%d", issue.FileName(), issue.LineStart(), issue.ColumnStart())
}

// WriteSummary writes a short human-readable summary of the report.
// If delta is non-nil it's included as well.
func WriteSummary(w io.Writer, r *Report, delta *issues.Delta) error {
	s := &strings.Builder{}
	fmt.Fprintf(s, "Run %s: %s in %s, %s parsed in %s\n",
		r.RunID, plural(len(r.Inputs), "input"), humanize.Bytes(uint64(r.Size())),
		plural(len(r.Inputs)-r.Failed(), "input"), r.Duration.Round(time.Millisecond))
	for _, input := range r.Inputs {
		if input.Error != "" {
			fmt.Fprintf(s, "  %s: %s\n", input.Path, input.Error)
		}
	}
	fmt.Fprintf(s, "%s: %s high, %s normal, %s low\n", plural(r.Issues.Size(), "issue"),
		humanize.Comma(int64(r.Issues.HighPrioritySize())),
		humanize.Comma(int64(r.Issues.NormalPrioritySize())),
		humanize.Comma(int64(r.Issues.LowPrioritySize())))
	for _, category := range r.Issues.Categories() {
		n := 0
		r.Issues.Each(func(issue issues.Issue) {
			if issue.Category() == category {
				n++
			}
		})
		fmt.Fprintf(s, "  %s: %s\n", category, humanize.Comma(int64(n)))
	}
	if delta != nil {
		fmt.Fprintf(s, "Compared to baseline: %s new, %s fixed, %s outstanding\n",
			humanize.Comma(int64(delta.New.Size())),
			humanize.Comma(int64(delta.Fixed.Size())),
			humanize.Comma(int64(delta.Outstanding.Size())))
	}
	_, err := io.WriteString(w, s.String())
	return err
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return humanize.Comma(int64(n)) + " " + noun + "s"
}
