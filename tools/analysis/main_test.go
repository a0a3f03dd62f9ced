package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thought-machine/analysis/src/issues"
	"github.com/thought-machine/analysis/src/report"
)

func testReport(priorities ...issues.Priority) *report.Report {
	c := issues.NewCollector()
	for i, prio := range priorities {
		c.Add(issues.NewBuilder().SetFileName("a.c").SetLine(i + 1).SetCategory("x").SetPriority(prio).SetMessage("msg").Build())
	}
	r := report.New()
	r.Add(report.Input{Path: "build.log", Parser: "gcc"}, c.Issues())
	return r
}

func TestExitCode(t *testing.T) {
	r := testReport(issues.Low, issues.Normal)
	assert.Equal(t, exitSuccess, exitCode(r, nil, 0))
	assert.Equal(t, exitSuccess, exitCode(r, nil, issues.High))
	assert.Equal(t, exitThreshold, exitCode(r, nil, issues.Normal))
	assert.Equal(t, exitThreshold, exitCode(r, nil, issues.Low))
}

func TestExitCodeFailedInput(t *testing.T) {
	r := testReport(issues.High)
	r.Add(report.Input{Path: "missing.log", Error: "no such file"}, nil)
	assert.Equal(t, exitFailed, exitCode(r, nil, issues.High))
	assert.Equal(t, exitFailed, exitCode(r, nil, 0))
}

func TestExitCodeBaseline(t *testing.T) {
	baseline := testReport(issues.High)
	current := testReport(issues.High, issues.Low)
	delta := issues.Diff(baseline.Issues, current.Issues)
	assert.Equal(t, exitSuccess, exitCode(current, &delta, issues.Normal))
	assert.Equal(t, exitThreshold, exitCode(current, &delta, issues.Low))
}

func TestWrite(t *testing.T) {
	r := testReport(issues.High, issues.Low)
	var buf bytes.Buffer
	require.NoError(t, write(&buf, "text", r, nil))
	assert.Equal(t, "a.c:1: [HIGH] x: msg\na.c:2: [LOW] x: msg\n", buf.String())

	buf.Reset()
	delta := issues.Diff(testReport(issues.High).Issues, r.Issues)
	require.NoError(t, write(&buf, "text", r, &delta))
	assert.Equal(t, "a.c:2: [LOW] x: msg\n", buf.String())

	buf.Reset()
	require.NoError(t, write(&buf, "json", r, nil))
	r2, err := report.ReadJSON(&buf)
	require.NoError(t, err)
	assert.Equal(t, r.Issues.All(), r2.Issues.All())

	buf.Reset()
	require.NoError(t, write(&buf, "summary", r, &delta))
	assert.Contains(t, buf.String(), "2 issues: 1 high, 0 normal, 1 low")
	assert.Contains(t, buf.String(), "1 new, 0 fixed, 1 outstanding")
}

func TestOrStdin(t *testing.T) {
	assert.Equal(t, []string{"-"}, orStdin(nil))
	assert.Equal(t, []string{"a.log"}, orStdin([]string{"a.log"}))
}
