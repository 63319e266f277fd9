// Package report prints suite progress and summaries to a terminal.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"testsuite/internal/domain/suite"
	"testsuite/internal/ports"
)

const titleWidth = 30

var (
	failColor = color.New(color.Bold, color.FgHiRed).SprintFunc()
	passColor = color.New(color.Bold, color.FgHiGreen).SprintFunc()
)

// Console renders one status line per case followed by a summary.
type Console struct {
	out io.Writer
}

// ensure Console implements ports.Reporter.
var _ ports.Reporter = (*Console)(nil)

// NewConsole writes to out, or to the colorable stdout when out is nil.
func NewConsole(out io.Writer) *Console {
	if out == nil {
		out = color.Output
	}
	return &Console{out: out}
}

// CaseStarted prints the case number and title column.
func (c *Console) CaseStarted(number int, title string) {
	label := ""
	if title != "" {
		label = title + ": "
	}
	fmt.Fprintf(c.out, "%3d:  %-*s ", number, titleWidth, label)
}

// CasePassed completes the status line with OK.
func (c *Console) CasePassed(int) {
	fmt.Fprintln(c.out, passColor("OK"))
}

// CaseFailed completes the status line with KO and lists every failed check.
func (c *Console) CaseFailed(result suite.CaseResult) {
	fmt.Fprintln(c.out, failColor("KO"))
	for _, f := range result.Failures {
		fmt.Fprintf(c.out, "  %s:\n", f.Message)
		if f.Diff != "" {
			fmt.Fprint(c.out, f.Diff)
		}
	}
}

// SuiteFinished prints the pass count and the failed case numbers.
func (c *Console) SuiteFinished(summary suite.Summary) {
	if summary.AllPassed() {
		fmt.Fprintln(c.out, passColor(fmt.Sprintf("All %d tests passed. Hurray!", summary.Passed)))
		return
	}

	fmt.Fprintln(c.out, failColor(fmt.Sprintf("Passed %d/%d tests.", summary.Passed, summary.Total())))
	failed := make([]string, len(summary.Failed))
	for i, n := range summary.Failed {
		failed[i] = fmt.Sprint(n)
	}
	fmt.Fprintf(c.out, "Tests failed: %s\n", strings.Join(failed, " "))
}

// Error prints a fatal message in the failure color.
func (c *Console) Error(msg string) {
	fmt.Fprintln(c.out, failColor(msg))
}
