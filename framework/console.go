package framework

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

const summaryRule = "============================================================"

// ConsoleOutcomeLogger writes each outcome to the console as it is recorded.
type ConsoleOutcomeLogger struct {
	Out                  io.Writer
	NoColor              bool
	ShowPassPayloads     bool
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool
}

func (c ConsoleOutcomeLogger) StepSkipped(test string, reason string) {
	if reason == "" {
		fmt.Fprintf(c.Out, "[%s] %s\n", paint(c.NoColor, color.FgYellow, "SKIP"), test)
	} else {
		fmt.Fprintf(c.Out, "[%s] %s (%s)\n", paint(c.NoColor, color.FgYellow, "SKIP"), test, reason)
	}
}

func (c ConsoleOutcomeLogger) OutcomeRecorded(o Outcome) {
	fmt.Fprintf(c.Out, "[%s] %s: %s\n", statusLabel(c.NoColor, o.Status), o.Test, o.Message)
	if !o.Payload.IsEmpty() && (o.Status != StatusPass || c.ShowPassPayloads) {
		if text := o.Payload.Pretty(); text != o.Message {
			for _, line := range strings.Split(text, "\n") {
				fmt.Fprintf(c.Out, "    %s\n", line)
			}
		}
	}
	failed := o.Status == StatusFail
	if len(o.DebugOutput) > 0 &&
		((failed && c.DebugOutputOnFailure) || (!failed && c.DebugOutputOnSuccess)) {
		o.DebugOutput.Dump(c.Out, "    DEBUG ")
	}
}

// PrintSummary writes the totals for a run, followed by a one-line verdict.
func PrintSummary(out io.Writer, results Results, noColor bool) {
	counts := results.Counts()
	fmt.Fprintln(out, summaryRule)
	fmt.Fprintln(out, "Test summary:")
	fmt.Fprintf(out, "  %s %d\n", paint(noColor, color.FgGreen, "Passed:"), counts.Passed)
	fmt.Fprintf(out, "  %s %d\n", paint(noColor, color.FgRed, "Failed:"), counts.Failed)
	fmt.Fprintf(out, "  %s   %d\n", paint(noColor, color.FgCyan, "Info:"), counts.Info)
	if counts.Failed == 0 {
		fmt.Fprintln(out, paint(noColor, color.FgGreen, "All tests passed."))
		return
	}
	fmt.Fprintln(out, paint(noColor, color.FgRed, "Some tests failed:"))
	for _, f := range results.Failures() {
		fmt.Fprintf(out, "  %s: %s\n", f.Test, f.Message)
	}
}

func statusLabel(noColor bool, status Status) string {
	switch status {
	case StatusPass:
		return paint(noColor, color.FgGreen, string(status))
	case StatusFail:
		return paint(noColor, color.FgRed, string(status))
	default:
		return paint(noColor, color.FgCyan, string(status))
	}
}

func paint(noColor bool, attr color.Attribute, text string) string {
	c := color.New(attr)
	if noColor {
		c.DisableColor()
	}
	return c.Sprint(text)
}
