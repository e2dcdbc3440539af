package notify

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Notifier writes user-facing progress messages for a pipeline run.
// It is the console counterpart to the debug log: short, styled, and
// human-oriented. All output goes to a single writer, stdout by default.
type Notifier struct {
	out io.Writer
}

// New creates a Notifier writing to out. If out is nil, os.Stdout is used.
func New(out io.Writer) *Notifier {
	if out == nil {
		out = os.Stdout
	}
	return &Notifier{out: out}
}

// Silent returns a Notifier that discards all output.
func Silent() *Notifier {
	return &Notifier{out: io.Discard}
}

// Infof prints an informational message.
func (n *Notifier) Infof(format string, args ...any) {
	fmt.Fprintf(n.out, "%s %s\n", AccentStyle.Render(IconInfo), fmt.Sprintf(format, args...))
}

// Successf prints a success message.
func (n *Notifier) Successf(format string, args ...any) {
	fmt.Fprintf(n.out, "%s %s\n", PassStyle.Render(IconPass), fmt.Sprintf(format, args...))
}

// Warnf prints a warning message.
func (n *Notifier) Warnf(format string, args ...any) {
	fmt.Fprintf(n.out, "%s %s\n", WarnStyle.Render(IconWarn), fmt.Sprintf(format, args...))
}

// Failf prints a failure message.
func (n *Notifier) Failf(format string, args ...any) {
	fmt.Fprintf(n.out, "%s %s\n", FailStyle.Render(IconFail), fmt.Sprintf(format, args...))
}

// Skipf prints a message about work that was skipped.
func (n *Notifier) Skipf(format string, args ...any) {
	fmt.Fprintf(n.out, "%s %s\n", MutedStyle.Render(IconSkip), MutedStyle.Render(fmt.Sprintf(format, args...)))
}

// Stage prints a stage header separating the phases of a run.
func (n *Notifier) Stage(name string) {
	fmt.Fprintf(n.out, "\n%s\n%s\n", MutedStyle.Render(Separator), StageStyle.Render(strings.ToUpper(name)))
}

// Stepf announces a step about to run. Long descriptions are truncated
// so the announcement stays on one line.
func (n *Notifier) Stepf(index, total int, description string) {
	const maxDescription = 80
	fmt.Fprintf(n.out, "%s Step %d/%d: %s\n",
		AccentStyle.Render(IconStep), index, total, TruncateSimple(description, maxDescription))
}

// Markdown renders markdown to the writer via glamour.
func (n *Notifier) Markdown(md string) {
	fmt.Fprint(n.out, RenderMarkdown(md))
}

// Plainf prints an unstyled message.
func (n *Notifier) Plainf(format string, args ...any) {
	fmt.Fprintf(n.out, format+"\n", args...)
}
