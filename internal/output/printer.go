// Package output renders covcheck results for terminals using lipgloss.
//
// All human-facing output goes through a [Printer]. Styles adapt to the
// writer: color is only emitted when the writer is a color-capable terminal,
// so buffers used in tests receive plain text.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"covcheck/internal/connection"
	"covcheck/internal/stepworkflow"
)

// Printer writes styled output to a writer.
type Printer struct {
	out   io.Writer
	quiet bool

	ok      lipgloss.Style
	warn    lipgloss.Style
	fail    lipgloss.Style
	muted   lipgloss.Style
	heading lipgloss.Style
	box     lipgloss.Style
}

// NewPrinter creates a printer writing to stdout.
func NewPrinter() *Printer {
	return NewPrinterWithWriter(os.Stdout)
}

// NewPrinterWithWriter creates a printer writing to w.
func NewPrinterWithWriter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		out:     w,
		ok:      r.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		warn:    r.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		fail:    r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
		heading: r.NewStyle().Bold(true),
		box:     r.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	}
}

// SetQuiet suppresses progress lines.
func (p *Printer) SetQuiet(quiet bool) {
	p.quiet = quiet
}

// StepStart prints a progress line before a workflow step runs. Its
// signature matches [stepworkflow.ProgressCallback].
func (p *Printer) StepStart(stepIndex, totalSteps int, stepName string) {
	if p.quiet {
		return
	}
	fmt.Fprintf(p.out, "%s %s\n", p.muted.Render(fmt.Sprintf("[%d/%d]", stepIndex, totalSteps)), stepName)
}

// WorkflowSummary prints a boxed table of step records.
func (p *Printer) WorkflowSummary(records []stepworkflow.StepRecord) {
	if len(records) == 0 {
		return
	}
	var b strings.Builder
	b.WriteString(p.heading.Render("Steps"))
	for _, rec := range records {
		b.WriteString("\n")
		switch rec.Status {
		case stepworkflow.StepStatusOK:
			fmt.Fprintf(&b, "%s %s %s", p.ok.Render("✓"), rec.Name, p.muted.Render(rec.Duration.Round(time.Millisecond).String()))
		case stepworkflow.StepStatusFailed:
			fmt.Fprintf(&b, "%s %s", p.fail.Render("✗"), rec.Name)
			if rec.Err != "" {
				fmt.Fprintf(&b, ": %s", rec.Err)
			}
		default:
			fmt.Fprintf(&b, "%s %s %s", p.muted.Render("-"), rec.Name, p.muted.Render("skipped"))
		}
	}
	fmt.Fprintln(p.out, p.box.Render(b.String()))
}

// Outcome prints a connection outcome on one line per message line.
func (p *Printer) Outcome(out connection.Outcome) {
	var label string
	switch out.Kind {
	case connection.KindOK:
		label = p.ok.Render("OK")
	case connection.KindWarning:
		label = p.warn.Render("WARNING")
	default:
		label = p.fail.Render("ERROR")
	}
	if out.Message == "" {
		fmt.Fprintln(p.out, label)
		return
	}
	fmt.Fprintf(p.out, "%s %s\n", label, out.Message)
}

// Options prints selection options as "label  value" lines.
func (p *Printer) Options(opts []connection.Option) {
	for _, o := range opts {
		if o.Value == "" {
			fmt.Fprintln(p.out, p.muted.Render(o.Label))
			continue
		}
		fmt.Fprintln(p.out, o.Label)
	}
}

// List prints items one per line, or a muted placeholder when empty.
func (p *Printer) List(items []string, empty string) {
	if len(items) == 0 {
		fmt.Fprintln(p.out, p.muted.Render(empty))
		return
	}
	for _, it := range items {
		fmt.Fprintln(p.out, it)
	}
}

// IssueCount prints the result of an issue check.
func (p *Printer) IssueCount(count int) {
	if count == 0 {
		fmt.Fprintf(p.out, "%s no issues found\n", p.ok.Render("✓"))
		return
	}
	fmt.Fprintf(p.out, "%s %d issues found\n", p.warn.Render("!"), count)
}

// Error prints an error message.
func (p *Printer) Error(msg string) {
	fmt.Fprintf(p.out, "%s %s\n", p.fail.Render("✗"), msg)
}

// Info prints an informational message.
func (p *Printer) Info(msg string) {
	fmt.Fprintln(p.out, msg)
}
