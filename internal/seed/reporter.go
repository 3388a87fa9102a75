package seed

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Reporter receives user-facing progress from the pipeline.
type Reporter interface {
	Stage(msg string)
	Detail(label, value string)
	Warn(msg string)
	Success(msg string)
}

// ConsoleReporter prints progress lines, styled when w is a color terminal.
type ConsoleReporter struct {
	w       io.Writer
	stage   lipgloss.Style
	label   lipgloss.Style
	warn    lipgloss.Style
	success lipgloss.Style
}

// NewConsoleReporter returns a reporter writing to w.
func NewConsoleReporter(w io.Writer) *ConsoleReporter {
	r := lipgloss.NewRenderer(w)
	return &ConsoleReporter{
		w:       w,
		stage:   r.NewStyle().Foreground(lipgloss.Color("#5FAFFF")).Bold(true),
		label:   r.NewStyle().Foreground(lipgloss.Color("#888888")),
		warn:    r.NewStyle().Foreground(lipgloss.Color("#FFB000")),
		success: r.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true),
	}
}

func (c *ConsoleReporter) Stage(msg string) {
	fmt.Fprintf(c.w, "\n  %s\n", c.stage.Render("▸ "+msg))
}

func (c *ConsoleReporter) Detail(label, value string) {
	fmt.Fprintf(c.w, "    %s %s\n", c.label.Render(label+":"), value)
}

func (c *ConsoleReporter) Warn(msg string) {
	fmt.Fprintf(c.w, "    %s\n", c.warn.Render("! "+msg))
}

func (c *ConsoleReporter) Success(msg string) {
	fmt.Fprintf(c.w, "\n  %s\n", c.success.Render("✓ "+msg))
}

type nopReporter struct{}

func (nopReporter) Stage(string)          {}
func (nopReporter) Detail(string, string) {}
func (nopReporter) Warn(string)           {}
func (nopReporter) Success(string)        {}
