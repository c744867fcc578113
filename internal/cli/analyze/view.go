package analyze

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/coral-mesh/futurescope/internal/analyzer"
)

var (
	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	failureStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// renderSummary prints the heading, the two summary lines and any failures.
func renderSummary(w io.Writer, runID string, s analyzer.Summary) error {
	var b strings.Builder

	b.WriteString(headingStyle.Render("Rust Future analysis complete."))
	b.WriteString("\n")
	b.WriteString(s.String())
	b.WriteString("\n")

	if len(s.Failures) > 0 {
		b.WriteString("\n")
		b.WriteString(failureStyle.Render(fmt.Sprintf("%d unit(s) failed:", len(s.Failures))))
		b.WriteString("\n")
		for _, f := range s.Failures {
			fmt.Fprintf(&b, "  - %s\n", f.Error())
		}
	}

	b.WriteString(hintStyle.Render("run " + runID))
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}
