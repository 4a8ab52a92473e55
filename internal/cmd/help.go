package cmd

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderSplitHelp renders the help text for the split command with lipgloss
// styling.
func renderSplitHelp() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		MarginTop(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("10"))

	commandStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("14"))

	commentStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Italic(true)

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(titleStyle.Render("Examples"))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Split a model to 2 feet tall for a 300mm bed"))
	b.WriteString("\n")
	b.WriteString("  " + commandStyle.Render("makeitbig split statue.stl"))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("A 6 foot prop on a 220mm bed, height along Y"))
	b.WriteString("\n")
	b.WriteString("  " + commandStyle.Render("makeitbig split -H 6 -a y -b 220 -m 10 prop.stl -o prop_pieces.zip"))
	b.WriteString("\n\n")

	b.WriteString(sectionStyle.Render("Parameters"))
	b.WriteString("\n")

	params := []struct {
		flag string
		desc string
	}{
		{"-H FEET", "Target height of the assembled model, in feet"},
		{"-a AXIS", "Axis measured as height (x, y or z)"},
		{"-b MM", "Printer bed size in millimeters"},
		{"-m MM", "Safety margin kept free on every side of the bed"},
	}
	maxWidth := 0
	for _, p := range params {
		if len(p.flag) > maxWidth {
			maxWidth = len(p.flag)
		}
	}
	for _, p := range params {
		padding := strings.Repeat(" ", maxWidth-len(p.flag)+2)
		b.WriteString("  " + commandStyle.Render(p.flag) + padding + commentStyle.Render(p.desc))
		b.WriteString("\n")
	}

	return b.String()
}
