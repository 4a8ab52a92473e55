// Package ui renders styled console output for the CLI.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Color palette
	primaryColor   = lipgloss.Color("#7D56F4") // Purple
	secondaryColor = lipgloss.Color("#00D9FF") // Cyan
	successColor   = lipgloss.Color("#04B575") // Green
	errorColor     = lipgloss.Color("#FF5F87") // Pink/Red
	warningColor   = lipgloss.Color("#FFAF00") // Orange
	mutedColor     = lipgloss.Color("#626262") // Gray

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginTop(1).
			MarginBottom(1).
			PaddingLeft(1)

	successStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	infoStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	checkmark = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true).
			SetString("✓")

	cross = lipgloss.NewStyle().
		Foreground(errorColor).
		Bold(true).
		SetString("✗")

	arrow = lipgloss.NewStyle().
		Foreground(secondaryColor).
		SetString("→")

	stepStyle = lipgloss.NewStyle().
			PaddingLeft(2)
)

// PrintTitle prints a major title.
func PrintTitle(title string) {
	fmt.Println(titleStyle.Render("╭─ " + title + " ─╮"))
}

// PrintStep prints a step with indentation.
func PrintStep(step string) {
	fmt.Println(stepStyle.Render(arrow.String() + " " + step))
}

// PrintSuccess prints a success message.
func PrintSuccess(message string) {
	fmt.Println(stepStyle.Render(checkmark.String() + " " + successStyle.Render(message)))
}

// PrintError prints an error message.
func PrintError(message string) {
	fmt.Println(stepStyle.Render(cross.String() + " " + errorStyle.Render(message)))
}

// PrintWarning prints a warning message.
func PrintWarning(message string) {
	fmt.Println(stepStyle.Render("⚠ " + warningStyle.Render(message)))
}

// PrintInfo prints an info message.
func PrintInfo(message string) {
	fmt.Println(stepStyle.Render(infoStyle.Render(message)))
}

// PrintKeyValue prints a key-value pair.
func PrintKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().
		Foreground(secondaryColor).
		Bold(true)
	fmt.Println(stepStyle.Render(keyStyle.Render(key+":") + " " + value))
}

var tableWidths = []int{16, 12, 26, 12}

// PrintTableHeader prints a table header row with a separator line.
func PrintTableHeader(headers ...string) {
	headerStyle := lipgloss.NewStyle().
		Foreground(secondaryColor).
		Bold(true)
	fmt.Println(stepStyle.Render(headerStyle.Render(renderRow(headers))))

	separator := ""
	for i := range headers {
		if i >= len(tableWidths) {
			break
		}
		separator += strings.Repeat("─", tableWidths[i])
		if i < len(headers)-1 {
			separator += "─┼─"
		}
	}
	fmt.Println(stepStyle.Render(infoStyle.Render(separator)))
}

// PrintTableRow prints a formatted table row.
func PrintTableRow(columns ...string) {
	if len(columns) == 0 {
		return
	}
	fmt.Println(stepStyle.Render(renderRow(columns)))
}

func renderRow(columns []string) string {
	row := ""
	for i, col := range columns {
		if i >= len(tableWidths) {
			break
		}
		w := tableWidths[i]
		if len(col) > w {
			col = col[:w-3] + "..."
		} else {
			col = col + strings.Repeat(" ", w-len(col))
		}
		row += col
		if i < len(columns)-1 {
			row += " │ "
		}
	}
	return row
}
