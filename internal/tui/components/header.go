package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	headerValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
)

// HeaderStats is what the status bar shows.
type HeaderStats struct {
	Images  int
	Loaded  int
	Columns int
	Source  string
}

// RenderHeader renders the status bar with image counts and the column count.
func RenderHeader(st HeaderStats, width int) string {
	left := fmt.Sprintf("  %s %s    %s %s",
		headerLabelStyle.Render("Images:"),
		headerValueStyle.Render(fmt.Sprintf("%d", st.Images)),
		headerLabelStyle.Render("Loaded:"),
		headerValueStyle.Render(fmt.Sprintf("%d/%d", st.Loaded, st.Images)))

	right := fmt.Sprintf("%s %s    %s %s  ",
		headerLabelStyle.Render("Columns:"),
		headerValueStyle.Render(fmt.Sprintf("%d", st.Columns)),
		headerLabelStyle.Render("Source:"),
		headerValueStyle.Render(st.Source))

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return left + strings.Repeat(" ", gap) + right
}
