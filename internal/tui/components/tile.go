package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jfoltran/gallery/internal/lister"
)

var (
	tileStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#374151"))

	tileSelectedStyle = lipgloss.NewStyle().
				Border(lipgloss.ThickBorder()).
				BorderForeground(lipgloss.Color("#A78BFA"))

	tileCaptionStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF"))
	tileFillStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6"))
	tilePendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	tileCompactStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
	tileCompactSelect = lipgloss.NewStyle().Bold(true).Reverse(true)
)

// Tile describes one gallery item to draw.
type Tile struct {
	Image    lister.Descriptor
	Loaded   bool
	Selected bool
}

// RenderTile draws t exactly width cells wide and height lines tall. Tiles
// too short for a border collapse to a caption line.
func RenderTile(t Tile, width, height int) string {
	if width < 1 || height < 1 {
		return ""
	}
	caption := t.Image.Title
	if caption == "" {
		caption = t.Image.Alt
	}

	if height < 3 || width < 3 {
		style := tileCompactStyle
		if t.Selected {
			style = tileCompactSelect
		}
		line := style.MaxWidth(width).Render(caption)
		lines := []string{lipgloss.PlaceHorizontal(width, lipgloss.Left, line)}
		for len(lines) < height {
			lines = append(lines, strings.Repeat(" ", width))
		}
		return strings.Join(lines, "\n")
	}

	inner := width - 2
	body := []string{tileCaptionStyle.MaxWidth(inner).Render(caption)}
	fill, style := "░", tileFillStyle
	if !t.Loaded {
		fill, style = "·", tilePendingStyle
	}
	for len(body) < height-2 {
		body = append(body, style.Render(strings.Repeat(fill, inner)))
	}

	box := tileStyle
	if t.Selected {
		box = tileSelectedStyle
	}
	return box.Width(inner).Height(height - 2).MaxHeight(height).Render(strings.Join(body, "\n"))
}
