package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/jfoltran/gallery/internal/lister"
)

var (
	previewStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#7C3AED")).
			Padding(1, 2)
	previewTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A78BFA"))
	previewLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// RenderPreview draws the detail box for an opened image, centred in a
// width x height area. width and height of the image itself are zero when
// unknown.
func RenderPreview(img lister.Descriptor, url string, imgWidth, imgHeight, width, height int) string {
	size := "unknown"
	if imgWidth > 0 && imgHeight > 0 {
		size = fmt.Sprintf("%d × %d px", imgWidth, imgHeight)
	}
	title := img.Title
	if title == "" {
		title = img.Alt
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		previewTitleStyle.Render(title),
		"",
		previewLabelStyle.Render("Source: ")+url,
		previewLabelStyle.Render("Alt:    ")+img.Alt,
		previewLabelStyle.Render("Size:   ")+size,
		"",
		previewLabelStyle.Render("esc: close"),
	)
	maxW := width - 4
	if maxW < 10 {
		maxW = 10
	}
	box := previewStyle.MaxWidth(maxW).Render(content)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
