package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tempsense/tempsense/internal/display"
)

// PreviewWidth is the inner width of the simulated screen.
const PreviewWidth = 28

// RenderPreview draws the simulated device screen: top line, middle line,
// and the marquee line when it is visible.
func RenderPreview(p display.Preview) string {
	center := lipgloss.NewStyle().Width(PreviewWidth).Align(lipgloss.Center)

	lines := []string{
		center.Render(LCDTextStyle.Render(p.TopText)),
		center.Render(LCDTextStyle.Render(p.MiddleText)),
	}
	if p.MarqueeVisible {
		text := p.MarqueeText
		if p.DotsVisible {
			text = "· " + text + " ·"
		}
		lines = append(lines, center.Render(StepNoteStyle.Render(truncate(text, PreviewWidth))))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

// PreviewLines returns the preview as plain text lines for non-TTY output.
func PreviewLines(p display.Preview) []string {
	lines := []string{"top:     " + p.TopText, "middle:  " + p.MiddleText}
	if p.MarqueeVisible {
		lines = append(lines, "marquee: "+p.MarqueeText)
	}
	return lines
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
