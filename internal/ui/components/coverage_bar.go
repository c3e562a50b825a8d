package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/glucodash/internal/ui/styles"
)

// CoverageBar renders a percentage as a gradient progress bar with a label.
type CoverageBar struct {
	progress progress.Model
}

// NewCoverageBar creates a coverage bar going from red (empty) to green (full).
func NewCoverageBar() CoverageBar {
	p := progress.New(
		progress.WithScaledGradient("#ff6b6b", "#51cf66"),
		progress.WithWidth(30),
		progress.WithoutPercentage(),
	)
	return CoverageBar{progress: p}
}

// SetWidth sets the progress bar width.
func (c *CoverageBar) SetWidth(width int) {
	c.progress.Width = width
}

// View renders the bar with its label and percentage. Percent is clamped to [0, 100].
func (c CoverageBar) View(percent float64, label string, width int) string {
	percent = min(max(percent, 0), 100)

	// Reserve space for label and percentage
	c.progress.Width = max(width-24, 10)
	bar := c.progress.ViewAs(percent / 100)

	percentStr := styles.GetCoverageStyle(percent/100).
		Width(6).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("%.0f%%", percent))

	labelStr := styles.LabelStyle.Width(16).Render(label)

	return lipgloss.JoinHorizontal(lipgloss.Center, labelStr, bar, " ", percentStr)
}

// RenderRangeBar renders a stacked below/in/above bar for time-in-range percentages.
func RenderRangeBar(below, in, above float64, width int) string {
	width = max(width, 10)
	total := below + in + above
	if total <= 0 {
		return styles.UnknownStyle.Render(strings.Repeat("░", width))
	}

	belowW := int(below / total * float64(width))
	aboveW := int(above / total * float64(width))
	inW := max(width-belowW-aboveW, 0)

	return styles.LowStyle.Render(strings.Repeat("█", belowW)) +
		styles.InRangeStyle.Render(strings.Repeat("█", inW)) +
		styles.HighStyle.Render(strings.Repeat("█", aboveW))
}
