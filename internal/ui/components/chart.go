// Package components provides reusable UI components for the TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/glucodash/internal/models"
	"github.com/j-veylop/glucodash/internal/ui/styles"
)

// HoursPerDay is the length of the chart's x axis.
const HoursPerDay = 24

// BucketSeries averages placed records into buckets spanning the day's hours.
// Empty buckets carry the previous bucket's value so the line stays continuous;
// the second return value reports which buckets held real data.
func BucketSeries(records []models.Record, buckets int) ([]float64, []bool) {
	if buckets <= 0 {
		return nil, nil
	}

	sums := make([]float64, buckets)
	counts := make([]int, buckets)
	for _, r := range records {
		hour, ok := r.Hour()
		if !ok {
			continue
		}
		idx := int(hour / HoursPerDay * float64(buckets))
		idx = min(max(idx, 0), buckets-1)
		sums[idx] += r.Value
		counts[idx]++
	}

	series := make([]float64, buckets)
	filled := make([]bool, buckets)
	first := -1
	for i := range buckets {
		if counts[i] > 0 {
			series[i] = sums[i] / float64(counts[i])
			filled[i] = true
			if first < 0 {
				first = i
			}
			continue
		}
		if i > 0 {
			series[i] = series[i-1]
		}
	}
	if first < 0 {
		return nil, filled
	}
	for i := range first {
		series[i] = series[first]
	}
	return series, filled
}

// RenderDayChart plots sensor and manual readings over the hours of a day.
func RenderDayChart(sensor, manual []models.Record, width, height int, caption string) string {
	// Ensure minimum dimensions
	width = max(width, 24)
	height = max(height, 3)

	sensorSeries, _ := BucketSeries(sensor, width)
	manualSeries, _ := BucketSeries(manual, width)

	var data [][]float64
	var colors []asciigraph.AnsiColor
	if len(sensorSeries) > 0 {
		data = append(data, sensorSeries)
		colors = append(colors, asciigraph.Blue)
	}
	if len(manualSeries) > 0 {
		data = append(data, manualSeries)
		colors = append(colors, asciigraph.Red)
	}
	if len(data) == 0 {
		return styles.HelpStyle.Render("No readings for this day")
	}

	return asciigraph.PlotMany(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(colors...),
	)
}

// RenderHourAxis renders hour ticks aligned under a chart of the given width.
func RenderHourAxis(width, offset int) string {
	width = max(width, 24)
	axis := []rune(strings.Repeat(" ", width))
	for h := 0; h < HoursPerDay; h += 6 {
		label := fmt.Sprintf("%02d", h)
		pos := h * width / HoursPerDay
		for i, c := range label {
			if pos+i < len(axis) {
				axis[pos+i] = c
			}
		}
	}
	return strings.Repeat(" ", max(offset, 0)) + string(axis)
}

// RenderMealMarkers marks meal times on a line matching the chart's width.
// Meals without a usable time are left off the axis.
func RenderMealMarkers(meals []models.Record, width, offset int) string {
	width = max(width, 24)
	line := []rune(strings.Repeat(" ", width))
	for _, m := range meals {
		hour, ok := m.Hour()
		if !ok {
			continue
		}
		pos := min(int(hour/HoursPerDay*float64(width)), width-1)
		line[pos] = '▲'
	}
	marker := lipgloss.NewStyle().Foreground(styles.ColorMeal)
	return strings.Repeat(" ", max(offset, 0)) + marker.Render(string(line))
}

// CoverageBlocks are Unicode block characters for coverage strips (low to high).
var CoverageBlocks = []rune{'░', '▒', '▓', '█'}

// RenderHourlyCoverage renders one block per hour, shaded by how many samples
// arrived in that hour relative to the expected count.
func RenderHourlyCoverage(records []models.Record, expectedPerHour int) string {
	counts := make([]int, HoursPerDay)
	for _, r := range records {
		hour, ok := r.Hour()
		if !ok {
			continue
		}
		counts[min(int(hour), HoursPerDay-1)]++
	}
	expectedPerHour = max(expectedPerHour, 1)

	var result strings.Builder
	result.WriteString("00 ")

	for i, c := range counts {
		ratio := float64(c) / float64(expectedPerHour)
		intensity := int(ratio * float64(len(CoverageBlocks)-1))
		intensity = min(max(intensity, 0), len(CoverageBlocks)-1)

		var style lipgloss.Style
		switch {
		case c == 0:
			style = lipgloss.NewStyle().Foreground(styles.ColorError)
		default:
			style = styles.GetCoverageStyle(ratio)
		}
		result.WriteString(style.Render(string(CoverageBlocks[intensity])))

		// Add gap at noon for readability
		if i == 11 {
			result.WriteString(" ")
		}
	}

	result.WriteString(" 23")
	return result.String()
}

// RenderSparkline creates a compact inline sparkline chart.
func RenderSparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	sparkChars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	// Sample values to fit width
	var result strings.Builder
	step := max(float64(len(values))/float64(width), 1)

	for i := 0; i < width && int(float64(i)*step) < len(values); i++ {
		val := values[int(float64(i)*step)]
		normalized := int((val - lo) / span * float64(len(sparkChars)-1))
		normalized = min(max(normalized, 0), len(sparkChars)-1)
		result.WriteRune(sparkChars[normalized])
	}

	return result.String()
}

// RenderLegend creates a chart legend.
func RenderLegend(items []LegendItem) string {
	var parts []string
	for _, item := range items {
		colorBox := lipgloss.NewStyle().Foreground(item.Color).Render("■")
		label := item.Label
		if item.Hidden {
			label = styles.HelpStyle.Render(label + " (hidden)")
		}
		parts = append(parts, fmt.Sprintf("%s %s", colorBox, label))
	}
	return strings.Join(parts, "  ")
}

// LegendItem represents a single legend entry.
type LegendItem struct {
	Label  string
	Color  lipgloss.Color
	Hidden bool
}
