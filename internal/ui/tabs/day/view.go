package day

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/glucodash/internal/models"
	"github.com/j-veylop/glucodash/internal/services/daydata"
	"github.com/j-veylop/glucodash/internal/ui/components"
	"github.com/j-veylop/glucodash/internal/ui/styles"
)

const (
	chartHeight = 10
	minWidth    = 40
)

// View renders the day tab.
func (m *Model) View() string {
	snap := m.state.GetSnapshot()
	if snap.State == daydata.StateIdle && m.state.IsInitialLoading() {
		return components.RenderSpinnerCentered(m.spinner, "", m.width, m.height)
	}

	if m.width > 0 && m.width < minWidth {
		return dayLine(snap)
	}

	var sections []string
	sections = append(sections, m.renderTitle(snap))

	if snap.State == daydata.StateFailed {
		sections = append(sections, m.renderError(snap))
	}

	sections = append(sections, m.renderSummary(snap))
	sections = append(sections, m.renderChart(snap))
	sections = append(sections, m.renderCoverage(snap))

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) cardWidth() int {
	return max(m.width-6, 40)
}

func (m *Model) renderTitle(snap daydata.Snapshot) string {
	day := snap.Controls.SelectedDate
	if day == "" {
		day = "-"
	}
	title := styles.TitleStyle.Render("Day " + day)

	var status string
	switch snap.State {
	case daydata.StateLoading:
		status = m.spinner.Status(snap.Controls.SelectedDate)
	case daydata.StateFailed:
		status = styles.ErrorTextStyle.Render("Load failed")
	case daydata.StateReady:
		status = styles.SuccessTextStyle.Render("Updated " + snap.UpdatedAt.Format("15:04:05"))
	default:
		status = styles.HelpStyle.Render("Idle")
	}

	if r := snap.Range; r != nil {
		zone := fmt.Sprintf("%s (UTC%s)", r.TimezoneName, formatOffset(r.TimezoneOffsetMinutes))
		status += styles.HelpStyle.Render("  " + zone)
		if r.IsDSTTransition {
			status += " " + styles.WarningTextStyle.Render("DST change")
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, status, "")
}

func (m *Model) renderError(snap daydata.Snapshot) string {
	msg := "unknown error"
	if snap.Err != nil {
		msg = snap.Err.Error()
	}
	return styles.CardStyle.
		BorderForeground(styles.ColorError).
		Width(m.cardWidth()).
		Render(styles.ErrorTextStyle.Render(msg))
}

func (m *Model) renderSummary(snap daydata.Snapshot) string {
	s := snap.Summary()
	target := snap.Controls.Target

	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Summary"))

	if s.Count == 0 {
		rows = append(rows, styles.HelpStyle.Render("No sensor readings"))
	} else {
		latest := styles.GetRangeStyle(s.LatestValue, target.Low, target.High).
			Render(fmt.Sprintf("%.0f mg/dL", s.LatestValue))
		at := localTime(s.LatestTimestamp, snap.Range).Format("15:04")
		rows = append(rows, row("Latest", fmt.Sprintf("%s at %s", latest, at)))
		rows = append(rows, row("Mean", fmt.Sprintf("%.0f mg/dL", s.Mean)))
		rows = append(rows, row("Min / Max", fmt.Sprintf("%.0f / %.0f", s.Min, s.Max)))
		rows = append(rows, row("Readings", fmt.Sprintf("%d", s.Count)))
		rows = append(rows, row("Target", fmt.Sprintf("%.0f-%.0f mg/dL", target.Low, target.High)))

		bar := components.RenderRangeBar(s.TimeBelowRange, s.TimeInRange, s.TimeAboveRange, 30)
		pct := fmt.Sprintf(" %s %s %s",
			styles.LowStyle.Render(fmt.Sprintf("%.0f%%", s.TimeBelowRange)),
			styles.InRangeStyle.Render(fmt.Sprintf("%.0f%%", s.TimeInRange)),
			styles.HighStyle.Render(fmt.Sprintf("%.0f%%", s.TimeAboveRange)),
		)
		rows = append(rows, row("Time in range", bar+pct))
	}

	meals := fmt.Sprintf("%d (%.0f g carbs)", s.MealCount, s.TotalCarbs)
	if s.UnplaceableMeals > 0 {
		meals += " " + styles.WarningTextStyle.Render(fmt.Sprintf("%d without time", s.UnplaceableMeals))
	}
	rows = append(rows, row("Meals", meals))

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderChart(snap daydata.Snapshot) string {
	c := snap.Controls
	chartWidth := max(m.cardWidth()-14, 24)

	var sensor, manual, meals []models.Record
	if c.ShowSensor {
		sensor = snap.Records.Sensor
	}
	if c.ShowManual {
		manual = snap.Records.Manual
	}
	if c.ShowMeals {
		meals = snap.Records.Meals
	}

	legend := components.RenderLegend([]components.LegendItem{
		{Label: "Sensor", Color: styles.ColorSensor, Hidden: !c.ShowSensor},
		{Label: "Manual", Color: styles.ColorManual, Hidden: !c.ShowManual},
		{Label: "Meals", Color: styles.ColorMeal, Hidden: !c.ShowMeals},
	})

	chart := components.RenderDayChart(sensor, manual, chartWidth, chartHeight, "")
	offset := axisOffset(sensor, manual)

	rows := []string{
		styles.CardTitleStyle.Render("Glucose (mg/dL)"),
		legend,
		"",
		chart,
	}
	if len(meals) > 0 {
		rows = append(rows, components.RenderMealMarkers(meals, chartWidth, offset))
	}
	rows = append(rows, styles.HelpStyle.Render(components.RenderHourAxis(chartWidth, offset)))

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderCoverage(snap daydata.Snapshot) string {
	rows := []string{styles.CardTitleStyle.Render("Sensor coverage")}
	if snap.Quality == nil {
		rows = append(rows, styles.HelpStyle.Render("Not analyzed yet"))
	} else {
		d := snap.Quality.Density
		rows = append(rows, m.coverage.View(d.CoveragePercent, "Density", m.cardWidth()-4))
		rows = append(rows, styles.HelpStyle.Render(
			fmt.Sprintf("%d of %d expected samples, %d findings (see Quality tab)",
				d.Actual, d.Expected, snap.Quality.IssueCount())))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func row(label, value string) string {
	return styles.LabelStyle.Render(label+":") + " " + styles.ValueStyle.Render(value)
}

// axisOffset approximates the width of the chart's y-axis labels.
func axisOffset(series ...[]models.Record) int {
	widest := 0.0
	for _, recs := range series {
		for _, r := range recs {
			widest = max(widest, r.Value)
		}
	}
	return len(fmt.Sprintf("%.2f", widest)) + 2
}

func localTime(ms int64, r *models.DateRange) time.Time {
	t := time.UnixMilli(ms).UTC()
	if r == nil {
		return t
	}
	return t.In(time.FixedZone(r.TimezoneName, r.TimezoneOffsetMinutes*60))
}

func formatOffset(minutes int) string {
	sign := "+"
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	return fmt.Sprintf("%s%02d:%02d", sign, minutes/60, minutes%60)
}

// dayLine renders a compact one-line status for terminals too narrow for cards.
func dayLine(snap daydata.Snapshot) string {
	parts := []string{snap.Controls.SelectedDate, snap.State.String()}
	if n := snap.Records.Count(); n > 0 {
		parts = append(parts, fmt.Sprintf("%d records", n))
	}
	return strings.Join(parts, " ")
}
