package quality

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/glucodash/internal/models"
	"github.com/j-veylop/glucodash/internal/services/daydata"
	"github.com/j-veylop/glucodash/internal/ui/components"
	"github.com/j-veylop/glucodash/internal/ui/styles"
)

// maxListed bounds how many gaps or anomalies are listed individually.
const maxListed = 20

// View renders the quality tab.
func (m *Model) View() string {
	snap := m.state.GetSnapshot()

	var sections []string
	sections = append(sections, m.renderTitle(snap))

	q := snap.Quality
	if q == nil {
		sections = append(sections, styles.HelpStyle.Render("No quality report for this day yet."))
	} else {
		sections = append(sections, m.renderWindow(snap.Range))
		sections = append(sections, m.renderDensity(snap, q))
		sections = append(sections, m.renderGaps(q, snap.Range))
		sections = append(sections, m.renderAnomalies(q, snap.Range))
		sections = append(sections, m.renderTimezone(q))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) cardWidth() int {
	return min(max(m.width-6, 50), 100)
}

func (m *Model) card(rows ...string) string {
	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderTitle(snap daydata.Snapshot) string {
	title := styles.TitleStyle.Render("Data Quality")

	var summary string
	if q := snap.Quality; q != nil {
		n := q.IssueCount()
		if n == 0 {
			summary = styles.SuccessTextStyle.Render("No issues found for " + snap.Controls.SelectedDate)
		} else {
			summary = styles.WarningTextStyle.Render(fmt.Sprintf("%d findings for %s", n, snap.Controls.SelectedDate))
		}
	} else {
		summary = styles.HelpStyle.Render(snap.State.String())
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, summary, "")
}

func (m *Model) renderWindow(r *models.DateRange) string {
	rows := []string{styles.CardTitleStyle.Render("Fetch window")}
	if r == nil {
		return m.card(append(rows, styles.HelpStyle.Render("Not resolved"))...)
	}
	rows = append(rows,
		row("Local day", fmt.Sprintf("%s → %s", r.LocalDayStart.Format(time.DateTime), r.LocalDayEnd.Format(time.DateTime))),
		row("Fetched (UTC)", fmt.Sprintf("%s → %s", r.FetchStartUTC.Format(time.DateTime), r.FetchEndUTC.Format(time.DateTime))),
		row("Timezone", fmt.Sprintf("%s, offset %d min", r.TimezoneName, r.TimezoneOffsetMinutes)),
		row("Days fetched", fmt.Sprintf("%d", r.DaysToFetch)),
	)
	if r.IsDSTTransition {
		rows = append(rows, row("DST", styles.WarningTextStyle.Render("transition in window")))
	}
	return m.card(rows...)
}

func (m *Model) renderDensity(snap daydata.Snapshot, q *models.QualityReport) string {
	d := q.Density
	ratio := 0.0
	if d.Expected > 0 {
		ratio = float64(d.Actual) / float64(d.Expected)
	}
	pct := styles.GetCoverageStyle(ratio).Render(fmt.Sprintf("%.1f%%", d.CoveragePercent))

	expectedPerHour := d.Expected / components.HoursPerDay
	return m.card(
		styles.CardTitleStyle.Render("Sample density"),
		row("Samples", fmt.Sprintf("%d of %d expected (%s)", d.Actual, d.Expected, pct)),
		row("By hour", components.RenderHourlyCoverage(snap.Records.Sensor, expectedPerHour)),
	)
}

func (m *Model) renderGaps(q *models.QualityReport, r *models.DateRange) string {
	rows := []string{styles.CardTitleStyle.Render(fmt.Sprintf("Gaps (%d)", len(q.Gaps)))}
	if len(q.Gaps) == 0 {
		return m.card(append(rows, styles.SuccessTextStyle.Render("No gaps above threshold"))...)
	}

	if longest, ok := q.LongestGap(); ok {
		rows = append(rows, row("Longest", formatMinutes(longest.DurationMinutes)))
	}
	for i, g := range q.Gaps {
		if i == maxListed {
			rows = append(rows, styles.HelpStyle.Render(fmt.Sprintf("... %d more", len(q.Gaps)-maxListed)))
			break
		}
		rows = append(rows, fmt.Sprintf("  %s → %s  %s",
			local(g.Start, r).Format("15:04"),
			local(g.End, r).Format("15:04"),
			styles.WarningTextStyle.Render(formatMinutes(g.DurationMinutes)),
		))
	}
	return m.card(rows...)
}

func (m *Model) renderAnomalies(q *models.QualityReport, r *models.DateRange) string {
	rows := []string{styles.CardTitleStyle.Render(fmt.Sprintf("Anomalies (%d)", len(q.Anomalies)))}
	if len(q.Anomalies) == 0 {
		return m.card(append(rows, styles.SuccessTextStyle.Render("All readings plausible"))...)
	}

	for i, a := range q.Anomalies {
		if i == maxListed {
			rows = append(rows, styles.HelpStyle.Render(fmt.Sprintf("... %d more", len(q.Anomalies)-maxListed)))
			break
		}
		at := local(time.UnixMilli(a.Timestamp), r).Format("15:04")
		rows = append(rows, fmt.Sprintf("  %s  %-7s %s  %s",
			at, a.Kind.String(),
			styles.ErrorTextStyle.Render(fmt.Sprintf("%6.0f", a.Value)),
			styles.HelpStyle.Render(a.Reason),
		))
	}
	return m.card(rows...)
}

func (m *Model) renderTimezone(q *models.QualityReport) string {
	rows := []string{styles.CardTitleStyle.Render(fmt.Sprintf("Timezone (%d)", len(q.TimezoneIssues)))}
	if len(q.TimezoneIssues) == 0 {
		return m.card(append(rows, styles.SuccessTextStyle.Render("No timezone issues"))...)
	}
	for _, issue := range q.TimezoneIssues {
		rows = append(rows, fmt.Sprintf("  %s %s",
			styles.WarningTextStyle.Render("["+string(issue.Type)+"]"),
			issue.Description,
		))
	}
	return m.card(rows...)
}

func row(label, value string) string {
	return styles.LabelStyle.Render(label+":") + " " + styles.ValueStyle.Render(value)
}

func local(t time.Time, r *models.DateRange) time.Time {
	if r == nil {
		return t.UTC()
	}
	return t.In(time.FixedZone(r.TimezoneName, r.TimezoneOffsetMinutes*60))
}

func formatMinutes(minutes float64) string {
	d := time.Duration(minutes * float64(time.Minute)).Round(time.Minute)
	h := int(d.Hours())
	mm := int(d.Minutes()) % 60
	if h == 0 {
		return fmt.Sprintf("%dm", mm)
	}
	return fmt.Sprintf("%dh %02dm", h, mm)
}
