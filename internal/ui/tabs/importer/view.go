package importer

import (
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/glucodash/internal/app"
	"github.com/j-veylop/glucodash/internal/ui/styles"
)

const (
	minColumnWidth = 8
	maxColumnWidth = 28
	maxGapsListed  = 10
)

// View renders the import tab.
func (m *Model) View() string {
	var sections []string

	sections = append(sections, m.renderTitle())
	sections = append(sections, m.renderFiles())

	export := m.state.GetExport()
	if export.File != nil {
		sections = append(sections, m.renderExport(export))
		if export.Gaps != nil {
			sections = append(sections, m.renderGaps(export))
		}
		if export.Coverage != nil {
			sections = append(sections, m.renderCoverage(*export.Coverage))
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) cardWidth() int {
	return max(m.width-6, 60)
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Import")
	dir, files := m.state.GetImportFiles()

	subtitle := styles.HelpStyle.Render(fmt.Sprintf("%d database exports in %s", len(files), dir))
	if slices.Contains(m.state.GetLoadingResources(), app.ResourceExport) {
		subtitle += "  " + m.spinner.Status("")
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) renderFiles() string {
	dir, files := m.state.GetImportFiles()
	export := m.state.GetExport()

	rows := []string{styles.CardTitleStyle.Render("Files")}
	if len(files) == 0 {
		rows = append(rows,
			styles.HelpStyle.Render("No exports found"),
			styles.InfoTextStyle.Render("  ╰─▶ Copy a .db or .sqlite export into "+dir),
		)
		return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	for i, f := range files {
		line := fmt.Sprintf("%-32s %10s  %s",
			f.Name,
			humanize.Bytes(uint64(max(f.Size, 0))),
			humanize.Time(time.UnixMilli(f.ModTime)),
		)
		if export.File != nil && export.File.Path == f.Path {
			line += "  " + styles.SuccessTextStyle.Render("open")
		}
		if i == m.selected {
			rows = append(rows, styles.SelectedListItemStyle.Render("> "+line))
		} else {
			rows = append(rows, styles.ListItemStyle.Render(line))
		}
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderExport(export app.ExportView) string {
	rows := []string{styles.CardTitleStyle.Render(export.File.Name)}

	var names []string
	for _, t := range export.Tables {
		label := fmt.Sprintf("%s (%d)", t.Name, t.RowCount)
		if t.Name == export.Table {
			label = styles.SelectedListItemStyle.Render("[" + label + "]")
		} else {
			label = styles.HelpStyle.Render(" " + label + " ")
		}
		names = append(names, label)
	}
	if len(names) == 0 {
		rows = append(rows, styles.HelpStyle.Render("No user tables"))
		return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}
	rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, names...), "")

	if export.Table != "" {
		p := export.Page
		rows = append(rows, m.pageTable(export).View())
		rows = append(rows, styles.HelpStyle.Render(fmt.Sprintf("Page %d of %d, %d rows",
			p.PageNumber, max(p.TotalPages(), 1), p.TotalRows)))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// pageTable builds a table widget for the current page using the table's declared columns.
func (m *Model) pageTable(export app.ExportView) table.Model {
	names := columnNames(export)
	width := min(max((m.cardWidth()-4)/max(len(names), 1)-2, minColumnWidth), maxColumnWidth)

	columns := make([]table.Column, len(names))
	for i, n := range names {
		columns[i] = table.Column{Title: n, Width: width}
	}

	rows := make([]table.Row, 0, len(export.Page.Rows))
	for _, r := range export.Page.Rows {
		cells := make(table.Row, len(names))
		for i, n := range names {
			cells[i] = formatCell(r[n])
		}
		rows = append(rows, cells)
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+2),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.ColorPrimary)
	s.Selected = lipgloss.NewStyle()
	t.SetStyles(s)
	return t
}

func columnNames(export app.ExportView) []string {
	for _, t := range export.Tables {
		if t.Name != export.Table || len(t.Columns) == 0 {
			continue
		}
		names := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			names[i] = c.Name
		}
		return names
	}

	// Fall back to the keys of the first row.
	var names []string
	if len(export.Page.Rows) > 0 {
		for k := range export.Page.Rows[0] {
			names = append(names, k)
		}
		sort.Strings(names)
	}
	return names
}

func formatCell(v any) string {
	switch v := v.(type) {
	case nil:
		return "NULL"
	case []byte:
		return fmt.Sprintf("<%d bytes>", len(v))
	case float64:
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprint(v)
	}
}

func (m *Model) renderGaps(export app.ExportView) string {
	rows := []string{styles.CardTitleStyle.Render(fmt.Sprintf("Gaps in %s (%d)", export.Table, len(export.Gaps)))}
	if len(export.Gaps) == 0 {
		rows = append(rows, styles.SuccessTextStyle.Render("No gaps found"))
	}
	for i, g := range export.Gaps {
		if i == maxGapsListed {
			rows = append(rows, styles.HelpStyle.Render(fmt.Sprintf("... %d more", len(export.Gaps)-maxGapsListed)))
			break
		}
		rows = append(rows, fmt.Sprintf("  %s → %s  %s",
			time.UnixMilli(g.StartTime).UTC().Format(time.DateTime),
			time.UnixMilli(g.EndTime).UTC().Format(time.DateTime),
			styles.WarningTextStyle.Render(fmt.Sprintf("%.0f min", g.DurationMinutes)),
		))
	}
	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderCoverage(c app.ExportCoverage) string {
	q := c.Quality
	rows := []string{
		styles.CardTitleStyle.Render(fmt.Sprintf("%s vs %s", c.Table, c.DayKey)),
		row("Rows read", fmt.Sprintf("%d (%d rejected)", c.Total, c.Rejected)),
		row("In day window", fmt.Sprintf("%d", c.Records)),
		row("Density", fmt.Sprintf("%d of %d expected (%.1f%%)",
			q.Density.Actual, q.Density.Expected, q.Density.CoveragePercent)),
		row("Gaps", fmt.Sprintf("%d", len(q.Gaps))),
		row("Anomalies", fmt.Sprintf("%d", len(q.Anomalies))),
	}
	if longest, ok := q.LongestGap(); ok {
		rows = append(rows, row("Longest gap", fmt.Sprintf("%.0f min", longest.DurationMinutes)))
	}
	return styles.CardStyle.Width(m.cardWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func row(label, value string) string {
	return styles.LabelStyle.Render(label+":") + " " + styles.ValueStyle.Render(value)
}
