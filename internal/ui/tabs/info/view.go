package info

import (
	"fmt"
	"net/url"
	"runtime"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/glucodash/internal/config"
	"github.com/j-veylop/glucodash/internal/ui/styles"
	"github.com/j-veylop/glucodash/internal/version"
)

// View renders the info tab.
func (m *Model) View() string {
	var sections []string

	// Title
	sections = append(sections, m.renderTitle())

	// Configuration card
	sections = append(sections, m.renderConfigCard())

	// Quality profile card
	if m.config != nil {
		sections = append(sections, m.renderProfileCard(m.config.Profile))
	}

	// About card
	sections = append(sections, m.renderAboutCard())

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) cardWidth() int {
	return min(max(m.width-6, 50), 80)
}

// renderTitle renders the info tab title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Configuration and application information")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

// renderConfigCard renders the configuration card.
func (m *Model) renderConfigCard() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Configuration"))
	rows = append(rows, "")

	if cfg := m.config; cfg != nil {
		rows = append(rows, renderConfigRow("Nightscout", redactURL(cfg.NightscoutURL)))
		rows = append(rows, renderConfigRow("Auth", authMode(cfg)))
		rows = append(rows, renderConfigRow("Timezone", timezone(cfg)))
		rows = append(rows, renderConfigRow("Target", fmt.Sprintf("%.0f-%.0f mg/dL", cfg.Target.Low, cfg.Target.High)))
		rows = append(rows, renderConfigRow("Refresh", orOff(cfg.RefreshInterval.String(), cfg.RefreshInterval > 0)))
		rows = append(rows, renderConfigRow("Request timeout", cfg.RequestTimeout.String()))
		rows = append(rows, renderConfigRow("Import dir", cfg.ImportDir))
		rows = append(rows, renderConfigRow("Log file", orOff(cfg.LogFile, cfg.LogFile != "")))
		rows = append(rows, "")
		rows = append(rows, styles.HelpStyle.Render("Press 'c' to copy the import directory"))
	} else {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) renderProfileCard(p config.QualityProfile) string {
	source := "built-in defaults"
	if m.config.QualityProfilePath != "" {
		source = m.config.QualityProfilePath
	}

	rows := []string{
		styles.CardTitleStyle.Render("Quality profile"),
		"",
		renderConfigRow("Source", source),
		renderConfigRow("Gap threshold", p.GapThreshold.String()),
		renderConfigRow("Plausible range", fmt.Sprintf("%.0f-%.0f mg/dL", p.PlausibleMin, p.PlausibleMax)),
		renderConfigRow("Samples per day", fmt.Sprintf("%d", p.BaselineSamplesPerDay)),
		renderConfigRow("Export gap scan", fmt.Sprintf("%.0f min", p.ScanGapMinutes)),
	}
	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderConfigRow renders a configuration key-value row.
func renderConfigRow(label, value string) string {
	return styles.LabelStyle.Render(label+":") + " " + styles.ValueStyle.Render(value)
}

// renderAboutCard renders the about/version information card.
func (m *Model) renderAboutCard() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("About glucodash"))
	rows = append(rows, "")

	rows = append(rows, renderConfigRow("Version", version.GetVersion()))
	rows = append(rows, renderConfigRow("Build Date", version.GetDate()))
	rows = append(rows, renderConfigRow("Git Commit", version.GetCommit()))
	rows = append(rows, renderConfigRow("Go Version", runtime.Version()))
	rows = append(rows, renderConfigRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)))
	rows = append(rows, "")

	_, files := m.state.GetImportFiles()
	rows = append(rows, fmt.Sprintf("Exports: %s", styles.InfoTextStyle.Render(fmt.Sprintf("%d", len(files)))))

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// redactURL drops credentials and query parameters from a URL for display.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	u.User = nil
	u.RawQuery = ""
	return u.String()
}

func authMode(cfg *config.Config) string {
	switch {
	case cfg.NightscoutToken != "":
		return "access token"
	case cfg.NightscoutAPISecret != "":
		return "API secret"
	default:
		return "none"
	}
}

func timezone(cfg *config.Config) string {
	tz := cfg.Timezone
	name := tz.ZoneName
	if tz.UseHostZone || name == "" {
		name = "host zone"
	}
	if tz.OffsetOverrideMinutes != nil {
		return fmt.Sprintf("%s, offset override %d min", name, *tz.OffsetOverrideMinutes)
	}
	return name
}

func orOff(value string, on bool) string {
	if !on {
		return "off"
	}
	return value
}
