// Package styles defines the visual styling for the application.
package styles

import "github.com/charmbracelet/lipgloss"

// Color definitions for the dashboard theme.
var (
	// Primary colors
	ColorPrimary   = lipgloss.Color("39")  // Blue
	ColorSecondary = lipgloss.Color("63")  // Purple
	ColorMuted     = lipgloss.Color("240") // Gray

	// Series colors
	ColorSensor = lipgloss.Color("45")  // Cyan
	ColorManual = lipgloss.Color("213") // Pink
	ColorMeal   = lipgloss.Color("208") // Orange

	// Status colors
	ColorSuccess = lipgloss.Color("42")  // Green
	ColorError   = lipgloss.Color("196") // Red
	ColorWarning = lipgloss.Color("220") // Yellow
	ColorInfo    = lipgloss.Color("75")  // Light blue

	// Background colors
	BgDark   = lipgloss.Color("235")
	BgLight  = lipgloss.Color("237")
	BgAccent = lipgloss.Color("236")

	// Text colors
	TextPrimary   = lipgloss.Color("252")
	TextSecondary = lipgloss.Color("245")
	TextMuted     = lipgloss.Color("240")

	// ToastStyle for floating notifications.
	ToastStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorPrimary).
			Padding(0, 1).
			MarginBottom(1)
)

// TitleStyle is used for main headings.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorPrimary).
	MarginBottom(1)

// SubTitleStyle is used for section headings.
var SubTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorSecondary)

// CardStyle creates a bordered card container.
var CardStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorMuted).
	Padding(0, 1).
	MarginBottom(1)

// CardTitleStyle styles card headers.
var CardTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorPrimary)

// HelpStyle is the base style for help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(TextMuted)

// HelpPanelStyle creates the help overlay panel.
var HelpPanelStyle = lipgloss.NewStyle().
	Border(lipgloss.DoubleBorder()).
	BorderForeground(ColorPrimary).
	Padding(1, 3).
	Background(BgDark)

// LabelStyle styles field labels in key/value listings.
var LabelStyle = lipgloss.NewStyle().
	Foreground(TextSecondary).
	Width(18)

// ValueStyle styles field values in key/value listings.
var ValueStyle = lipgloss.NewStyle().
	Foreground(TextPrimary)

// ListItemStyle styles list items.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedListItemStyle styles selected list items.
var SelectedListItemStyle = lipgloss.NewStyle().
	Foreground(ColorPrimary).
	Bold(true)

// TableHeaderStyle styles table headers.
var TableHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorPrimary)

// TableCellStyle styles table cells.
var TableCellStyle = lipgloss.NewStyle().
	Foreground(TextPrimary)

// InRangeStyle for readings inside the target range.
var InRangeStyle = lipgloss.NewStyle().
	Foreground(ColorSuccess)

// HighStyle for readings above the target range.
var HighStyle = lipgloss.NewStyle().
	Foreground(ColorWarning).
	Bold(true)

// LowStyle for readings below the target range.
var LowStyle = lipgloss.NewStyle().
	Foreground(ColorError).
	Bold(true)

// UnknownStyle for missing readings.
var UnknownStyle = lipgloss.NewStyle().
	Foreground(ColorMuted)

// ErrorTextStyle for error messages.
var ErrorTextStyle = lipgloss.NewStyle().
	Foreground(ColorError)

// SuccessTextStyle for success messages.
var SuccessTextStyle = lipgloss.NewStyle().
	Foreground(ColorSuccess)

// WarningTextStyle for warning messages.
var WarningTextStyle = lipgloss.NewStyle().
	Foreground(ColorWarning)

// InfoTextStyle for info messages.
var InfoTextStyle = lipgloss.NewStyle().
	Foreground(ColorInfo)

// GetRangeStyle returns the style for a reading relative to the target range.
func GetRangeStyle(value, low, high float64) lipgloss.Style {
	switch {
	case value <= 0:
		return UnknownStyle
	case value < low:
		return LowStyle
	case value > high:
		return HighStyle
	default:
		return InRangeStyle
	}
}

// GetCoverageStyle returns the style for a sample density ratio in [0, 1].
func GetCoverageStyle(ratio float64) lipgloss.Style {
	switch {
	case ratio >= 0.9:
		return InRangeStyle
	case ratio >= 0.7:
		return WarningTextStyle
	default:
		return ErrorTextStyle
	}
}

// CenterHorizontal centers content horizontally within a given width.
func CenterHorizontal(content string, width int) string {
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(content)
}

// CenterBoth centers content both horizontally and vertically.
func CenterBoth(content string, width, height int) string {
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center).
		AlignVertical(lipgloss.Center).
		Render(content)
}

// DocStyle provides consistent document margins.
var DocStyle = lipgloss.NewStyle().
	Margin(1, 2).
	Padding(0, 1)
