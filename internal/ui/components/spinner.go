package components

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/glucodash/internal/ui/styles"
)

// LoadingSpinner is the dot spinner shown while a day or an export is read.
// It names what is loading, e.g. "day", and optionally which one.
type LoadingSpinner struct {
	spinner spinner.Model
	noun    string
	style   lipgloss.Style
}

// NewSpinner creates a spinner for loading the given kind of resource.
func NewSpinner(noun string) LoadingSpinner {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.ColorPrimary)

	return LoadingSpinner{
		spinner: s,
		noun:    noun,
		style:   lipgloss.NewStyle().Foreground(styles.TextSecondary),
	}
}

// Init starts the spinner ticking.
func (l LoadingSpinner) Init() tea.Cmd {
	return l.spinner.Tick
}

// Update advances the spinner on tick messages.
func (l LoadingSpinner) Update(msg tea.Msg) (LoadingSpinner, tea.Cmd) {
	var cmd tea.Cmd
	l.spinner, cmd = l.spinner.Update(msg)
	return l, cmd
}

// View renders the spinner frame alone.
func (l LoadingSpinner) View() string {
	return l.spinner.View()
}

// Status renders the frame followed by "Loading <noun> <subject>...".
// An empty subject leaves it out.
func (l LoadingSpinner) Status(subject string) string {
	text := "Loading " + l.noun
	if subject != "" {
		text += " " + subject
	}
	return l.spinner.View() + " " + l.style.Render(text+"...")
}

// RenderSpinnerCentered renders the spinner status centered in the area.
func RenderSpinnerCentered(s LoadingSpinner, subject string, width, height int) string {
	return styles.CenterBoth(s.Status(subject), width, height)
}
