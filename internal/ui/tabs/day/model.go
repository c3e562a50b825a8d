// Package day provides the day overview tab: chart, summary and coverage of the selected day.
package day

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/glucodash/internal/app"
	"github.com/j-veylop/glucodash/internal/models"
	"github.com/j-veylop/glucodash/internal/ui/components"
)

// keyMap defines the key bindings specific to the day tab.
type keyMap struct {
	PrevDay      key.Binding
	NextDay      key.Binding
	Today        key.Binding
	ToggleManual key.Binding
	ToggleSensor key.Binding
	ToggleMeals  key.Binding
}

// defaultKeyMap returns the default key bindings for the day tab.
func defaultKeyMap() keyMap {
	return keyMap{
		PrevDay: key.NewBinding(
			key.WithKeys("[", "h", "left"),
			key.WithHelp("[/h", "previous day"),
		),
		NextDay: key.NewBinding(
			key.WithKeys("]", "l", "right"),
			key.WithHelp("]/l", "next day"),
		),
		Today: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "today"),
		),
		ToggleManual: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "toggle manual"),
		),
		ToggleSensor: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "toggle sensor"),
		),
		ToggleMeals: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "toggle meals"),
		),
	}
}

// Model represents the day tab state.
type Model struct {
	state    *app.State
	spinner  components.LoadingSpinner
	coverage components.CoverageBar
	keys     keyMap
	viewport viewport.Model
	width    int
	height   int
}

// New creates a new day model.
func New(state *app.State) *Model {
	return &Model{
		state:    state,
		spinner:  components.NewSpinner("day"),
		coverage: components.NewCoverageBar(),
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
	}
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Init()
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyMsg(msg))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.PrevDay):
		return request(app.ShiftDayMsg{Days: -1})
	case key.Matches(msg, m.keys.NextDay):
		return request(app.ShiftDayMsg{Days: 1})
	case key.Matches(msg, m.keys.Today):
		return request(app.TodayMsg{})
	case key.Matches(msg, m.keys.ToggleManual):
		return request(app.ToggleKindMsg{Kind: models.KindManual})
	case key.Matches(msg, m.keys.ToggleSensor):
		return request(app.ToggleKindMsg{Kind: models.KindSensor})
	case key.Matches(msg, m.keys.ToggleMeals):
		return request(app.ToggleKindMsg{Kind: models.KindMeal})
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
}

func request(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// SetSize sets the available size for the day tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.PrevDay,
		m.keys.NextDay,
		m.keys.Today,
		m.keys.ToggleManual,
		m.keys.ToggleSensor,
		m.keys.ToggleMeals,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.PrevDay, m.keys.NextDay, m.keys.Today},
		{m.keys.ToggleManual, m.keys.ToggleSensor, m.keys.ToggleMeals},
	}
}
