// Package importer provides the import tab for browsing exported databases.
package importer

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/glucodash/internal/app"
	"github.com/j-veylop/glucodash/internal/ui/components"
)

// keyMap defines the key bindings specific to the import tab.
type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Open      key.Binding
	PrevTable key.Binding
	NextTable key.Binding
	PrevPage  key.Binding
	NextPage  key.Binding
	ScanGaps  key.Binding
	Coverage  key.Binding
	Export    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous file"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next file"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter", "o"),
			key.WithHelp("enter", "open file"),
		),
		PrevTable: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "previous table"),
		),
		NextTable: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next table"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("p", "left"),
			key.WithHelp("p", "previous page"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("n", "right"),
			key.WithHelp("n", "next page"),
		),
		ScanGaps: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "scan gaps"),
		),
		Coverage: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "compare with day"),
		),
		Export: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "export JSON"),
		),
	}
}

// Model represents the import tab state.
type Model struct {
	state    *app.State
	spinner  components.LoadingSpinner
	keys     keyMap
	selected int
	width    int
	height   int
}

// New creates a new import model.
func New(state *app.State) *Model {
	return &Model{
		state:   state,
		spinner: components.NewSpinner("export"),
		keys:    defaultKeyMap(),
	}
}

// Init initializes the import tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the import tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.ImportFilesMsg:
		m.selected = min(m.selected, max(len(msg.Files)-1, 0))
	case tea.KeyMsg:
		return m, m.handleKeyMsg(msg)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	_, files := m.state.GetImportFiles()
	export := m.state.GetExport()

	switch {
	case key.Matches(msg, m.keys.Up):
		if len(files) > 0 {
			m.selected = (m.selected - 1 + len(files)) % len(files)
		}
	case key.Matches(msg, m.keys.Down):
		if len(files) > 0 {
			m.selected = (m.selected + 1) % len(files)
		}
	case key.Matches(msg, m.keys.Open):
		if m.selected < len(files) {
			return request(app.OpenExportMsg{Path: files[m.selected].Path})
		}

	case key.Matches(msg, m.keys.PrevTable):
		if t, ok := m.tableAt(export, -1); ok {
			return request(app.LoadExportPageMsg{Table: t, Page: 1})
		}
	case key.Matches(msg, m.keys.NextTable):
		if t, ok := m.tableAt(export, 1); ok {
			return request(app.LoadExportPageMsg{Table: t, Page: 1})
		}
	case key.Matches(msg, m.keys.PrevPage):
		if export.Table != "" && export.Page.PageNumber > 1 {
			return request(app.LoadExportPageMsg{Table: export.Table, Page: export.Page.PageNumber - 1})
		}
	case key.Matches(msg, m.keys.NextPage):
		if export.Table != "" && export.Page.PageNumber < export.Page.TotalPages() {
			return request(app.LoadExportPageMsg{Table: export.Table, Page: export.Page.PageNumber + 1})
		}

	case key.Matches(msg, m.keys.ScanGaps):
		if export.Table != "" {
			return request(app.ScanExportGapsMsg{Table: export.Table})
		}
	case key.Matches(msg, m.keys.Coverage):
		if export.Table != "" {
			return request(app.ExportCoverageMsg{Table: export.Table})
		}
	case key.Matches(msg, m.keys.Export):
		if export.Table != "" {
			return request(app.WriteExportMsg{Table: export.Table})
		}
	}
	return nil
}

// tableAt returns the table delta positions away from the current one, wrapping around.
func (m *Model) tableAt(export app.ExportView, delta int) (string, bool) {
	n := len(export.Tables)
	if n == 0 {
		return "", false
	}
	idx := 0
	for i, t := range export.Tables {
		if t.Name == export.Table {
			idx = i
			break
		}
	}
	return export.Tables[((idx+delta)%n+n)%n].Name, true
}

func request(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// SetSize sets the available size for the import tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.Down,
		m.keys.Open,
		m.keys.NextTable,
		m.keys.NextPage,
		m.keys.ScanGaps,
		m.keys.Coverage,
		m.keys.Export,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Up, m.keys.Down, m.keys.Open},
		{m.keys.PrevTable, m.keys.NextTable, m.keys.PrevPage, m.keys.NextPage},
		{m.keys.ScanGaps, m.keys.Coverage, m.keys.Export},
	}
}
