// Package app implements the main Bubble Tea application with tab-based navigation.
package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/glucodash/internal/services"
	"github.com/j-veylop/glucodash/internal/services/daydata"
	"github.com/j-veylop/glucodash/internal/ui/styles"
)

// TabID represents the identifier for a tab in the application.
type TabID int

const (
	// TabDay is the ID for the day tab.
	TabDay TabID = iota
	// TabQuality is the ID for the quality tab.
	TabQuality
	// TabImport is the ID for the import tab.
	TabImport
	// TabInfo is the ID for the info tab.
	TabInfo
)

// String returns the string representation of the TabID.
func (t TabID) String() string {
	switch t {
	case TabDay:
		return "Day"
	case TabQuality:
		return "Quality"
	case TabImport:
		return "Import"
	case TabInfo:
		return "Info"
	default:
		return "Unknown"
	}
}

// Tab defines the interface that all tabs must implement.
type Tab interface {
	// Init initializes the tab and returns any initial commands.
	Init() tea.Cmd

	// Update handles messages and returns the updated tab and any commands.
	Update(msg tea.Msg) (Tab, tea.Cmd)

	// View renders the tab content.
	View() string

	// SetSize sets the available size for the tab.
	SetSize(width, height int)

	// ShortHelp returns key bindings for the short help view.
	ShortHelp() []key.Binding

	// FullHelp returns key bindings for the full help view.
	FullHelp() [][]key.Binding
}

// KeyMap defines the keybindings for the application.
type KeyMap struct {
	Tab1    key.Binding
	Tab2    key.Binding
	Tab3    key.Binding
	Tab4    key.Binding
	NextTab key.Binding
	PrevTab key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
	Escape  key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	km := KeyMap{}
	km = setTabKeys(km)
	km = setActionKeys(km)
	return km
}

func setTabKeys(k KeyMap) KeyMap {
	k.Tab1 = key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "day"))
	k.Tab2 = key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "quality"))
	k.Tab3 = key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "import"))
	k.Tab4 = key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "info"))
	k.NextTab = key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab"))
	k.PrevTab = key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev tab"))
	return k
}

func setActionKeys(k KeyMap) KeyMap {
	k.Refresh = key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "reload day"))
	k.Help = key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help"))
	k.Quit = key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit"))
	k.Escape = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel"))
	return k
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Refresh, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab1, k.Tab2, k.Tab3, k.Tab4},
		{k.NextTab, k.PrevTab},
		{k.Refresh, k.Help, k.Quit},
	}
}

// Styles defines the application styles.
type Styles struct {
	// Tab bar styles
	TabBar      lipgloss.Style
	ActiveTab   lipgloss.Style
	InactiveTab lipgloss.Style

	// Notification styles
	NotificationSuccess lipgloss.Style
	NotificationError   lipgloss.Style
	NotificationWarning lipgloss.Style
	NotificationInfo    lipgloss.Style

	// Content styles
	Content lipgloss.Style
	Help    lipgloss.Style
	Toast   lipgloss.Style

	// Common styles
	Title     lipgloss.Style
	Subtle    lipgloss.Style
	Highlight lipgloss.Style
}

// DefaultStyles returns the default application styles.
func DefaultStyles() Styles {
	s := Styles{}
	s.TabBar = lipgloss.NewStyle().Padding(0, 1).BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).BorderForeground(styles.ColorMuted)
	s.ActiveTab = lipgloss.NewStyle().Bold(true).Foreground(styles.ColorPrimary).Padding(0, 2)
	s.InactiveTab = lipgloss.NewStyle().Foreground(styles.ColorMuted).Padding(0, 2)

	s.NotificationSuccess = lipgloss.NewStyle().Foreground(styles.ColorSuccess).Padding(0, 1)
	s.NotificationError = lipgloss.NewStyle().Foreground(styles.ColorError).Bold(true).Padding(0, 1)
	s.NotificationWarning = lipgloss.NewStyle().Foreground(styles.ColorWarning).Padding(0, 1)
	s.NotificationInfo = lipgloss.NewStyle().Foreground(styles.ColorInfo).Padding(0, 1)

	s.Content = lipgloss.NewStyle().Padding(1, 2)
	s.Help = lipgloss.NewStyle().Foreground(styles.ColorMuted).Padding(0, 1)
	s.Toast = styles.ToastStyle

	s.Title = lipgloss.NewStyle().Bold(true).Foreground(styles.ColorPrimary)
	s.Subtle = lipgloss.NewStyle().Foreground(styles.ColorMuted)
	s.Highlight = lipgloss.NewStyle().Foreground(styles.ColorPrimary)

	return s
}

// Model is the main application model.
type Model struct {
	// Tab management
	activeTab TabID
	tabs      []Tab
	tabNames  []string

	// Shared state
	state    *State
	services *services.Manager
	commands *Commands
	keymap   KeyMap
	styles   Styles

	// UI components
	spinner spinner.Model

	// Window dimensions
	width  int
	height int

	// UI state
	showHelp bool
	ready    bool

	// Service subscription
	eventChannel chan services.ServiceEvent
}

// NewModel initializes a new application model.
func NewModel(mgr *services.Manager) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.ColorPrimary)

	return &Model{
		activeTab: TabDay,
		tabNames:  []string{"Day", "Quality", "Import", "Info"},
		tabs:      make([]Tab, 4), // Placeholder - tabs will be set externally
		state:     NewState(),
		services:  mgr,
		commands:  NewCommands(mgr),
		keymap:    DefaultKeyMap(),
		styles:    DefaultStyles(),
		spinner:   s,
	}
}

// SetTabs sets the tabs for the model.
func (m *Model) SetTabs(tabs []Tab) {
	m.tabs = tabs
	if m.width > 0 && m.height > 0 {
		m.updateTabSizes()
	}
}

// GetState returns the application state.
func (m *Model) GetState() *State {
	return m.state
}

// GetServices returns the service manager.
func (m *Model) GetServices() *services.Manager {
	return m.services
}

// GetCommands returns the commands helper.
func (m *Model) GetCommands() *Commands {
	return m.commands
}

// GetActiveTab returns the currently active tab ID.
func (m *Model) GetActiveTab() TabID {
	return m.activeTab
}

// IsReady returns true if the model is ready (window size received).
func (m *Model) IsReady() bool {
	return m.ready
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	m.state.SetLoadingNotification("Loading day...")

	cmds := []tea.Cmd{
		m.spinner.Tick,
		defaultTickCmd(),
	}

	if m.services != nil {
		cmds = append(cmds, subscribeToServicesCmd(m.services))
		cmds = append(cmds, loadInitialData(m.services))
	}

	for _, tab := range m.tabs {
		if tab != nil {
			cmds = append(cmds, tab.Init())
		}
	}

	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg, tea.KeyMsg, spinner.TickMsg:
		if cmd := m.handleTeaMsg(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}

	default:
		if appCmds := m.handleAppMsg(msg); len(appCmds) > 0 {
			cmds = append(cmds, appCmds...)
		}
	}

	if cmd := m.updateActiveTab(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleTeaMsg(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleWindowSize(msg)
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case spinner.TickMsg:
		return m.handleSpinnerTick(msg)
	}
	return nil
}

func (m *Model) handleAppMsg(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case TickMsg:
		cmds = append(cmds, m.handleTick())
	case SubscriptionEventMsg:
		m.eventChannel = msg.Channel
		cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
	case ServiceEventMsg:
		cmds = append(cmds, m.handleServiceEventMsg(msg)...)
	case initialDataMsg:
		m.state.SetImportFiles(msg.files.Dir, msg.files.Files)
		m.applySnapshot(msg.snapshot)
	case LoadDayMsg, ShiftDayMsg, TodayMsg, ToggleKindMsg:
		cmds = append(cmds, m.handleDayRequest(msg)...)
	case DayLoadedMsg:
		cmds = append(cmds, m.handleDayLoaded(msg)...)
	case OpenExportMsg, LoadExportPageMsg, ScanExportGapsMsg, WriteExportMsg:
		cmds = append(cmds, m.handleExportRequest(msg)...)
	case ExportOpenedMsg, ExportPageMsg, ExportGapsMsg, ExportCoverageMsg, ExportResultMsg:
		cmds = append(cmds, m.handleExportResult(msg)...)
	case CopyToClipboardMsg:
		cmds = append(cmds, copyToClipboardCmd(msg.Text))
	case ClipboardResultMsg:
		if msg.Error != nil {
			cmds = append(cmds, notifyErrorCmd(errorText("Copy failed", msg.Error)))
		} else {
			cmds = append(cmds, notifySuccessCmd("Copied "+msg.Text))
		}
	case AddNotificationMsg:
		cmds = append(cmds, m.handleAddNotification(msg)...)
	case RemoveNotificationMsg:
		m.state.RemoveNotification(msg.ID)
	case ClearNotificationsMsg:
		m.state.ClearAllNotifications()
	case ClearExpiredNotificationsMsg:
		m.state.ClearExpiredNotifications()
	case StartLoadingMsg:
		m.handleStartLoading(msg)
	case StopLoadingMsg:
		m.handleStopLoading(msg)
	case ErrorMsg:
		cmds = append(cmds, notifyErrorCmd(errorText(msg.Context, msg.Error)))
	case TabSwitchMsg:
		m.activeTab = msg.Tab
		m.updateTabSizes()
	case ToggleHelpMsg:
		m.showHelp = !m.showHelp
	}
	return cmds
}

func (m *Model) handleWindowSize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true
	m.updateTabSizes()
}

func (m *Model) handleSpinnerTick(msg spinner.TickMsg) tea.Cmd {
	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return cmd
}

func (m *Model) handleTick() tea.Cmd {
	m.state.ClearExpiredNotifications()
	return defaultTickCmd()
}

func (m *Model) handleServiceEventMsg(msg ServiceEventMsg) []tea.Cmd {
	var cmds []tea.Cmd
	if cmd := m.handleServiceEvent(msg.Event); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if m.eventChannel != nil {
		cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
	}
	return cmds
}

func (m *Model) handleServiceEvent(event services.ServiceEvent) tea.Cmd {
	switch e := event.(type) {
	case services.DayUpdatedEvent:
		if m.applySnapshot(e.Snapshot) {
			snap := e.Snapshot
			return func() tea.Msg { return SnapshotUpdatedMsg{Snapshot: snap} }
		}

	case services.ImportFilesEvent:
		m.state.SetImportFiles(e.Dir, e.Files)
		files := e.Files
		dir := e.Dir
		return func() tea.Msg { return ImportFilesMsg{Dir: dir, Files: files} }

	case services.InspectorClosedEvent:
		m.state.ClearExport()
		return tea.Batch(
			func() tea.Msg { return ExportClosedMsg{File: e.File, Reason: e.Reason} },
			notifyWarningCmd(fmt.Sprintf("Closed %s: %s", e.File.Name, e.Reason)),
		)

	case services.AlertEvent:
		return notifyWarningCmd(fmt.Sprintf("%s: %s", e.Title, e.Body))

	case services.ErrorEvent:
		return notifyErrorCmd(fmt.Sprintf("[%s] %v", e.Service, e.Error))
	}

	return nil
}

// applySnapshot stores a snapshot and keeps the loading indicators in step with it.
func (m *Model) applySnapshot(snap daydata.Snapshot) bool {
	if !m.state.SetSnapshot(snap) {
		return false
	}
	switch snap.State {
	case daydata.StateLoading:
		m.state.SetLoading(ResourceDay, true)
		m.state.SetLoadingNotification(fmt.Sprintf("Loading %s...", snap.Controls.SelectedDate))
	case daydata.StateReady, daydata.StateFailed:
		m.state.SetLoading(ResourceInitial, false)
		m.state.SetLoading(ResourceDay, false)
		if !m.state.AnyLoading() {
			m.state.ClearLoadingNotification()
		}
	}
	return true
}

func (m *Model) handleDayRequest(msg tea.Msg) []tea.Cmd {
	if m.services == nil {
		return nil
	}

	switch msg := msg.(type) {
	case LoadDayMsg:
		return []tea.Cmd{loadDayCmd(m.services, msg.DayKey)}
	case ShiftDayMsg:
		return []tea.Cmd{shiftDayCmd(m.services, msg.Days)}
	case TodayMsg:
		return []tea.Cmd{todayCmd(m.services)}
	case ToggleKindMsg:
		m.applySnapshot(m.services.ToggleVisibility(msg.Kind))
	}
	return nil
}

func (m *Model) handleDayLoaded(msg DayLoadedMsg) []tea.Cmd {
	var cmds []tea.Cmd
	m.applySnapshot(msg.Snapshot)
	if msg.Error != nil {
		cmds = append(cmds, notifyErrorCmd(errorText("Failed to load day", msg.Error)))
	}
	return cmds
}

func (m *Model) handleExportRequest(msg tea.Msg) []tea.Cmd {
	if m.services == nil {
		return nil
	}

	m.state.SetLoading(ResourceExport, true)
	switch msg := msg.(type) {
	case OpenExportMsg:
		m.state.SetLoadingNotification("Opening export...")
		return []tea.Cmd{openExportCmd(m.services, msg.Path)}
	case LoadExportPageMsg:
		return []tea.Cmd{exportPageCmd(m.services, msg.Table, msg.Page)}
	case ScanExportGapsMsg:
		m.state.SetLoadingNotification("Scanning for gaps...")
		return []tea.Cmd{exportGapsCmd(m.services, msg.Table)}
	case WriteExportMsg:
		m.state.SetLoadingNotification("Writing JSON...")
		return []tea.Cmd{writeExportCmd(m.services, msg.Table)}
	}
	return nil
}

func (m *Model) handleExportResult(msg tea.Msg) []tea.Cmd {
	// A coverage message without a result is a request.
	if req, ok := msg.(ExportCoverageMsg); ok && req.Coverage == nil && req.Error == nil {
		if m.services == nil {
			return nil
		}
		m.state.SetLoading(ResourceExport, true)
		return []tea.Cmd{exportCoverageCmd(m.services, req.Table)}
	}

	m.state.SetLoading(ResourceExport, false)
	if !m.state.AnyLoading() {
		m.state.ClearLoadingNotification()
	}

	switch msg := msg.(type) {
	case ExportOpenedMsg:
		if msg.Error != nil {
			m.state.ClearExport()
			return []tea.Cmd{notifyErrorCmd(errorText("Failed to open export", msg.Error))}
		}
		m.state.SetExportOpened(msg.File, msg.Tables)
		cmds := []tea.Cmd{notifySuccessCmd(fmt.Sprintf("Opened %s (%d tables)", msg.File.Name, len(msg.Tables)))}
		if len(msg.Tables) > 0 && m.services != nil {
			cmds = append(cmds, exportPageCmd(m.services, msg.Tables[0].Name, 1))
		}
		return cmds

	case ExportPageMsg:
		if msg.Error != nil {
			return []tea.Cmd{notifyErrorCmd(errorText("Failed to read "+msg.Table, msg.Error))}
		}
		m.state.SetExportPage(msg.Table, msg.Page)

	case ExportGapsMsg:
		if msg.Error != nil {
			return []tea.Cmd{notifyErrorCmd(errorText("Gap scan failed", msg.Error))}
		}
		m.state.SetExportGaps(msg.Table, msg.Gaps)
		return []tea.Cmd{notifyInfoCmd(fmt.Sprintf("%d gaps in %s", len(msg.Gaps), msg.Table))}

	case ExportCoverageMsg:
		if msg.Error != nil {
			return []tea.Cmd{notifyErrorCmd(errorText("Coverage failed", msg.Error))}
		}
		m.state.SetExportCoverage(*msg.Coverage)

	case ExportResultMsg:
		if msg.Error != nil {
			return []tea.Cmd{notifyErrorCmd(errorText("Export failed", msg.Error))}
		}
		return []tea.Cmd{notifySuccessCmd(fmt.Sprintf("Exported %d rows to %s", msg.Rows, msg.Path))}
	}
	return nil
}

func (m *Model) handleAddNotification(msg AddNotificationMsg) []tea.Cmd {
	var cmds []tea.Cmd
	id := m.state.AddNotification(msg.Type, msg.Message, msg.Duration)
	if msg.Duration > 0 {
		cmds = append(cmds, clearNotificationCmd(id, msg.Duration))
	}
	return cmds
}

func (m *Model) handleStartLoading(msg StartLoadingMsg) {
	m.state.SetLoading(msg.Resource, true)
	m.state.SetLoadingNotification("Refreshing...")
}

func (m *Model) handleStopLoading(msg StopLoadingMsg) {
	m.state.SetLoading(msg.Resource, false)
	if !m.state.AnyLoading() {
		m.state.ClearLoadingNotification()
	}
}

func (m *Model) updateActiveTab(msg tea.Msg) tea.Cmd {
	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		var cmd tea.Cmd
		m.tabs[m.activeTab], cmd = m.tabs[m.activeTab].Update(msg)
		return cmd
	}
	return nil
}

func (m *Model) updateTabSizes() {
	contentHeight := max(0, m.height-5)

	for _, tab := range m.tabs {
		if tab != nil {
			tab.SetSize(m.width, contentHeight)
		}
	}
}

func (m *Model) switchTab(tab TabID) {
	if int(tab) >= len(m.tabs) {
		return
	}
	m.activeTab = tab
	m.updateTabSizes()
}

// handleKeyMsg handles keyboard input.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	// Global keybindings (work regardless of tab)
	switch {
	case key.Matches(msg, m.keymap.Quit):
		return tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.showHelp = !m.showHelp

	case key.Matches(msg, m.keymap.Tab1):
		m.switchTab(TabDay)

	case key.Matches(msg, m.keymap.Tab2):
		m.switchTab(TabQuality)

	case key.Matches(msg, m.keymap.Tab3):
		m.switchTab(TabImport)

	case key.Matches(msg, m.keymap.Tab4):
		m.switchTab(TabInfo)

	case key.Matches(msg, m.keymap.NextTab):
		if !m.showHelp && len(m.tabs) > 0 {
			m.switchTab(TabID((int(m.activeTab) + 1) % len(m.tabs)))
		}

	case key.Matches(msg, m.keymap.PrevTab):
		if !m.showHelp && len(m.tabs) > 0 {
			m.switchTab(TabID((int(m.activeTab) - 1 + len(m.tabs)) % len(m.tabs)))
		}

	case key.Matches(msg, m.keymap.Refresh):
		if m.services != nil {
			return reloadCmd(m.services)
		}

	case key.Matches(msg, m.keymap.Escape):
		m.showHelp = false
	}

	// Let the tab handle other keys
	return nil
}

// View renders the application UI.
func (m *Model) View() string {
	var b strings.Builder

	if m.width > 0 {
		b.WriteString(m.renderNavbar())
		b.WriteString("\n")
	}

	if !m.ready {
		b.WriteString(m.styles.Content.Render(fmt.Sprintf("%s Loading...", m.spinner.View())))
		return b.String()
	}

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		b.WriteString(m.tabs[m.activeTab].View())
	} else {
		b.WriteString(m.renderPlaceholder())
	}

	mainView := b.String()

	if m.showHelp {
		mainView = m.overlayCentered(mainView, m.renderHelp())
	}

	if notifications := m.renderNotifications(); len(notifications) > 0 {
		return m.overlayToasts(mainView, notifications)
	}

	return mainView
}

func (m *Model) overlayCentered(mainView string, overlay string) string {
	mainLines := strings.Split(mainView, "\n")
	overlayLines := strings.Split(overlay, "\n")

	overlayWidth := lipgloss.Width(overlay)

	y := max(0, (m.height-len(overlayLines))/2)
	x := max(0, (m.width-overlayWidth)/2)

	for i, overlayLine := range overlayLines {
		mainY := y + i
		if mainY >= len(mainLines) {
			break
		}

		mainLine := mainLines[mainY]

		// Keep what lies left and right of the overlay
		left := ansi.Truncate(mainLine, x, "")
		right := ansi.TruncateLeft(mainLine, x+overlayWidth, "")

		if lipgloss.Width(left) < x {
			left += strings.Repeat(" ", x-lipgloss.Width(left))
		}

		mainLines[mainY] = left + overlayLine + right
	}

	return strings.Join(mainLines, "\n")
}

func (m *Model) renderNavbar() string {
	var tabs []string

	for i, name := range m.tabNames {
		if TabID(i) == m.activeTab {
			tabs = append(tabs, m.styles.ActiveTab.Render(fmt.Sprintf("[%d] %s", i+1, name)))
		} else {
			tabs = append(tabs, m.styles.InactiveTab.Render(fmt.Sprintf(" %d  %s", i+1, name)))
		}
	}

	tabBar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	return m.styles.TabBar.Width(m.width).Render(tabBar)
}

func (m *Model) renderNotifications() []string {
	notifications := m.state.GetNotifications()
	if len(notifications) == 0 {
		return nil
	}

	var toasts []string
	for _, n := range notifications {
		var style lipgloss.Style
		var prefix string

		switch n.Type {
		case NotificationSuccess:
			style = m.styles.NotificationSuccess
			prefix = "[OK]"
		case NotificationError:
			style = m.styles.NotificationError
			prefix = "[ERR]"
		case NotificationWarning:
			style = m.styles.NotificationWarning
			prefix = "[WARN]"
		case NotificationInfo:
			style = m.styles.NotificationInfo
			prefix = "[INFO]"
		case NotificationLoading:
			style = m.styles.NotificationInfo
			prefix = m.spinner.View()
		}

		content := style.Render(fmt.Sprintf("%s %s", prefix, n.Message))
		toasts = append(toasts, m.styles.Toast.Render(content))
	}

	return toasts
}

func (m *Model) overlayToasts(mainView string, toasts []string) string {
	toastStack := lipgloss.JoinVertical(lipgloss.Right, toasts...)
	toastLines := strings.Split(toastStack, "\n")
	mainLines := strings.Split(mainView, "\n")

	startX := max(m.width-lipgloss.Width(toastStack)-2, 0)
	startY := 2

	for i, toastLine := range toastLines {
		lineIdx := startY + i
		if lineIdx >= len(mainLines) {
			break
		}

		mainLine := mainLines[lineIdx]
		mainLineWidth := lipgloss.Width(mainLine)

		if mainLineWidth < startX {
			mainLines[lineIdx] = mainLine + strings.Repeat(" ", startX-mainLineWidth) + toastLine
		} else {
			mainLines[lineIdx] = ansi.Truncate(mainLine, startX, "") + toastLine
		}
	}

	return strings.Join(mainLines, "\n")
}

func (m *Model) renderHelp() string {
	var lines []string

	lines = append(lines, m.styles.Title.Render("Keyboard Shortcuts"))
	lines = append(lines, "")

	lines = append(lines, m.styles.Highlight.Render("Navigation"))
	lines = append(lines, "  1-4        Switch tabs")
	lines = append(lines, "  Tab        Next tab")
	lines = append(lines, "  Shift+Tab  Previous tab")
	lines = append(lines, "")

	lines = append(lines, m.styles.Highlight.Render("Actions"))
	lines = append(lines, "  r          Reload selected day")
	lines = append(lines, "  ?          Toggle help")
	lines = append(lines, "  q/Ctrl+C   Quit")
	lines = append(lines, "")

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		if tabHelp := m.tabs[m.activeTab].ShortHelp(); len(tabHelp) > 0 {
			lines = append(lines, m.styles.Highlight.Render(fmt.Sprintf("%s Tab", m.tabNames[m.activeTab])))
			for _, binding := range tabHelp {
				lines = append(lines, fmt.Sprintf("  %-10s %s", binding.Help().Key, binding.Help().Desc))
			}
			lines = append(lines, "")
		}
	}

	lines = append(lines, m.styles.Subtle.Render("Press ? or Esc to close"))

	return styles.HelpPanelStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderPlaceholder() string {
	content := fmt.Sprintf(
		"Tab %d: %s\n\n%s",
		m.activeTab+1,
		m.tabNames[m.activeTab],
		m.styles.Subtle.Render("This tab is not yet implemented."),
	)
	return m.styles.Content.Render(content)
}

func errorText(context string, err error) string {
	if context == "" {
		return err.Error()
	}
	return fmt.Sprintf("%s: %v", context, err)
}
