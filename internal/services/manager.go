// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"

	"github.com/j-veylop/glucodash/internal/config"
	"github.com/j-veylop/glucodash/internal/logger"
	"github.com/j-veylop/glucodash/internal/models"
	"github.com/j-veylop/glucodash/internal/services/daydata"
	"github.com/j-veylop/glucodash/internal/services/imports"
	"github.com/j-veylop/glucodash/internal/services/nightscout"
	"github.com/j-veylop/glucodash/internal/services/quality"
	"github.com/j-veylop/glucodash/internal/services/timerange"
)

type (
	// DayUpdatedEvent is emitted whenever the day snapshot changes.
	DayUpdatedEvent struct {
		Snapshot daydata.Snapshot
	}

	// ImportFilesEvent is emitted when the import directory listing changes.
	ImportFilesEvent struct {
		Dir   string
		Files []models.ExportFile
	}

	// InspectorClosedEvent is emitted when the open export session was disposed.
	InspectorClosedEvent struct {
		File   models.ExportFile
		Reason string
	}

	// AlertEvent is emitted alongside a desktop notification.
	AlertEvent struct {
		Title string
		Body  string
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Service string
		Error   error
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (DayUpdatedEvent) isServiceEvent()      {}
func (ImportFilesEvent) isServiceEvent()     {}
func (InspectorClosedEvent) isServiceEvent() {}
func (AlertEvent) isServiceEvent()           {}
func (ErrorEvent) isServiceEvent()           {}

// Notifier delivers desktop notifications.
type Notifier func(title, body string) error

func desktopNotify(title, body string) error {
	return beeep.Notify(title, body, "")
}

// Manager orchestrates services and event routing.
type Manager struct {
	mu          sync.RWMutex
	cfg         *config.Config
	aggregator  *daydata.Aggregator
	imports     *imports.Service
	resolver    *timerange.Resolver
	analyzer    *quality.Analyzer
	inspector   *inspector
	notify      Notifier
	alerts      alertState
	ctx         context.Context
	cancel      context.CancelFunc
	stopChan    chan struct{}
	subscribers []chan<- ServiceEvent
}

// alertState remembers what was last seen for today so notifications fire
// on transitions only.
type alertState struct {
	day        string
	seen       bool
	outOfRange bool
	anomalies  int
}

// NewManager creates a new service manager.
func NewManager(cfg *config.Config) (*Manager, error) {
	nsConfig := nightscout.DefaultConfig()
	nsConfig.BaseURL = cfg.NightscoutURL
	nsConfig.Token = cfg.NightscoutToken
	nsConfig.APISecret = cfg.NightscoutAPISecret
	nsConfig.Timeout = cfg.RequestTimeout

	client, err := nightscout.New(nsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create nightscout client: %w", err)
	}
	return newManager(cfg, client, desktopNotify)
}

// newManager wires the services around an arbitrary remote client.
func newManager(cfg *config.Config, client daydata.RemoteClient, notify Notifier) (*Manager, error) {
	importService, err := imports.New(cfg.ImportDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize imports: %w", err)
	}

	profile := cfg.Profile
	if profile.BaselineSamplesPerDay == 0 {
		profile = config.DefaultQualityProfile()
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		cfg: cfg,
		aggregator: daydata.New(client, daydata.Config{
			Timezone:      cfg.Timezone,
			SamplesPerDay: profile.BaselineSamplesPerDay,
			Quality:       profile.QualityConfig(),
			Target:        cfg.Target,
		}),
		imports:   importService,
		resolver:  timerange.NewResolver(profile.BaselineSamplesPerDay),
		analyzer:  quality.NewAnalyzer(profile.QualityConfig()),
		inspector: &inspector{scanGapMinutes: profile.ScanGapMinutes},
		notify:    notify,
		ctx:       ctx,
		cancel:    cancel,
		stopChan:  make(chan struct{}),
	}

	go m.routeEvents()
	go m.pollDay()

	return m, nil
}

// routeEvents routes events from individual services to subscribers.
func (m *Manager) routeEvents() {
	for {
		select {
		case snap := <-m.aggregator.Events():
			m.broadcast(DayUpdatedEvent{Snapshot: snap})
			m.checkAlerts(snap)

		case event := <-m.imports.Events():
			m.handleImportEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

// handleImportEvent converts and broadcasts import directory events.
func (m *Manager) handleImportEvent(event imports.Event) {
	switch event.Type {
	case imports.EventFilesLoaded, imports.EventFilesChanged:
		m.broadcast(ImportFilesEvent{
			Dir:   m.imports.Dir(),
			Files: m.imports.Files(),
		})

	case imports.EventActiveReplaced:
		if event.File == nil {
			return
		}
		if m.inspector.closeIf(event.File.Path) {
			logger.Info("closed inspector session for replaced export", "path", event.File.Path)
			m.broadcast(InspectorClosedEvent{File: *event.File, Reason: "file changed on disk"})
		}

	case imports.EventError:
		m.broadcast(ErrorEvent{
			Service: "imports",
			Error:   event.Error,
		})
	}
}

// pollDay loads today on start and reloads it while it stays selected.
func (m *Manager) pollDay() {
	m.reload()

	interval := m.cfg.RefreshInterval
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			snap := m.aggregator.Snapshot()
			if snap.IsLoading || !m.aggregator.IsToday() {
				continue
			}
			m.reload()
		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) reload() {
	if _, err := m.Reload(m.ctx); err != nil && !errors.Is(err, daydata.ErrSuperseded) && m.ctx.Err() == nil {
		logger.Warn("scheduled reload failed", "error", err)
		m.broadcast(ErrorEvent{Service: "nightscout", Error: err})
	}
}

// checkAlerts notifies when today's latest sensor reading leaves the target
// range or new anomalies appear. The first snapshot of a day sets the baseline.
func (m *Manager) checkAlerts(snap daydata.Snapshot) {
	if snap.State != daydata.StateReady || snap.Controls.SelectedDate != m.aggregator.Today() {
		return
	}

	latest, hasLatest := snap.LatestSensor()
	target := snap.Controls.Target
	outOfRange := hasLatest && !target.Contains(latest.Value)
	anomalies := 0
	if snap.Quality != nil {
		anomalies = len(snap.Quality.Anomalies)
	}

	m.mu.Lock()
	prev := m.alerts
	m.alerts = alertState{
		day:        snap.Controls.SelectedDate,
		seen:       true,
		outOfRange: outOfRange,
		anomalies:  anomalies,
	}
	m.mu.Unlock()

	if !prev.seen || prev.day != snap.Controls.SelectedDate {
		return
	}

	if outOfRange && !prev.outOfRange {
		title := "Glucose high"
		if latest.Value < target.Low {
			title = "Glucose low"
		}
		body := fmt.Sprintf("%.0f mg/dL at %s (target %.0f-%.0f)",
			latest.Value, latest.Time().In(m.location()).Format("15:04"), target.Low, target.High)
		m.alert(title, body)
	}

	if anomalies > prev.anomalies {
		newCount := anomalies - prev.anomalies
		body := latestAnomaly(snap.Quality.Anomalies).Reason
		if newCount > 1 {
			body = fmt.Sprintf("%d new anomalies, latest: %s", newCount, body)
		}
		m.alert("Glucose data anomaly", body)
	}
}

// latestAnomaly returns the anomaly with the newest timestamp. The report
// lists manual findings before sensor ones, so list order is not time order.
func latestAnomaly(anomalies []models.Anomaly) models.Anomaly {
	var latest models.Anomaly
	for i, a := range anomalies {
		if i == 0 || a.Timestamp >= latest.Timestamp {
			latest = a
		}
	}
	return latest
}

func (m *Manager) alert(title, body string) {
	if m.notify != nil {
		if err := m.notify(title, body); err != nil {
			logger.Debug("desktop notification failed", "error", err)
		}
	}
	m.broadcast(AlertEvent{Title: title, Body: body})
}

func (m *Manager) location() *time.Location {
	loc, err := m.cfg.Timezone.Location()
	if err != nil {
		return time.Local
	}
	return loc
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, WaitForEvent(ch)
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Config returns the configuration the manager was built with.
func (m *Manager) Config() *config.Config {
	return m.cfg
}

// Snapshot returns the current day snapshot.
func (m *Manager) Snapshot() daydata.Snapshot {
	return m.aggregator.Snapshot()
}

// LoadDay selects and loads a day.
func (m *Manager) LoadDay(ctx context.Context, dayKey string) (daydata.Snapshot, error) {
	return m.aggregator.Load(ctx, dayKey)
}

// LoadToday selects and loads today.
func (m *Manager) LoadToday(ctx context.Context) (daydata.Snapshot, error) {
	return m.aggregator.Load(ctx, m.aggregator.Today())
}

// ShiftDay moves the selected date by days and loads it.
func (m *Manager) ShiftDay(ctx context.Context, days int) (daydata.Snapshot, error) {
	return m.aggregator.ShiftDate(ctx, days)
}

// Reload loads the selected date again.
func (m *Manager) Reload(ctx context.Context) (daydata.Snapshot, error) {
	return m.aggregator.Reload(ctx)
}

// ToggleVisibility flips a record kind on the day view.
func (m *Manager) ToggleVisibility(kind models.Kind) daydata.Snapshot {
	return m.aggregator.ToggleVisibility(kind)
}

// SetTargetRange changes the target bounds used by the summary and alerts.
func (m *Manager) SetTargetRange(low, high float64) (daydata.Snapshot, error) {
	return m.aggregator.SetTargetRange(low, high)
}

// IsToday reports whether the selected date is today.
func (m *Manager) IsToday() bool {
	return m.aggregator.IsToday()
}

// ImportDir returns the watched import directory.
func (m *Manager) ImportDir() string {
	return m.imports.Dir()
}

// ImportFiles returns the export files of the import directory.
func (m *Manager) ImportFiles() []models.ExportFile {
	return m.imports.Files()
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	if m.cancel != nil {
		m.cancel()
	}
	if m.stopChan != nil {
		close(m.stopChan)
	}

	m.mu.Lock()
	for _, sub := range m.subscribers {
		close(sub)
	}
	m.subscribers = nil
	m.mu.Unlock()

	var errs []error

	if m.imports != nil {
		if err := m.imports.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if m.inspector != nil {
		if err := m.inspector.close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// InitialState returns the initial state of all services for TUI initialization.
func (m *Manager) InitialState() (daydata.Snapshot, ImportFilesEvent) {
	return m.aggregator.Snapshot(), ImportFilesEvent{
		Dir:   m.imports.Dir(),
		Files: m.imports.Files(),
	}
}
