// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"sync"
	"time"

	"github.com/j-veylop/glucodash/internal/models"
	"github.com/j-veylop/glucodash/internal/services/daydata"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

const (
	// LoadingNotificationID is the fixed ID for loading notifications.
	LoadingNotificationID = "__loading__"

	maxNotifications = 10
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	case NotificationLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	ID        string
	Type      NotificationType
	Message   string
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// Loading resources.
const (
	ResourceInitial = "initial"
	ResourceDay     = "day"
	ResourceExport  = "export"
)

// LoadingState tracks loading states for different resources.
type LoadingState struct {
	Initial bool
	Day     bool
	Export  bool
}

// ExportView is what the import tab has loaded from the open export.
type ExportView struct {
	File     *models.ExportFile
	Tables   []models.TableSchema
	Table    string
	Page     models.Page
	Gaps     []models.TimeGap
	Coverage *ExportCoverage
}

// ExportCoverage summarizes an export table against the selected day.
type ExportCoverage struct {
	Table    string
	DayKey   string
	Quality  models.QualityReport
	Records  int
	Total    int
	Rejected int
}

// State is the application state shared by the tabs.
type State struct {
	mu sync.RWMutex

	Snapshot    daydata.Snapshot
	ImportDir   string
	ImportFiles []models.ExportFile
	Export      ExportView

	Loading LoadingState

	LastUpdated time.Time

	notifications   []Notification
	notificationSeq int
}

// NewState creates the initial application state.
func NewState() *State {
	return &State{
		ImportFiles:   make([]models.ExportFile, 0),
		notifications: make([]Notification, 0),
		Loading: LoadingState{
			Initial: true,
		},
	}
}

// SetLoading sets the loading state for a specific resource.
func (s *State) SetLoading(resource string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch resource {
	case ResourceInitial:
		s.Loading.Initial = loading
	case ResourceDay:
		s.Loading.Day = loading
	case ResourceExport:
		s.Loading.Export = loading
	}
}

// AnyLoading returns true if any resource is currently loading.
func (s *State) AnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.Loading.Initial || s.Loading.Day || s.Loading.Export
}

// IsInitialLoading returns true if initial data is still loading.
func (s *State) IsInitialLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading.Initial
}

// GetLoadingResources returns a list of currently loading resources.
func (s *State) GetLoadingResources() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var resources []string
	if s.Loading.Initial {
		resources = append(resources, ResourceInitial)
	}
	if s.Loading.Day {
		resources = append(resources, ResourceDay)
	}
	if s.Loading.Export {
		resources = append(resources, ResourceExport)
	}
	return resources
}

// SetSnapshot stores the latest day snapshot. Older snapshots are ignored.
func (s *State) SetSnapshot(snap daydata.Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap.Seq < s.Snapshot.Seq {
		return false
	}
	s.Snapshot = snap
	if snap.State == daydata.StateReady {
		s.LastUpdated = time.Now()
	}
	return true
}

// GetSnapshot returns the current day snapshot.
func (s *State) GetSnapshot() daydata.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Snapshot
}

// SetImportFiles updates the import directory listing.
func (s *State) SetImportFiles(dir string, files []models.ExportFile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ImportDir = dir
	s.ImportFiles = files
}

// GetImportFiles returns the import directory and a copy of its listing.
func (s *State) GetImportFiles() (string, []models.ExportFile) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	files := make([]models.ExportFile, len(s.ImportFiles))
	copy(files, s.ImportFiles)
	return s.ImportDir, files
}

// SetExportOpened resets the export view for a newly opened file.
func (s *State) SetExportOpened(file models.ExportFile, tables []models.TableSchema) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Export = ExportView{File: &file, Tables: tables}
}

// ClearExport forgets the open export.
func (s *State) ClearExport() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Export = ExportView{}
}

// SetExportPage stores a page of the open export.
func (s *State) SetExportPage(table string, page models.Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Export.Table != table {
		s.Export.Gaps = nil
		s.Export.Coverage = nil
	}
	s.Export.Table = table
	s.Export.Page = page
}

// SetExportGaps stores a gap scan of the open export.
func (s *State) SetExportGaps(table string, gaps []models.TimeGap) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gaps == nil {
		// An empty scan still counts as scanned.
		gaps = []models.TimeGap{}
	}
	s.Export.Table = table
	s.Export.Gaps = gaps
}

// SetExportCoverage stores a coverage report of the open export.
func (s *State) SetExportCoverage(c ExportCoverage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Export.Table = c.Table
	s.Export.Coverage = &c
}

// GetExport returns the export view.
func (s *State) GetExport() ExportView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Export
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notificationSeq++
	id := time.Now().Format("20060102150405") + "-" + string(rune('A'+s.notificationSeq%26))

	notification := Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	}

	s.notifications = append(s.notifications, notification)

	// Keep only the last 10 notifications
	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[len(s.notifications)-maxNotifications:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	s.notifications = active
}

// GetNotifications returns a copy of all active notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}

	return active
}

// ClearAllNotifications removes all notifications.
func (s *State) ClearAllNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = make([]Notification, 0)
}

// SetLoadingNotification sets a loading notification message.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// GetLastUpdated returns the last time a day finished loading.
func (s *State) GetLastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.LastUpdated
}

// TimeSinceUpdate returns the duration since the last update.
func (s *State) TimeSinceUpdate() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.LastUpdated.IsZero() {
		return 0
	}
	return time.Since(s.LastUpdated)
}
