package app

import (
	"time"

	"github.com/j-veylop/glucodash/internal/models"
	"github.com/j-veylop/glucodash/internal/services"
	"github.com/j-veylop/glucodash/internal/services/daydata"
)

// TickMsg is sent periodically to trigger state refresh.
type TickMsg struct {
	Time time.Time
}

// StartLoadingMsg signals that a resource is starting to load.
type StartLoadingMsg struct {
	Resource string
}

// StopLoadingMsg signals that a resource has finished loading.
type StopLoadingMsg struct {
	Resource string
}

// LoadDayMsg requests loading a specific day.
type LoadDayMsg struct {
	DayKey string
}

// ShiftDayMsg requests moving the selected day by Days.
type ShiftDayMsg struct {
	Days int
}

// TodayMsg requests loading today.
type TodayMsg struct{}

// ToggleKindMsg requests showing or hiding a record kind.
type ToggleKindMsg struct {
	Kind models.Kind
}

// DayLoadedMsg contains the result of a day load.
type DayLoadedMsg struct {
	Snapshot daydata.Snapshot
	Error    error
}

// SnapshotUpdatedMsg signals that the shared snapshot changed.
type SnapshotUpdatedMsg struct {
	Snapshot daydata.Snapshot
}

// ImportFilesMsg contains the import directory listing.
type ImportFilesMsg struct {
	Dir   string
	Files []models.ExportFile
}

// OpenExportMsg requests opening an export file.
type OpenExportMsg struct {
	Path string
}

// ExportOpenedMsg contains the result of opening an export file.
type ExportOpenedMsg struct {
	File   models.ExportFile
	Tables []models.TableSchema
	Error  error
}

// ExportClosedMsg signals that the open export was disposed.
type ExportClosedMsg struct {
	File   models.ExportFile
	Reason string
}

// LoadExportPageMsg requests a page of an export table.
type LoadExportPageMsg struct {
	Table string
	Page  int
}

// ExportPageMsg contains a page of an export table.
type ExportPageMsg struct {
	Table string
	Page  models.Page
	Error error
}

// ScanExportGapsMsg requests a gap scan of an export table.
type ScanExportGapsMsg struct {
	Table string
}

// ExportGapsMsg contains a gap scan of an export table.
type ExportGapsMsg struct {
	Table string
	Gaps  []models.TimeGap
	Error error
}

// ExportCoverageMsg requests or carries an export coverage report.
type ExportCoverageMsg struct {
	Table    string
	Coverage *ExportCoverage
	Error    error
}

// WriteExportMsg requests writing an export table to JSON.
type WriteExportMsg struct {
	Table string
}

// ExportResultMsg contains the result of a JSON export.
type ExportResultMsg struct {
	Path  string
	Rows  int
	Error error
}

// CopyToClipboardMsg requests copying text to clipboard.
type CopyToClipboardMsg struct {
	Text string
}

// ClipboardResultMsg contains the result of a clipboard operation.
type ClipboardResultMsg struct {
	Text  string
	Error error
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ClearNotificationsMsg requests clearing all notifications.
type ClearNotificationsMsg struct{}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}

// ClearExpiredNotificationsMsg triggers clearing of expired notifications.
type ClearExpiredNotificationsMsg struct{}
