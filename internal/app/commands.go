package app

import (
	"context"
	"errors"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/glucodash/internal/services"
	"github.com/j-veylop/glucodash/internal/services/daydata"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = 2 * time.Second

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// QuickNotificationDuration is for brief notifications.
	QuickNotificationDuration = 3 * time.Second

	// LongNotificationDuration is for important notifications.
	LongNotificationDuration = 10 * time.Second

	// commandTimeout bounds a single manager call started from the UI.
	commandTimeout = 2 * time.Minute
)

// tickCmd returns a command that sends a TickMsg after the specified interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// defaultTickCmd returns a command that sends a TickMsg after the default interval.
func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

// loadInitialData returns a command that loads the current snapshot and the import listing.
func loadInitialData(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		snap, files := mgr.InitialState()
		return initialDataMsg{snapshot: snap, files: ImportFilesMsg{Dir: files.Dir, Files: files.Files}}
	}
}

type initialDataMsg struct {
	snapshot daydata.Snapshot
	files    ImportFilesMsg
}

// dayCmd runs a day load against the manager.
func dayCmd(load func(ctx context.Context) (daydata.Snapshot, error)) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		snap, err := load(ctx)
		if errors.Is(err, daydata.ErrSuperseded) {
			// A newer load owns the snapshot and reports its own result.
			return nil
		}
		return DayLoadedMsg{Snapshot: snap, Error: err}
	}
}

// loadDayCmd returns a command that loads a specific day.
func loadDayCmd(mgr *services.Manager, dayKey string) tea.Cmd {
	return dayCmd(func(ctx context.Context) (daydata.Snapshot, error) {
		return mgr.LoadDay(ctx, dayKey)
	})
}

// shiftDayCmd returns a command that moves the selected day.
func shiftDayCmd(mgr *services.Manager, days int) tea.Cmd {
	return dayCmd(func(ctx context.Context) (daydata.Snapshot, error) {
		return mgr.ShiftDay(ctx, days)
	})
}

// todayCmd returns a command that loads today.
func todayCmd(mgr *services.Manager) tea.Cmd {
	return dayCmd(mgr.LoadToday)
}

// reloadCmd returns a command that reloads the selected day.
func reloadCmd(mgr *services.Manager) tea.Cmd {
	return dayCmd(mgr.Reload)
}

// openExportCmd returns a command that opens an export and lists its tables.
func openExportCmd(mgr *services.Manager, path string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		file, err := mgr.OpenExport(ctx, path)
		if err != nil {
			return ExportOpenedMsg{Error: err}
		}
		tables, err := mgr.ExportTables(ctx)
		return ExportOpenedMsg{File: file, Tables: tables, Error: err}
	}
}

// exportPageCmd returns a command that reads one page of an export table.
func exportPageCmd(mgr *services.Manager, table string, page int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		p, err := mgr.ExportPage(ctx, table, page)
		return ExportPageMsg{Table: table, Page: p, Error: err}
	}
}

// exportGapsCmd returns a command that scans an export table for gaps.
func exportGapsCmd(mgr *services.Manager, table string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		gaps, err := mgr.ExportGaps(ctx, table, "", "")
		return ExportGapsMsg{Table: table, Gaps: gaps, Error: err}
	}
}

// exportCoverageCmd returns a command that compares an export table with the selected day.
func exportCoverageCmd(mgr *services.Manager, table string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		report, err := mgr.ExportCoverage(ctx, table)
		if err != nil {
			return ExportCoverageMsg{Table: table, Error: err}
		}
		return ExportCoverageMsg{Table: table, Coverage: &ExportCoverage{
			Table:    report.Table,
			DayKey:   report.Range.DayKey,
			Quality:  report.Quality,
			Records:  len(report.Records),
			Total:    report.Total,
			Rejected: report.Rejected,
		}}
	}
}

// writeExportCmd returns a command that writes an export table to JSON.
func writeExportCmd(mgr *services.Manager, table string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()

		path, n, err := mgr.ExportTableJSON(ctx, table)
		return ExportResultMsg{Path: path, Rows: n, Error: err}
	}
}

// copyToClipboardCmd returns a command that copies text to the system clipboard.
func copyToClipboardCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return ClipboardResultMsg{Text: text, Error: clipboard.WriteAll(text)}
	}
}

// subscribeToServicesCmd returns a command that subscribes to service events.
func subscribeToServicesCmd(mgr *services.Manager) tea.Cmd {
	ch, _ := mgr.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// waitForServiceEventCmd returns a command that waits for the next service event.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// clearNotificationCmd returns a command that removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

// notifySuccessCmd returns a command that adds a success notification.
func notifySuccessCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationSuccess,
			Message:  message,
			Duration: DefaultNotificationDuration,
		}
	}
}

// notifyErrorCmd returns a command that adds an error notification.
func notifyErrorCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationError,
			Message:  message,
			Duration: LongNotificationDuration,
		}
	}
}

// notifyWarningCmd returns a command that adds a warning notification.
func notifyWarningCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationWarning,
			Message:  message,
			Duration: DefaultNotificationDuration,
		}
	}
}

// notifyInfoCmd returns a command that adds an info notification.
func notifyInfoCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationInfo,
			Message:  message,
			Duration: QuickNotificationDuration,
		}
	}
}

// Commands provides a public interface to the command functions.
type Commands struct {
	manager *services.Manager
}

// NewCommands creates a new Commands instance.
func NewCommands(mgr *services.Manager) *Commands {
	return &Commands{manager: mgr}
}

// Tick returns a tick command with the specified interval.
func (c *Commands) Tick(interval time.Duration) tea.Cmd {
	return tickCmd(interval)
}

// DefaultTick returns a tick command with the default interval.
func (c *Commands) DefaultTick() tea.Cmd {
	return defaultTickCmd()
}

// NotifySuccess returns a command that adds a success notification.
func (c *Commands) NotifySuccess(message string) tea.Cmd {
	return notifySuccessCmd(message)
}

// NotifyError returns a command that adds an error notification.
func (c *Commands) NotifyError(message string) tea.Cmd {
	return notifyErrorCmd(message)
}

// NotifyWarning returns a command that adds a warning notification.
func (c *Commands) NotifyWarning(message string) tea.Cmd {
	return notifyWarningCmd(message)
}

// NotifyInfo returns a command that adds an info notification.
func (c *Commands) NotifyInfo(message string) tea.Cmd {
	return notifyInfoCmd(message)
}

// ClearNotification returns a command that removes a notification after a delay.
func (c *Commands) ClearNotification(id string, delay time.Duration) tea.Cmd {
	return clearNotificationCmd(id, delay)
}

// Quit returns a command that quits the application.
func (c *Commands) Quit() tea.Cmd {
	return tea.Quit
}
