package app

import (
	"testing"
	"time"

	"github.com/j-veylop/glucodash/internal/models"
	"github.com/j-veylop/glucodash/internal/services/daydata"
)

func TestNewState(t *testing.T) {
	s := NewState()
	if s == nil {
		t.Fatal("NewState returned nil")
	}
	if len(s.ImportFiles) != 0 {
		t.Error("ImportFiles should be empty")
	}
	if !s.Loading.Initial {
		t.Error("Initial loading should be true")
	}
	if !s.IsInitialLoading() {
		t.Error("IsInitialLoading should be true")
	}
}

func TestState_SetLoading(t *testing.T) {
	s := NewState()

	s.SetLoading(ResourceDay, true)
	if !s.Loading.Day {
		t.Error("Day loading should be true")
	}
	if !s.AnyLoading() {
		t.Error("AnyLoading should be true")
	}

	s.SetLoading(ResourceDay, false)
	// Initial is still true
	if !s.AnyLoading() {
		t.Error("AnyLoading should be true (Initial is true)")
	}

	s.SetLoading(ResourceInitial, false)
	if s.AnyLoading() {
		t.Error("AnyLoading should be false")
	}

	if resources := s.GetLoadingResources(); len(resources) != 0 {
		t.Errorf("GetLoadingResources should be empty, got %v", resources)
	}

	s.SetLoading(ResourceExport, true)
	resources := s.GetLoadingResources()
	if len(resources) != 1 || resources[0] != ResourceExport {
		t.Errorf("GetLoadingResources should contain export, got %v", resources)
	}

	// Unknown resources are ignored
	s.SetLoading("history", true)
	if len(s.GetLoadingResources()) != 1 {
		t.Error("unknown resource should not be tracked")
	}
}

func TestState_SetSnapshot(t *testing.T) {
	s := NewState()

	if !s.SetSnapshot(daydata.Snapshot{Seq: 2, State: daydata.StateLoading}) {
		t.Fatal("first snapshot should be accepted")
	}
	if !s.GetLastUpdated().IsZero() {
		t.Error("loading snapshot should not set LastUpdated")
	}

	// Older snapshots are ignored
	if s.SetSnapshot(daydata.Snapshot{Seq: 1, State: daydata.StateReady}) {
		t.Error("stale snapshot should be rejected")
	}
	if s.GetSnapshot().Seq != 2 {
		t.Errorf("Seq = %d, want 2", s.GetSnapshot().Seq)
	}

	// Same sequence updates in place, e.g. a visibility toggle
	if !s.SetSnapshot(daydata.Snapshot{Seq: 2, State: daydata.StateReady}) {
		t.Error("same-sequence snapshot should be accepted")
	}
	if s.GetLastUpdated().IsZero() {
		t.Error("ready snapshot should set LastUpdated")
	}
	if s.TimeSinceUpdate() < 0 {
		t.Error("TimeSinceUpdate should not be negative")
	}
}

func TestState_TimeSinceUpdate_Zero(t *testing.T) {
	if got := NewState().TimeSinceUpdate(); got != 0 {
		t.Errorf("TimeSinceUpdate = %v, want 0 before any update", got)
	}
}

func TestState_ImportFiles(t *testing.T) {
	s := NewState()
	files := []models.ExportFile{{Name: "a.db"}, {Name: "b.db"}}
	s.SetImportFiles("/imports", files)

	dir, got := s.GetImportFiles()
	if dir != "/imports" || len(got) != 2 {
		t.Fatalf("GetImportFiles = %s, %v", dir, got)
	}

	// The returned slice is a copy
	got[0].Name = "changed"
	if _, again := s.GetImportFiles(); again[0].Name != "a.db" {
		t.Error("GetImportFiles should return a copy")
	}
}

func TestState_ExportView(t *testing.T) {
	s := NewState()
	file := models.ExportFile{Path: "/imports/a.db", Name: "a.db"}
	s.SetExportOpened(file, []models.TableSchema{{Name: "readings"}, {Name: "notes"}})

	v := s.GetExport()
	if v.File == nil || v.File.Name != "a.db" || len(v.Tables) != 2 {
		t.Fatalf("export view = %+v", v)
	}

	s.SetExportPage("readings", models.Page{PageNumber: 1})
	s.SetExportGaps("readings", nil)
	s.SetExportCoverage(ExportCoverage{Table: "readings", Total: 10})

	v = s.GetExport()
	if v.Gaps == nil {
		t.Error("an empty gap scan should be recorded as scanned")
	}
	if v.Coverage == nil || v.Coverage.Total != 10 {
		t.Errorf("coverage = %+v", v.Coverage)
	}

	// Same table keeps analysis results
	s.SetExportPage("readings", models.Page{PageNumber: 2})
	if v = s.GetExport(); v.Gaps == nil || v.Coverage == nil {
		t.Error("paging within a table should keep gaps and coverage")
	}

	// Switching tables drops them
	s.SetExportPage("notes", models.Page{PageNumber: 1})
	v = s.GetExport()
	if v.Gaps != nil || v.Coverage != nil {
		t.Error("switching tables should reset gaps and coverage")
	}
	if v.Table != "notes" || v.Page.PageNumber != 1 {
		t.Errorf("table/page = %s/%d", v.Table, v.Page.PageNumber)
	}

	s.ClearExport()
	if s.GetExport().File != nil {
		t.Error("ClearExport should forget the file")
	}
}

func TestState_Notifications(t *testing.T) {
	s := NewState()

	id := s.AddNotification(NotificationInfo, "test", time.Minute)
	if id == "" {
		t.Error("AddNotification returned empty ID")
	}

	notifs := s.GetNotifications()
	if len(notifs) != 1 {
		t.Errorf("GetNotifications len = %d, want 1", len(notifs))
	}
	if notifs[0].Message != "test" {
		t.Errorf("Notification message = %s, want test", notifs[0].Message)
	}

	s.RemoveNotification(id)
	if len(s.GetNotifications()) != 0 {
		t.Error("Notification should be removed")
	}
}

func TestState_NotificationLimit(t *testing.T) {
	s := NewState()
	for range maxNotifications + 5 {
		s.AddNotification(NotificationInfo, "n", time.Minute)
	}
	if got := len(s.GetNotifications()); got != maxNotifications {
		t.Errorf("notifications = %d, want %d", got, maxNotifications)
	}

	s.ClearAllNotifications()
	if len(s.GetNotifications()) != 0 {
		t.Error("ClearAllNotifications should remove everything")
	}
}

func TestState_ClearExpiredNotifications(t *testing.T) {
	s := NewState()

	// Expired
	s.notifications = append(s.notifications, Notification{
		ID:        "expired",
		CreatedAt: time.Now().Add(-2 * time.Minute),
		Duration:  time.Minute,
	})

	// Active
	s.notifications = append(s.notifications, Notification{
		ID:        "active",
		CreatedAt: time.Now(),
		Duration:  time.Minute,
	})

	s.ClearExpiredNotifications()

	notifs := s.GetNotifications()
	if len(notifs) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(notifs))
	}
	if notifs[0].ID != "active" {
		t.Errorf("Expected active notification, got %s", notifs[0].ID)
	}
}

func TestState_LoadingNotification(t *testing.T) {
	s := NewState()

	s.SetLoadingNotification("loading...")
	notifs := s.GetNotifications()
	if len(notifs) != 1 {
		t.Errorf("Expected 1 notification, got %d", len(notifs))
	}
	if notifs[0].ID != LoadingNotificationID {
		t.Errorf("Expected ID %s, got %s", LoadingNotificationID, notifs[0].ID)
	}

	// Update message
	s.SetLoadingNotification("still loading...")
	notifs = s.GetNotifications()
	if len(notifs) != 1 {
		t.Errorf("Expected 1 notification after update")
	}
	if notifs[0].Message != "still loading..." {
		t.Errorf("Expected message still loading..., got %s", notifs[0].Message)
	}

	s.ClearLoadingNotification()
	if len(s.GetNotifications()) != 0 {
		t.Error("Loading notification should be cleared")
	}
}

func TestNotificationType_String(t *testing.T) {
	tests := []struct {
		t    NotificationType
		want string
	}{
		{NotificationSuccess, "success"},
		{NotificationError, "error"},
		{NotificationWarning, "warning"},
		{NotificationInfo, "info"},
		{NotificationLoading, "loading"},
		{NotificationType(999), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.t.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
