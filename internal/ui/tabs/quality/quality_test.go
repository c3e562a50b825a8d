package quality

import (
	"strings"
	"testing"
	"time"

	"github.com/j-veylop/glucodash/internal/app"
	"github.com/j-veylop/glucodash/internal/models"
	"github.com/j-veylop/glucodash/internal/services/daydata"
)

func testSnapshot(q *models.QualityReport) daydata.Snapshot {
	start := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	return daydata.Snapshot{
		Seq:      1,
		State:    daydata.StateReady,
		Controls: daydata.DefaultControls("2024-03-10", models.TargetRange{Low: 70, High: 180}),
		Range: &models.DateRange{
			DayKey:        "2024-03-10",
			LocalDayStart: start,
			LocalDayEnd:   start.Add(24*time.Hour - time.Millisecond),
			FetchStartUTC: start,
			FetchEndUTC:   start.Add(24 * time.Hour),
			TimezoneName:  "UTC",
			DaysToFetch:   1,
		},
		Quality: q,
	}
}

func newTestModel(snap daydata.Snapshot) *Model {
	state := app.NewState()
	state.SetSnapshot(snap)
	m := New(state)
	m.SetSize(120, 100)
	return m
}

func TestModel_ViewNoReport(t *testing.T) {
	m := newTestModel(daydata.Snapshot{})
	if !strings.Contains(m.View(), "No quality report") {
		t.Error("view should say there is no report")
	}
}

func TestModel_ViewClean(t *testing.T) {
	q := &models.QualityReport{Density: models.Density{Expected: 288, Actual: 288, CoveragePercent: 100}}
	view := newTestModel(testSnapshot(q)).View()

	for _, want := range []string{
		"No issues found for 2024-03-10",
		"288 of 288 expected",
		"No gaps above threshold",
		"All readings plausible",
		"No timezone issues",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestModel_ViewFindings(t *testing.T) {
	start := time.Date(2024, 3, 10, 2, 0, 0, 0, time.UTC)
	q := &models.QualityReport{
		HasGaps: true,
		Gaps: []models.Gap{
			{Start: start, End: start.Add(45 * time.Minute), DurationMinutes: 45},
			{Start: start.Add(5 * time.Hour), End: start.Add(7*time.Hour + 5*time.Minute), DurationMinutes: 125},
		},
		Anomalies: []models.Anomaly{
			{Timestamp: start.Add(time.Hour).UnixMilli(), Value: 700, Kind: models.KindSensor, Reason: "value above plausible maximum"},
		},
		TimezoneIssues: []models.TimezoneIssue{
			{Type: models.TimezoneIssueDST, Description: "window spans a DST change"},
		},
		Density: models.Density{Expected: 288, Actual: 200, CoveragePercent: 69.4},
	}
	snap := testSnapshot(q)
	snap.Range.IsDSTTransition = true

	view := newTestModel(snap).View()
	for _, want := range []string{
		"4 findings for 2024-03-10",
		"Gaps (2)",
		"2h 05m",
		"02:00 → 02:45",
		"Anomalies (1)",
		"value above plausible maximum",
		"[DST]",
		"transition in window",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestFormatMinutes(t *testing.T) {
	tests := map[float64]string{
		12:    "12m",
		59.6:  "1h 00m",
		125:   "2h 05m",
		720.2: "12h 00m",
	}
	for in, want := range tests {
		if got := formatMinutes(in); got != want {
			t.Errorf("formatMinutes(%v) = %s, want %s", in, got, want)
		}
	}
}

func TestModel_Help(t *testing.T) {
	m := New(app.NewState())
	if m.Init() != nil {
		t.Error("Init should return nil")
	}
	if len(m.ShortHelp()) != 2 || len(m.FullHelp()) != 1 {
		t.Error("unexpected help bindings")
	}
	if updated, _ := m.Update(app.SnapshotUpdatedMsg{}); updated == nil {
		t.Error("Update returned nil")
	}
}
