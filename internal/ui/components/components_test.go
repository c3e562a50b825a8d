package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/glucodash/internal/models"
)

func TestSpinner_Status(t *testing.T) {
	s := NewSpinner("day")
	if s.View() == "" {
		t.Error("View returned empty")
	}
	if got := s.Status(""); !strings.Contains(got, "Loading day...") {
		t.Errorf("Status(\"\") = %q, want the bare noun", got)
	}
	if got := s.Status("2024-05-01"); !strings.Contains(got, "Loading day 2024-05-01...") {
		t.Errorf("Status(day) = %q, want the day key", got)
	}
}

func TestSpinner_Ticks(t *testing.T) {
	s := NewSpinner("export")
	if s.Init() == nil {
		t.Error("Init should return command")
	}
	if _, cmd := s.Update(spinner.TickMsg{}); cmd == nil {
		t.Error("Update should return command for tick")
	}
}

func TestRenderSpinnerCentered(t *testing.T) {
	view := RenderSpinnerCentered(NewSpinner("export"), "a.db", 40, 5)
	if !strings.Contains(view, "Loading export a.db...") {
		t.Errorf("RenderSpinnerCentered = %q", view)
	}
}

func placed(hour, value float64) models.Record {
	return models.Record{Value: value, HourOfDay: hour, Placed: true, Kind: models.KindSensor}
}

func TestBucketSeries(t *testing.T) {
	records := []models.Record{
		placed(1, 100),
		placed(1.5, 120),
		placed(13, 200),
		{Value: 999}, // unplaced
	}

	series, filled := BucketSeries(records, 24)
	if len(series) != 24 {
		t.Fatalf("len(series) = %d, want 24", len(series))
	}
	if series[0] != 110 {
		t.Errorf("leading bucket = %v, want first value 110", series[0])
	}
	if series[1] != 110 {
		t.Errorf("bucket 1 = %v, want mean 110", series[1])
	}
	if series[5] != 110 {
		t.Errorf("empty bucket 5 = %v, want carried 110", series[5])
	}
	if series[13] != 200 || series[23] != 200 {
		t.Errorf("bucket 13/23 = %v/%v, want 200", series[13], series[23])
	}
	if filled[0] || !filled[1] || filled[5] || !filled[13] {
		t.Errorf("filled flags wrong: %v", filled)
	}
	for _, v := range series {
		if v == 999 {
			t.Error("unplaced record leaked into the series")
		}
	}
}

func TestBucketSeries_Empty(t *testing.T) {
	if series, _ := BucketSeries(nil, 24); series != nil {
		t.Errorf("series = %v, want nil", series)
	}
	if series, filled := BucketSeries([]models.Record{placed(3, 90)}, 0); series != nil || filled != nil {
		t.Error("zero buckets should return nil")
	}
}

func TestRenderDayChart(t *testing.T) {
	if s := RenderDayChart(nil, nil, 40, 5, ""); !strings.Contains(s, "No readings") {
		t.Errorf("empty chart = %q", s)
	}

	sensor := []models.Record{placed(0, 90), placed(6, 140), placed(12, 180), placed(18, 110)}
	manual := []models.Record{placed(7, 150)}
	s := RenderDayChart(sensor, manual, 40, 6, "2024-03-10")
	if s == "" || !strings.Contains(s, "2024-03-10") {
		t.Errorf("chart missing caption: %q", s)
	}
}

func TestRenderHourAxis(t *testing.T) {
	axis := RenderHourAxis(48, 2)
	for _, label := range []string{"00", "06", "12", "18"} {
		if !strings.Contains(axis, label) {
			t.Errorf("axis missing %s: %q", label, axis)
		}
	}
	if !strings.HasPrefix(axis, "  00") {
		t.Errorf("axis offset wrong: %q", axis)
	}
}

func TestRenderMealMarkers(t *testing.T) {
	meals := []models.Record{
		{Kind: models.KindMeal, Value: 40, HourOfDay: 12, Placed: true},
		{Kind: models.KindMeal, Value: 20}, // unplaced
	}
	s := RenderMealMarkers(meals, 24, 0)
	if strings.Count(s, "▲") != 1 {
		t.Errorf("want one marker, got %q", s)
	}
}

func TestRenderHourlyCoverage(t *testing.T) {
	records := []models.Record{placed(0.1, 100), placed(0.5, 100), placed(23.9, 100)}
	s := RenderHourlyCoverage(records, 12)
	if !strings.HasPrefix(s, "00 ") || !strings.HasSuffix(s, " 23") {
		t.Errorf("coverage strip = %q", s)
	}
}

func TestRenderSparkline(t *testing.T) {
	s := RenderSparkline([]float64{1, 2, 3}, 10)
	if s != "▁▄█" {
		t.Errorf("RenderSparkline = %q", s)
	}
	if RenderSparkline(nil, 10) != "" {
		t.Error("empty input should render nothing")
	}
	if RenderSparkline([]float64{5, 5}, 10) == "" {
		t.Error("flat input should still render")
	}
}

func TestRenderLegend(t *testing.T) {
	items := []LegendItem{
		{Label: "Sensor", Color: lipgloss.Color("#ffffff")},
		{Label: "Meals", Color: lipgloss.Color("#ff0000"), Hidden: true},
	}
	s := RenderLegend(items)
	if !strings.Contains(s, "Sensor") || !strings.Contains(s, "hidden") {
		t.Errorf("RenderLegend = %q", s)
	}
}

func TestCoverageBar(t *testing.T) {
	bar := NewCoverageBar()
	bar.SetWidth(20)

	tests := []struct {
		name    string
		percent float64
		want    string
	}{
		{"half", 50, "50%"},
		{"clamped high", 140, "100%"},
		{"clamped low", -5, "0%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := bar.View(tt.percent, "Coverage", 60)
			if !strings.Contains(view, tt.want) || !strings.Contains(view, "Coverage") {
				t.Errorf("View() = %q, want %s", view, tt.want)
			}
		})
	}
}

func TestRenderRangeBar(t *testing.T) {
	if s := RenderRangeBar(0, 0, 0, 10); strings.Count(s, "░") != 10 {
		t.Errorf("empty range bar = %q", s)
	}
	s := RenderRangeBar(10, 70, 20, 20)
	if strings.Count(s, "█") != 20 {
		t.Errorf("range bar should be 20 wide: %q", s)
	}
}
