package daydata

import (
	"time"

	"github.com/j-veylop/glucodash/internal/models"
)

// State is the aggregator's load state.
type State int

const (
	// StateIdle means no load has been started.
	StateIdle State = iota
	// StateLoading means a load is in flight.
	StateLoading
	// StateReady means the latest load succeeded.
	StateReady
	// StateFailed means the latest load failed.
	StateFailed
)

// String returns the display name for a state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateLoading:
		return "Loading"
	case StateReady:
		return "Ready"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Controls are presentation settings held by the aggregator. Only
// SelectedDate affects what gets loaded.
type Controls struct {
	SelectedDate string
	ShowManual   bool
	ShowSensor   bool
	ShowMeals    bool
	Target       models.TargetRange
}

// DefaultControls shows every kind.
func DefaultControls(day string, target models.TargetRange) Controls {
	return Controls{
		SelectedDate: day,
		ShowManual:   true,
		ShowSensor:   true,
		ShowMeals:    true,
		Target:       target,
	}
}

// Visible reports whether records of kind are shown.
func (c Controls) Visible(kind models.Kind) bool {
	switch kind {
	case models.KindManual:
		return c.ShowManual
	case models.KindSensor:
		return c.ShowSensor
	case models.KindMeal:
		return c.ShowMeals
	default:
		return false
	}
}

// SetVisible shows or hides records of kind.
func (c *Controls) SetVisible(kind models.Kind, visible bool) {
	switch kind {
	case models.KindManual:
		c.ShowManual = visible
	case models.KindSensor:
		c.ShowSensor = visible
	case models.KindMeal:
		c.ShowMeals = visible
	}
}

// Snapshot is one consistent view of the selected day.
type Snapshot struct {
	Err       error
	Range     *models.DateRange
	Quality   *models.QualityReport
	UpdatedAt time.Time
	Records   models.DayRecords
	Controls  Controls
	Seq       uint64
	State     State
	IsLoading bool
}

// Summary computes the day's sensor statistics against the target range.
func (s Snapshot) Summary() models.DaySummary {
	return models.Summarize(s.Records, s.Controls.Target)
}

// LatestSensor returns the most recent sensor reading.
func (s Snapshot) LatestSensor() (models.Record, bool) {
	n := len(s.Records.Sensor)
	if n == 0 {
		return models.Record{}, false
	}
	return s.Records.Sensor[n-1], true
}
