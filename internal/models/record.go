// Package models defines data structures and domain types.
package models

import "time"

// Kind identifies the source of a canonical record.
type Kind string

const (
	// KindManual is a glucose sample entered by a person (finger-stick).
	KindManual Kind = "manual"
	// KindSensor is a glucose sample produced by a continuous monitor.
	KindSensor Kind = "sensor"
	// KindMeal is a meal event; Value carries grams of carbohydrate.
	KindMeal Kind = "meal"
)

// String returns the display name for a kind.
func (k Kind) String() string {
	switch k {
	case KindManual:
		return "Manual"
	case KindSensor:
		return "Sensor"
	case KindMeal:
		return "Meal"
	default:
		return "Unknown"
	}
}

// Record is the canonical, normalized sample used everywhere after ingestion.
// Records are produced only by the normalize package and treated as values.
type Record struct {
	Timestamp int64   // UTC epoch milliseconds
	Value     float64 // mg/dL for readings, grams for meals
	Kind      Kind
	HourOfDay float64 // [0,24), only meaningful when Placed
	Placed    bool    // false when the source carried no usable timestamp
	Device    string
}

// Time returns the record timestamp as a UTC time.
func (r Record) Time() time.Time {
	return time.UnixMilli(r.Timestamp).UTC()
}

// Hour returns the hour of day and whether the record can be placed on a day axis.
func (r Record) Hour() (float64, bool) {
	return r.HourOfDay, r.Placed
}

// RemoteRecord is a raw entry or treatment as returned by the remote time-series API.
// Entries carry Date/SGV/MBG; treatments carry CreatedAt/Carbs.
type RemoteRecord struct {
	ID         string   `json:"_id,omitempty"`
	Type       string   `json:"type,omitempty"`
	Date       int64    `json:"date,omitempty"`
	DateString string   `json:"dateString,omitempty"`
	SGV        *float64 `json:"sgv,omitempty"`
	MBG        *float64 `json:"mbg,omitempty"`
	Device     string   `json:"device,omitempty"`
	Direction  string   `json:"direction,omitempty"`
	EventType  string   `json:"eventType,omitempty"`
	CreatedAt  string   `json:"created_at,omitempty"`
	Carbs      *float64 `json:"carbs,omitempty"`
	Insulin    *float64 `json:"insulin,omitempty"`
	Notes      string   `json:"notes,omitempty"`
}

// DayRecords groups the three normalized streams of one day.
type DayRecords struct {
	Manual []Record
	Sensor []Record
	Meals  []Record
}

// Count returns the total number of records across all streams.
func (d DayRecords) Count() int {
	return len(d.Manual) + len(d.Sensor) + len(d.Meals)
}

// TargetRange holds the user's glucose target bounds in mg/dL.
type TargetRange struct {
	Low  float64
	High float64
}

// Contains reports whether v lies inside the target range, bounds inclusive.
func (t TargetRange) Contains(v float64) bool {
	return v >= t.Low && v <= t.High
}

// DaySummary contains descriptive statistics of sensor readings for one day.
type DaySummary struct {
	Count            int
	Mean             float64
	Min              float64
	Max              float64
	TimeInRange      float64 // percent of readings inside the target range
	TimeBelowRange   float64
	TimeAboveRange   float64
	LatestValue      float64
	LatestTimestamp  int64
	MealCount        int
	TotalCarbs       float64
	UnplaceableMeals int
}

// Summarize computes the day summary against the given target range.
func Summarize(records DayRecords, target TargetRange) DaySummary {
	var s DaySummary
	for _, r := range records.Meals {
		s.MealCount++
		s.TotalCarbs += r.Value
		if !r.Placed {
			s.UnplaceableMeals++
		}
	}

	if len(records.Sensor) == 0 {
		return s
	}

	var sum float64
	var in, below, above int
	s.Min = records.Sensor[0].Value
	s.Max = records.Sensor[0].Value
	for _, r := range records.Sensor {
		sum += r.Value
		s.Min = min(s.Min, r.Value)
		s.Max = max(s.Max, r.Value)
		switch {
		case r.Value < target.Low:
			below++
		case r.Value > target.High:
			above++
		default:
			in++
		}
		if r.Timestamp >= s.LatestTimestamp {
			s.LatestTimestamp = r.Timestamp
			s.LatestValue = r.Value
		}
	}

	s.Count = len(records.Sensor)
	n := float64(s.Count)
	s.Mean = sum / n
	s.TimeInRange = float64(in) / n * 100
	s.TimeBelowRange = float64(below) / n * 100
	s.TimeAboveRange = float64(above) / n * 100
	return s
}
