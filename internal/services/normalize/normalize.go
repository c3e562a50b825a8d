// Package normalize maps remote API records and export rows into canonical records.
package normalize

import (
	"time"

	"github.com/j-veylop/glucodash/internal/models"
)

// HostHourOfDay places a UTC instant on the host's local wall clock.
// Every hour-of-day value in the application is derived through this function.
func HostHourOfDay(ts int64) float64 {
	return HourOfDayIn(ts, time.Local)
}

// HourOfDayIn decomposes ts in loc as hours + minutes/60.
func HourOfDayIn(ts int64, loc *time.Location) float64 {
	t := time.UnixMilli(ts).In(loc)
	return float64(t.Hour()) + float64(t.Minute())/60
}

// FromRemote converts one remote record of the given kind into a canonical record.
// Values are never clamped or dropped here.
func FromRemote(raw models.RemoteRecord, kind models.Kind) models.Record {
	if kind == models.KindMeal {
		return mealFromRemote(raw)
	}

	rec := models.Record{
		Kind:   kind,
		Device: raw.Device,
	}
	switch kind {
	case models.KindManual:
		rec.Value = firstValue(raw.MBG, raw.SGV)
	default:
		rec.Value = firstValue(raw.SGV, raw.MBG)
	}

	ts := raw.Date
	if ts == 0 && raw.DateString != "" {
		if t, err := ParseTimestamp(raw.DateString); err == nil {
			ts = t.UnixMilli()
		}
	}
	if ts != 0 {
		rec.Timestamp = ts
		rec.HourOfDay = HostHourOfDay(ts)
		rec.Placed = true
	}
	return rec
}

// FromRemoteBatch converts a slice of remote records of one kind.
func FromRemoteBatch(raws []models.RemoteRecord, kind models.Kind) []models.Record {
	out := make([]models.Record, 0, len(raws))
	for _, raw := range raws {
		out = append(out, FromRemote(raw, kind))
	}
	return out
}

// mealFromRemote reads the creation time of a treatment. A meal without one
// stays unplaceable instead of landing on midnight.
func mealFromRemote(raw models.RemoteRecord) models.Record {
	rec := models.Record{
		Kind:   models.KindMeal,
		Device: raw.Device,
	}
	if raw.Carbs != nil {
		rec.Value = *raw.Carbs
	}
	if raw.CreatedAt == "" {
		return rec
	}
	t, err := ParseTimestamp(raw.CreatedAt)
	if err != nil {
		return rec
	}
	rec.Timestamp = t.UnixMilli()
	rec.HourOfDay = HostHourOfDay(rec.Timestamp)
	rec.Placed = true
	return rec
}

func firstValue(vals ...*float64) float64 {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return 0
}
