// Package timerange resolves a selected calendar day into a timezone-correct UTC fetch window.
package timerange

import (
	"errors"
	"fmt"
	"time"

	"github.com/j-veylop/glucodash/internal/models"
)

const (
	// DayKeyLayout is the layout of a selected calendar date.
	DayKeyLayout = "2006-01-02"

	// DefaultSamplesPerDay is the baseline number of samples expected per UTC day.
	DefaultSamplesPerDay = 24

	// MinOffsetMinutes and MaxOffsetMinutes bound every real-world UTC offset.
	MinOffsetMinutes = -12 * 60
	MaxOffsetMinutes = 14 * 60

	// HostZoneName selects the host's local zone in configuration.
	HostZoneName = "local"

	endOfDayNanos = 999 * int(time.Millisecond)
)

var (
	// ErrInvalidTimezone is returned when the zone cannot be resolved.
	ErrInvalidTimezone = errors.New("invalid timezone")
	// ErrInvalidDate is returned when a day key cannot be parsed.
	ErrInvalidDate = errors.New("invalid date")
	// ErrOffsetOutOfRange is returned for offsets outside [-12:00, +14:00].
	ErrOffsetOutOfRange = errors.New("timezone offset out of range")
)

// TimezoneConfig selects how local days are interpreted.
type TimezoneConfig struct {
	// UseHostZone resolves the zone from the host at call time.
	UseHostZone bool
	// ZoneName is an IANA zone name, used when UseHostZone is false.
	ZoneName string
	// OffsetOverrideMinutes, when set, replaces the conversion offset.
	// DST detection still uses the resolved zone.
	OffsetOverrideMinutes *int
}

// HostZone returns a configuration that follows the host's local zone.
func HostZone() TimezoneConfig {
	return TimezoneConfig{UseHostZone: true}
}

// Zone returns a configuration for an explicit IANA zone.
func Zone(name string) TimezoneConfig {
	return TimezoneConfig{ZoneName: name}
}

// WithOffset returns a copy of the configuration with a manual offset override.
func (c TimezoneConfig) WithOffset(minutes int) TimezoneConfig {
	c.OffsetOverrideMinutes = &minutes
	return c
}

// Location resolves the configured zone.
func (c TimezoneConfig) Location() (*time.Location, error) {
	if c.UseHostZone {
		return time.Local, nil
	}
	if c.ZoneName == "" {
		return nil, fmt.Errorf("%w: no zone configured and host zone disabled", ErrInvalidTimezone)
	}
	loc, err := time.LoadLocation(c.ZoneName)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidTimezone, c.ZoneName, err)
	}
	return loc, nil
}

// Resolver resolves calendar days into fetch windows.
type Resolver struct {
	SamplesPerDay int
}

// NewResolver creates a resolver expecting samplesPerDay samples per UTC day.
// Non-positive values fall back to DefaultSamplesPerDay.
func NewResolver(samplesPerDay int) *Resolver {
	if samplesPerDay <= 0 {
		samplesPerDay = DefaultSamplesPerDay
	}
	return &Resolver{SamplesPerDay: samplesPerDay}
}

// Resolve resolves a "YYYY-MM-DD" day key with the default baseline.
func Resolve(dayKey string, cfg TimezoneConfig) (models.DateRange, error) {
	return NewResolver(DefaultSamplesPerDay).Resolve(dayKey, cfg)
}

// ParseDayKey parses a "YYYY-MM-DD" date.
func ParseDayKey(key string) (time.Time, error) {
	t, err := time.Parse(DayKeyLayout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, key)
	}
	return t, nil
}

// DayKey formats the calendar date of t, ignoring its location.
func DayKey(t time.Time) string {
	y, m, d := t.Date()
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d)
}

// Resolve computes the fetch window for a "YYYY-MM-DD" day key.
func (r *Resolver) Resolve(dayKey string, cfg TimezoneConfig) (models.DateRange, error) {
	date, err := ParseDayKey(dayKey)
	if err != nil {
		return models.DateRange{}, err
	}
	return r.ResolveDate(date, cfg)
}

// ResolveDate computes the fetch window for the calendar date of date.
// Only the year, month and day of date are used.
func (r *Resolver) ResolveDate(date time.Time, cfg TimezoneConfig) (models.DateRange, error) {
	loc, err := cfg.Location()
	if err != nil {
		return models.DateRange{}, err
	}

	conv := loc
	if cfg.OffsetOverrideMinutes != nil {
		off := *cfg.OffsetOverrideMinutes
		if err := checkOffset(off); err != nil {
			return models.DateRange{}, err
		}
		conv = time.FixedZone(loc.String(), off*60)
	}

	y, m, d := date.Date()
	localStart := time.Date(y, m, d, 0, 0, 0, 0, conv)
	localEnd := time.Date(y, m, d, 23, 59, 59, endOfDayNanos, conv)

	_, offsetSeconds := localStart.Zone()
	offset := offsetSeconds / 60
	if err := checkOffset(offset); err != nil {
		return models.DateRange{}, err
	}

	fetchStart := utcDayStart(localStart)
	fetchEnd := utcDayStart(localEnd).Add(24*time.Hour - time.Millisecond)

	days := int(utcDayStart(localEnd).Sub(fetchStart) / (24 * time.Hour))
	days = max(1, days)

	samples := r.SamplesPerDay
	if samples <= 0 {
		samples = DefaultSamplesPerDay
	}

	return models.DateRange{
		DayKey:                DayKey(date),
		LocalDayStart:         localStart,
		LocalDayEnd:           localEnd,
		FetchStartUTC:         fetchStart,
		FetchEndUTC:           fetchEnd,
		TimezoneOffsetMinutes: offset,
		IsDSTTransition:       offsetMinutesAt(fetchStart, loc) != offsetMinutesAt(fetchEnd, loc),
		DaysToFetch:           days,
		ExpectedSampleCount:   samples * days,
		TimezoneName:          loc.String(),
	}, nil
}

// ValidOffset reports whether minutes is a plausible UTC offset.
func ValidOffset(minutes int) bool {
	return minutes >= MinOffsetMinutes && minutes <= MaxOffsetMinutes
}

func checkOffset(minutes int) error {
	if !ValidOffset(minutes) {
		return fmt.Errorf("%w: %d minutes (allowed %d..%d)", ErrOffsetOutOfRange, minutes, MinOffsetMinutes, MaxOffsetMinutes)
	}
	return nil
}

func utcDayStart(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func offsetMinutesAt(t time.Time, loc *time.Location) int {
	_, off := t.In(loc).Zone()
	return off / 60
}
