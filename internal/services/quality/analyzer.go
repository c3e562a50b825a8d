// Package quality derives gap, anomaly, timezone and coverage findings for a day of readings.
package quality

import (
	"fmt"
	"sort"
	"time"

	"github.com/j-veylop/glucodash/internal/models"
	"github.com/j-veylop/glucodash/internal/services/timerange"
)

const (
	// DefaultGapThreshold is the longest silence between readings not reported as a gap.
	DefaultGapThreshold = 30 * time.Minute
	// DefaultPlausibleMin and DefaultPlausibleMax bound physiologically plausible mg/dL values.
	DefaultPlausibleMin = 40.0
	DefaultPlausibleMax = 400.0

	maxDaysToFetch = 2
)

// Config holds the per-deployment analyzer thresholds.
type Config struct {
	GapThreshold time.Duration
	PlausibleMin float64
	PlausibleMax float64
}

// DefaultConfig returns the reference thresholds.
func DefaultConfig() Config {
	return Config{
		GapThreshold: DefaultGapThreshold,
		PlausibleMin: DefaultPlausibleMin,
		PlausibleMax: DefaultPlausibleMax,
	}
}

// Analyzer produces quality reports. It holds no state beyond its configuration.
type Analyzer struct {
	cfg Config
}

// NewAnalyzer creates an analyzer. Zero fields of cfg take the defaults.
func NewAnalyzer(cfg Config) *Analyzer {
	def := DefaultConfig()
	if cfg.GapThreshold <= 0 {
		cfg.GapThreshold = def.GapThreshold
	}
	if cfg.PlausibleMin == 0 && cfg.PlausibleMax == 0 {
		cfg.PlausibleMin = def.PlausibleMin
		cfg.PlausibleMax = def.PlausibleMax
	}
	return &Analyzer{cfg: cfg}
}

// Config returns the effective thresholds.
func (a *Analyzer) Config() Config {
	return a.cfg
}

// Analyze inspects manual and sensor readings against the resolved range.
// Findings are data, never errors.
func (a *Analyzer) Analyze(manual, sensor []models.Record, r models.DateRange) models.QualityReport {
	merged := make([]models.Record, 0, len(manual)+len(sensor))
	merged = append(merged, manual...)
	merged = append(merged, sensor...)

	gaps := a.findGaps(merged)
	return models.QualityReport{
		HasGaps:        len(gaps) > 0,
		Gaps:           gaps,
		Anomalies:      a.findAnomalies(merged),
		TimezoneIssues: timezoneIssues(merged, r),
		Density:        density(len(manual)+len(sensor), r.ExpectedSampleCount),
	}
}

func (a *Analyzer) findGaps(records []models.Record) []models.Gap {
	placed := make([]models.Record, 0, len(records))
	for _, rec := range records {
		if rec.Placed {
			placed = append(placed, rec)
		}
	}
	sort.SliceStable(placed, func(i, j int) bool {
		return placed[i].Timestamp < placed[j].Timestamp
	})

	threshold := a.cfg.GapThreshold.Milliseconds()
	var gaps []models.Gap
	for i := 1; i < len(placed); i++ {
		prev, cur := placed[i-1].Timestamp, placed[i].Timestamp
		delta := cur - prev
		if delta > threshold {
			gaps = append(gaps, models.Gap{
				Start:           time.UnixMilli(prev).UTC(),
				End:             time.UnixMilli(cur).UTC(),
				DurationMinutes: float64(delta) / float64(time.Minute.Milliseconds()),
			})
		}
	}
	return gaps
}

func (a *Analyzer) findAnomalies(records []models.Record) []models.Anomaly {
	var anomalies []models.Anomaly
	for _, rec := range records {
		var reason string
		switch {
		case rec.Value < a.cfg.PlausibleMin:
			reason = fmt.Sprintf("%s reading %.0f mg/dL is below the plausible minimum of %.0f", kindLabel(rec.Kind), rec.Value, a.cfg.PlausibleMin)
		case rec.Value > a.cfg.PlausibleMax:
			reason = fmt.Sprintf("%s reading %.0f mg/dL is above the plausible maximum of %.0f", kindLabel(rec.Kind), rec.Value, a.cfg.PlausibleMax)
		default:
			continue
		}
		anomalies = append(anomalies, models.Anomaly{
			Timestamp: rec.Timestamp,
			Value:     rec.Value,
			Kind:      rec.Kind,
			Reason:    reason,
		})
	}
	return anomalies
}

func timezoneIssues(records []models.Record, r models.DateRange) []models.TimezoneIssue {
	var issues []models.TimezoneIssue

	if r.IsDSTTransition {
		issues = append(issues, models.TimezoneIssue{
			Type:        models.TimezoneIssueDST,
			Description: fmt.Sprintf("%s changes UTC offset within the fetch window for %s; hour placement may shift by the DST delta", r.TimezoneName, r.DayKey),
		})
	}

	if !timerange.ValidOffset(r.TimezoneOffsetMinutes) {
		issues = append(issues, models.TimezoneIssue{
			Type:        models.TimezoneIssueOffset,
			Description: fmt.Sprintf("UTC offset %s is outside the plausible range of -12:00 to +14:00", formatOffset(r.TimezoneOffsetMinutes)),
		})
	}

	if r.DaysToFetch > maxDaysToFetch {
		issues = append(issues, models.TimezoneIssue{
			Type:        models.TimezoneIssueRange,
			Description: fmt.Sprintf("fetch window spans %d UTC days, expected at most %d", r.DaysToFetch, maxDaysToFetch),
		})
	}

	if outside := countOutside(records, r); outside > 0 {
		issues = append(issues, models.TimezoneIssue{
			Type:        models.TimezoneIssueRange,
			Description: fmt.Sprintf("%d record(s) fall outside the fetch window %s to %s", outside, r.FetchStartUTC.Format(time.RFC3339), r.FetchEndUTC.Format(time.RFC3339)),
		})
	}

	return issues
}

func countOutside(records []models.Record, r models.DateRange) int {
	if r.FetchStartUTC.IsZero() || r.FetchEndUTC.IsZero() {
		return 0
	}
	n := 0
	for _, rec := range records {
		if rec.Placed && !r.ContainsMillis(rec.Timestamp) {
			n++
		}
	}
	return n
}

func density(actual, expected int) models.Density {
	d := models.Density{Expected: expected, Actual: actual}
	if expected > 0 {
		d.CoveragePercent = 100 * float64(actual) / float64(expected)
	}
	return d
}

func kindLabel(k models.Kind) string {
	switch k {
	case models.KindManual:
		return "manual"
	case models.KindSensor:
		return "sensor"
	default:
		return string(k)
	}
}

func formatOffset(minutes int) string {
	sign := '+'
	if minutes < 0 {
		sign = '-'
		minutes = -minutes
	}
	return fmt.Sprintf("%c%02d:%02d", sign, minutes/60, minutes%60)
}
