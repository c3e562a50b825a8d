package models

import "time"

// DateRange is the resolved fetch window for one selected calendar day.
// FetchStartUTC <= LocalDayStart <= LocalDayEnd <= FetchEndUTC always holds,
// and both fetch bounds sit on UTC day boundaries.
type DateRange struct {
	DayKey                string // selected date, "2006-01-02"
	LocalDayStart         time.Time
	LocalDayEnd           time.Time
	FetchStartUTC         time.Time
	FetchEndUTC           time.Time
	TimezoneOffsetMinutes int
	IsDSTTransition       bool
	DaysToFetch           int
	ExpectedSampleCount   int
	TimezoneName          string
}

// StartMillis returns the fetch window start as epoch milliseconds.
func (r DateRange) StartMillis() int64 {
	return r.FetchStartUTC.UnixMilli()
}

// EndMillis returns the fetch window end as epoch milliseconds.
func (r DateRange) EndMillis() int64 {
	return r.FetchEndUTC.UnixMilli()
}

// ContainsMillis reports whether ts lies inside the fetch window, bounds inclusive.
func (r DateRange) ContainsMillis(ts int64) bool {
	return ts >= r.StartMillis() && ts <= r.EndMillis()
}

// Gap is a stretch without any reading longer than the configured threshold.
type Gap struct {
	Start           time.Time
	End             time.Time
	DurationMinutes float64
}

// Anomaly is a reading outside the physiologically plausible band.
type Anomaly struct {
	Timestamp int64
	Value     float64
	Kind      Kind
	Reason    string
}

// TimezoneIssueType classifies a timezone advisory.
type TimezoneIssueType string

const (
	// TimezoneIssueDST flags a day whose fetch window spans a DST change.
	TimezoneIssueDST TimezoneIssueType = "DST"
	// TimezoneIssueOffset flags an implausible UTC offset.
	TimezoneIssueOffset TimezoneIssueType = "Offset"
	// TimezoneIssueRange flags records or windows outside the expected span.
	TimezoneIssueRange TimezoneIssueType = "Range"
)

// TimezoneIssue is an advisory finding; it never aborts a request.
type TimezoneIssue struct {
	Type        TimezoneIssueType
	Description string
}

// Density compares observed against expected sample counts.
type Density struct {
	Expected        int
	Actual          int
	CoveragePercent float64
}

// QualityReport is derived per load and never persisted.
type QualityReport struct {
	HasGaps        bool
	Gaps           []Gap
	Anomalies      []Anomaly
	TimezoneIssues []TimezoneIssue
	Density        Density
}

// IssueCount returns the number of findings of any type.
func (q *QualityReport) IssueCount() int {
	if q == nil {
		return 0
	}
	return len(q.Gaps) + len(q.Anomalies) + len(q.TimezoneIssues)
}

// LongestGap returns the longest gap, or false when there are none.
func (q *QualityReport) LongestGap() (Gap, bool) {
	if q == nil || len(q.Gaps) == 0 {
		return Gap{}, false
	}
	longest := q.Gaps[0]
	for _, g := range q.Gaps[1:] {
		if g.DurationMinutes > longest.DurationMinutes {
			longest = g
		}
	}
	return longest, true
}
