package db

import (
	"strconv"
	"strings"
	"time"
)

var timeFormats = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05Z",
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05 -0700 MST",
	"2006-01-02 15:04:05 +0000 UTC",
}

// ParseTime parses the date-time text forms SQLite and ISO-8601 exports use.
// Strings without a zone are read as UTC.
func ParseTime(s string) (time.Time, bool) {
	for _, format := range timeFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// EpochMillis reads a cell as epoch milliseconds. Numbers are taken as
// milliseconds; text is either a number or a date-time string.
func EpochMillis(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	case time.Time:
		return n.UnixMilli(), true
	case []byte:
		return epochFromText(string(n))
	case string:
		return epochFromText(n)
	default:
		return 0, false
	}
}

func epochFromText(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f), true
	}
	if t, ok := ParseTime(s); ok {
		return t.UnixMilli(), true
	}
	return 0, false
}
