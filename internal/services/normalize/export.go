package normalize

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/j-veylop/glucodash/internal/db"
	"github.com/j-veylop/glucodash/internal/models"
)

// UnknownDevice is recorded when an export row carries no device identifier.
const UnknownDevice = "unknown-device"

var (
	// ErrNoMapping is returned when a table has no recognizable timestamp or value column.
	ErrNoMapping = errors.New("no glucose columns found")

	timestampAliases = []string{"timestamp", "date", "time", "datetime", "recorded_at", "created_at"}
	valueAliases     = []string{"value", "calculated_value", "glucose", "sgv", "reading", "mbg"}
	deviceAliases    = []string{"device", "device_id", "source", "sensor", "serial"}
)

// ExportMapping names the columns of an export table that carry glucose readings.
type ExportMapping struct {
	TimestampColumn string
	ValueColumn     string
	DeviceColumn    string // optional
	Kind            models.Kind
}

// DefaultExportMapping uses the conventional column names.
func DefaultExportMapping() ExportMapping {
	return ExportMapping{
		TimestampColumn: "timestamp",
		ValueColumn:     "value",
		DeviceColumn:    "device",
		Kind:            models.KindSensor,
	}
}

// DetectExportMapping picks the timestamp, value and device columns of a table
// by conventional names and their aliases.
func DetectExportMapping(schema models.TableSchema) (ExportMapping, error) {
	m := ExportMapping{Kind: models.KindSensor}
	m.TimestampColumn = pickColumn(schema, timestampAliases)
	m.ValueColumn = pickColumn(schema, valueAliases)
	m.DeviceColumn = pickColumn(schema, deviceAliases)

	if m.TimestampColumn == "" || m.ValueColumn == "" {
		return ExportMapping{}, fmt.Errorf("%w in table %q", ErrNoMapping, schema.Name)
	}
	return m, nil
}

func pickColumn(schema models.TableSchema, aliases []string) string {
	for _, alias := range aliases {
		if c, ok := schema.Column(alias); ok {
			return c.Name
		}
	}
	return ""
}

// FromExportRow converts one export row into a canonical record. A row whose
// timestamp cannot be read stays unplaceable; a row whose value cannot be read
// is an error.
func FromExportRow(row models.TableRow, m ExportMapping) (models.Record, error) {
	kind := m.Kind
	if kind == "" {
		kind = models.KindSensor
	}
	rec := models.Record{
		Kind:   kind,
		Device: UnknownDevice,
	}

	raw, ok := lookup(row, m.ValueColumn)
	if !ok {
		return models.Record{}, fmt.Errorf("row has no value column %q", m.ValueColumn)
	}
	v, err := toFloat(raw)
	if err != nil {
		return models.Record{}, fmt.Errorf("failed to read value column %q: %w", m.ValueColumn, err)
	}
	rec.Value = v

	if m.DeviceColumn != "" {
		if d, ok := lookup(row, m.DeviceColumn); ok {
			if s := toString(d); s != "" {
				rec.Device = s
			}
		}
	}

	if tv, ok := lookup(row, m.TimestampColumn); ok {
		if ts, ok := db.EpochMillis(tv); ok {
			rec.Timestamp = ts
			rec.HourOfDay = HostHourOfDay(ts)
			rec.Placed = true
		}
	}
	return rec, nil
}

// FromExportRows converts rows, returning the records and the number of rows
// that could not be read.
func FromExportRows(rows []models.TableRow, m ExportMapping) ([]models.Record, int) {
	out := make([]models.Record, 0, len(rows))
	rejected := 0
	for _, row := range rows {
		rec, err := FromExportRow(row, m)
		if err != nil {
			rejected++
			continue
		}
		out = append(out, rec)
	}
	return out, rejected
}

// ParseTimestamp parses an ISO-8601 or SQLite date-time string.
func ParseTimestamp(s string) (time.Time, error) {
	t, ok := db.ParseTime(strings.TrimSpace(s))
	if !ok {
		return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
	}
	return t, nil
}

func lookup(row models.TableRow, column string) (any, bool) {
	if column == "" {
		return nil, false
	}
	if v, ok := row[column]; ok && v != nil {
		return v, true
	}
	for k, v := range row {
		if strings.EqualFold(k, column) && v != nil {
			return v, true
		}
	}
	return nil, false
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int:
		return float64(n), nil
	case []byte:
		return strconv.ParseFloat(strings.TrimSpace(string(n)), 64)
	case string:
		return strconv.ParseFloat(strings.TrimSpace(n), 64)
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return fmt.Sprint(v)
	}
}
