package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/j-veylop/glucodash/internal/logger"
	"github.com/j-veylop/glucodash/internal/models"
)

// tableInfo is what the inspector needs to know about a table before reading it.
type tableInfo struct {
	name         string
	withoutRowID bool
	columns      []models.Column
}

// ListTables returns every user table with its columns and exact row count.
// Empty tables are reported too.
func (s *Session) ListTables(ctx context.Context) ([]models.TableSchema, error) {
	type master struct{ name, ddl string }

	rows, err := s.conn.QueryContext(ctx, sqlListTables)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	var entries []master
	for rows.Next() {
		var m master
		if err := rows.Scan(&m.name, &m.ddl); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan table entry: %w", err)
		}
		entries = append(entries, m)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	if err := rows.Close(); err != nil {
		logger.Error("failed to close rows", "error", err)
	}

	schemas := make([]models.TableSchema, 0, len(entries))
	for _, e := range entries {
		cols, err := s.columns(ctx, e.name)
		if err != nil {
			return nil, err
		}
		count, err := s.countRows(ctx, e.name)
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, models.TableSchema{
			Name:     e.name,
			Columns:  cols,
			RowCount: count,
		})
	}
	return schemas, nil
}

// ReadPage returns one 1-indexed page of rows in rowid order. The total row
// count is recomputed on every call.
func (s *Session) ReadPage(ctx context.Context, table string, page, pageSize int) (models.Page, error) {
	if page < 1 {
		return models.Page{}, fmt.Errorf("invalid page %d: pages start at 1", page)
	}
	if pageSize < 1 {
		return models.Page{}, fmt.Errorf("invalid page size %d", pageSize)
	}

	info, err := s.table(ctx, table)
	if err != nil {
		return models.Page{}, err
	}

	total, err := s.countRows(ctx, info.name)
	if err != nil {
		return models.Page{}, err
	}

	query := fmt.Sprintf("SELECT * FROM %s %s LIMIT ? OFFSET ?", quoteIdent(info.name), storageOrder(info))
	rows, err := s.collect(ctx, query, pageSize, (page-1)*pageSize)
	if err != nil {
		return models.Page{}, fmt.Errorf("failed to read page %d of %s: %w", page, info.name, err)
	}

	return models.Page{
		Rows:       rows,
		TotalRows:  total,
		PageNumber: page,
		PageSize:   pageSize,
	}, nil
}

// ReadAllRows returns every row of the table in rowid order.
func (s *Session) ReadAllRows(ctx context.Context, table string) ([]models.TableRow, error) {
	info, err := s.table(ctx, table)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT * FROM %s %s", quoteIdent(info.name), storageOrder(info))
	rows, err := s.collect(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", info.name, err)
	}
	return rows, nil
}

// ScanTimeGaps orders the rows by the instant in timeColumn and reports each adjacent pair
// whose distance is at least minGapMinutes. The time column is read as epoch
// milliseconds or as date-time text; NULL and unreadable times are skipped.
// valueColumn is optional.
func (s *Session) ScanTimeGaps(ctx context.Context, table, timeColumn, valueColumn string, minGapMinutes float64) ([]models.TimeGap, error) {
	if minGapMinutes <= 0 {
		minGapMinutes = DefaultMinGapMinutes
	}

	info, err := s.table(ctx, table)
	if err != nil {
		return nil, err
	}
	timeCol, err := info.column(timeColumn)
	if err != nil {
		return nil, err
	}
	valueExpr := "NULL"
	if valueColumn != "" {
		valueCol, err := info.column(valueColumn)
		if err != nil {
			return nil, err
		}
		valueExpr = quoteIdent(valueCol)
	}

	// SQLite orders every number before every string, and ISO text with
	// different offsets sorts lexically, so ordering happens after conversion.
	query := fmt.Sprintf(
		"SELECT %[1]s, %[2]s FROM %[3]s WHERE %[1]s IS NOT NULL %[4]s",
		quoteIdent(timeCol), valueExpr, quoteIdent(info.name), storageOrder(info),
	)
	points, err := s.timePoints(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s.%s: %w", info.name, timeCol, err)
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].ms < points[j].ms })

	const msPerMinute = 60_000.0
	var gaps []models.TimeGap
	for i := 1; i < len(points); i++ {
		prev, cur := points[i-1], points[i]
		minutes := float64(cur.ms-prev.ms) / msPerMinute
		if minutes >= minGapMinutes {
			gaps = append(gaps, models.TimeGap{
				StartTime:       prev.ms,
				EndTime:         cur.ms,
				DurationMinutes: minutes,
				StartValue:      prev.value,
				EndValue:        cur.value,
			})
		}
	}
	return gaps, nil
}

type timePoint struct {
	ms    int64
	value any
}

// timePoints reads (time, value) rows, keeping those whose time converts to
// epoch milliseconds.
func (s *Session) timePoints(ctx context.Context, query string) ([]timePoint, error) {
	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("failed to close rows", "error", err)
		}
	}()

	var points []timePoint
	for rows.Next() {
		var rawTime, value any
		if err := rows.Scan(&rawTime, &value); err != nil {
			return nil, err
		}
		if ms, ok := EpochMillis(rawTime); ok {
			points = append(points, timePoint{ms: ms, value: value})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return points, nil
}

// ExportJSON writes every row of the table to w as a JSON array.
func (s *Session) ExportJSON(ctx context.Context, table string, w io.Writer) (int, error) {
	rows, err := s.ReadAllRows(ctx, table)
	if err != nil {
		return 0, err
	}
	if rows == nil {
		rows = []models.TableRow{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return 0, fmt.Errorf("failed to encode rows: %w", err)
	}
	return len(rows), nil
}

// table resolves a table name, ignoring case, and loads its columns.
func (s *Session) table(ctx context.Context, name string) (tableInfo, error) {
	var info tableInfo
	var ddl string
	err := s.conn.QueryRowContext(ctx, sqlFindTable, name).Scan(&info.name, &ddl)
	if errors.Is(err, sql.ErrNoRows) {
		return tableInfo{}, fmt.Errorf("%w: %q", ErrUnknownTable, name)
	}
	if err != nil {
		return tableInfo{}, fmt.Errorf("failed to look up table %q: %w", name, err)
	}
	info.withoutRowID = strings.Contains(strings.ToUpper(ddl), "WITHOUT ROWID")

	info.columns, err = s.columns(ctx, info.name)
	if err != nil {
		return tableInfo{}, err
	}
	return info, nil
}

func (t tableInfo) column(name string) (string, error) {
	for _, c := range t.columns {
		if strings.EqualFold(c.Name, name) {
			return c.Name, nil
		}
	}
	return "", fmt.Errorf("%w: %q in table %q", ErrUnknownColumn, name, t.name)
}

func (s *Session) columns(ctx context.Context, table string) ([]models.Column, error) {
	rows, err := s.conn.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("failed to close rows", "error", err)
		}
	}()

	var cols []models.Column
	for rows.Next() {
		var (
			cid      int
			name     string
			declType string
			notNull  int
			dflt     any
			pk       int
		)
		if err := rows.Scan(&cid, &name, &declType, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column of %s: %w", table, err)
		}
		cols = append(cols, models.Column{
			Name:         name,
			DeclaredType: declType,
			IsPrimaryKey: pk > 0,
			IsNotNull:    notNull != 0,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	return cols, nil
}

func (s *Session) countRows(ctx context.Context, table string) (int64, error) {
	var n int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdent(table))
	if err := s.conn.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rows of %s: %w", table, err)
	}
	return n, nil
}

// collect runs query and materializes every row. Nothing is returned on error.
func (s *Session) collect(ctx context.Context, query string, args ...any) ([]models.TableRow, error) {
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("failed to close rows", "error", err)
		}
	}()

	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []models.TableRow
	values := make([]any, len(names))
	ptrs := make([]any, len(names))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(models.TableRow, len(names))
		for i, name := range names {
			row[name] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func storageOrder(info tableInfo) string {
	if info.withoutRowID {
		return ""
	}
	return "ORDER BY rowid"
}

// quoteIdent quotes an SQL identifier, doubling embedded quotes.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
