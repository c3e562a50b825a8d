package db

import (
	"context"
	"io"

	"github.com/j-veylop/glucodash/internal/models"
)

// The functions below are self-contained: each loads buf into a fresh session
// and disposes of it before returning. Concurrent calls on the same buffer
// share nothing.

// ListTables lists the user tables of buf.
func ListTables(ctx context.Context, buf []byte) ([]models.TableSchema, error) {
	var out []models.TableSchema
	err := withSession(ctx, buf, func(s *Session) (err error) {
		out, err = s.ListTables(ctx)
		return err
	})
	return out, err
}

// ReadPage reads one page of a table of buf.
func ReadPage(ctx context.Context, buf []byte, table string, page, pageSize int) (models.Page, error) {
	var out models.Page
	err := withSession(ctx, buf, func(s *Session) (err error) {
		out, err = s.ReadPage(ctx, table, page, pageSize)
		return err
	})
	return out, err
}

// ReadAllRows reads every row of a table of buf.
func ReadAllRows(ctx context.Context, buf []byte, table string) ([]models.TableRow, error) {
	var out []models.TableRow
	err := withSession(ctx, buf, func(s *Session) (err error) {
		out, err = s.ReadAllRows(ctx, table)
		return err
	})
	return out, err
}

// ScanTimeGaps scans a table of buf for gaps in timeColumn.
func ScanTimeGaps(ctx context.Context, buf []byte, table, timeColumn, valueColumn string, minGapMinutes float64) ([]models.TimeGap, error) {
	var out []models.TimeGap
	err := withSession(ctx, buf, func(s *Session) (err error) {
		out, err = s.ScanTimeGaps(ctx, table, timeColumn, valueColumn, minGapMinutes)
		return err
	})
	return out, err
}

// ExportJSON writes every row of a table of buf to w as JSON.
func ExportJSON(ctx context.Context, buf []byte, table string, w io.Writer) (int, error) {
	var n int
	err := withSession(ctx, buf, func(s *Session) (err error) {
		n, err = s.ExportJSON(ctx, table, w)
		return err
	})
	return n, err
}

func withSession(ctx context.Context, buf []byte, fn func(*Session) error) error {
	s, err := Open(ctx, buf)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()
	return fn(s)
}
