package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/j-veylop/glucodash/internal/db"
	"github.com/j-veylop/glucodash/internal/logger"
	"github.com/j-veylop/glucodash/internal/models"
	"github.com/j-veylop/glucodash/internal/services/normalize"
)

// ErrNoExportOpen is returned by inspector operations before a file was opened.
var ErrNoExportOpen = errors.New("no export file is open")

// inspector holds at most one open export session.
type inspector struct {
	mu             sync.Mutex
	session        *db.Session
	file           models.ExportFile
	scanGapMinutes float64
}

// ExportReport compares an export table against the selected day.
type ExportReport struct {
	Table    string
	Mapping  normalize.ExportMapping
	Range    models.DateRange
	Quality  models.QualityReport
	Records  []models.Record
	Total    int
	Rejected int
}

func (i *inspector) current() (*db.Session, models.ExportFile, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.session == nil {
		return nil, models.ExportFile{}, ErrNoExportOpen
	}
	return i.session, i.file, nil
}

func (i *inspector) replace(s *db.Session, file models.ExportFile) error {
	i.mu.Lock()
	old := i.session
	i.session = s
	i.file = file
	i.mu.Unlock()

	if old != nil {
		return old.Close()
	}
	return nil
}

// closeIf disposes the session when it was opened from path.
func (i *inspector) closeIf(path string) bool {
	i.mu.Lock()
	if i.session == nil || i.file.Path != path {
		i.mu.Unlock()
		return false
	}
	s := i.session
	i.session = nil
	i.file = models.ExportFile{}
	i.mu.Unlock()

	if err := s.Close(); err != nil {
		logger.Error("failed to close inspector session", "session", s.ID(), "error", err)
	}
	return true
}

func (i *inspector) close() error {
	return i.replace(nil, models.ExportFile{})
}

// OpenExport loads a file of the import directory into a fresh inspector
// session, disposing the previous one.
func (m *Manager) OpenExport(ctx context.Context, path string) (models.ExportFile, error) {
	buf, err := m.imports.Open(path)
	if err != nil {
		return models.ExportFile{}, err
	}

	s, err := db.Open(ctx, buf)
	if err != nil {
		return models.ExportFile{}, fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
	}

	file := models.ExportFile{Path: path, Name: filepath.Base(path), Size: int64(len(buf))}
	for _, f := range m.imports.Files() {
		if f.Path == m.imports.Active() {
			file = f
			break
		}
	}

	if err := m.inspector.replace(s, file); err != nil {
		logger.Warn("failed to close previous inspector session", "error", err)
	}
	logger.Info("opened export", "file", file.Name, "session", s.ID(), "bytes", s.Size())
	return file, nil
}

// CloseExport disposes the current inspector session.
func (m *Manager) CloseExport() error {
	return m.inspector.close()
}

// OpenedExport returns the file behind the current inspector session.
func (m *Manager) OpenedExport() (models.ExportFile, bool) {
	_, file, err := m.inspector.current()
	return file, err == nil
}

// ExportTables lists the tables of the open export.
func (m *Manager) ExportTables(ctx context.Context) ([]models.TableSchema, error) {
	s, _, err := m.inspector.current()
	if err != nil {
		return nil, err
	}
	return s.ListTables(ctx)
}

// ExportPage reads one page of a table of the open export.
func (m *Manager) ExportPage(ctx context.Context, table string, page int) (models.Page, error) {
	s, _, err := m.inspector.current()
	if err != nil {
		return models.Page{}, err
	}
	return s.ReadPage(ctx, table, page, db.DefaultPageSize)
}

// ExportGaps scans a table of the open export for gaps. With no explicit
// columns the glucose mapping of the table is used.
func (m *Manager) ExportGaps(ctx context.Context, table, timeColumn, valueColumn string) ([]models.TimeGap, error) {
	s, _, err := m.inspector.current()
	if err != nil {
		return nil, err
	}

	if timeColumn == "" {
		mapping, err := m.exportMapping(ctx, s, table)
		if err != nil {
			return nil, err
		}
		timeColumn, valueColumn = mapping.TimestampColumn, mapping.ValueColumn
	}

	return s.ScanTimeGaps(ctx, table, timeColumn, valueColumn, m.inspector.scanGapMinutes)
}

// ExportTableJSON writes a table of the open export to a JSON file next to
// the import directory and returns its path.
func (m *Manager) ExportTableJSON(ctx context.Context, table string) (string, int, error) {
	s, file, err := m.inspector.current()
	if err != nil {
		return "", 0, err
	}

	dir := filepath.Join(filepath.Dir(m.imports.Dir()), "exports")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", 0, fmt.Errorf("failed to create export directory: %w", err)
	}

	base := strings.TrimSuffix(file.Name, filepath.Ext(file.Name))
	name := fmt.Sprintf("%s-%s-%s.json", base, table, time.Now().Format("20060102-150405"))
	path := filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create %s: %w", name, err)
	}

	n, err := s.ExportJSON(ctx, table, f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", 0, err
	}

	logger.Info("exported table", "table", table, "rows", n, "path", path)
	return path, n, nil
}

// ExportCoverage maps a table of the open export to glucose records and runs
// the quality analyzer over the ones that fall in the selected day.
func (m *Manager) ExportCoverage(ctx context.Context, table string) (*ExportReport, error) {
	s, _, err := m.inspector.current()
	if err != nil {
		return nil, err
	}

	mapping, err := m.exportMapping(ctx, s, table)
	if err != nil {
		return nil, err
	}

	dr, err := m.resolver.Resolve(m.aggregator.Snapshot().Controls.SelectedDate, m.cfg.Timezone)
	if err != nil {
		return nil, err
	}

	rows, err := s.ReadAllRows(ctx, table)
	if err != nil {
		return nil, err
	}
	records, rejected := normalize.FromExportRows(rows, mapping)

	var day []models.Record
	for _, r := range records {
		if r.Placed && dr.ContainsMillis(r.Timestamp) {
			day = append(day, r)
		}
	}

	var manual, sensor []models.Record
	if mapping.Kind == models.KindManual {
		manual = day
	} else {
		sensor = day
	}

	return &ExportReport{
		Table:    table,
		Mapping:  mapping,
		Range:    dr,
		Quality:  m.analyzer.Analyze(manual, sensor, dr),
		Records:  day,
		Total:    len(rows),
		Rejected: rejected,
	}, nil
}

func (m *Manager) exportMapping(ctx context.Context, s *db.Session, table string) (normalize.ExportMapping, error) {
	tables, err := s.ListTables(ctx)
	if err != nil {
		return normalize.ExportMapping{}, err
	}
	for _, t := range tables {
		if strings.EqualFold(t.Name, table) {
			return normalize.DetectExportMapping(t)
		}
	}
	return normalize.ExportMapping{}, fmt.Errorf("%w: %s", db.ErrUnknownTable, table)
}
