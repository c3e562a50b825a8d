package models

import "strings"

// Column describes one column of a table discovered in an uploaded database.
type Column struct {
	Name         string
	DeclaredType string
	IsPrimaryKey bool
	IsNotNull    bool
}

// TableSchema describes a user table of an uploaded database as found at runtime.
type TableSchema struct {
	Name     string
	Columns  []Column
	RowCount int64
}

// HasColumn reports whether the table has a column with the given name (case-insensitive).
func (t TableSchema) HasColumn(name string) bool {
	_, ok := t.Column(name)
	return ok
}

// Column looks up a column by name, ignoring case.
func (t TableSchema) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Column{}, false
}

// TableRow maps column name to the value as stored.
type TableRow map[string]any

// Page is one page of rows plus the table's total row count at read time.
type Page struct {
	Rows       []TableRow
	TotalRows  int64
	PageNumber int
	PageSize   int
}

// TotalPages returns the number of pages for the page size.
func (p Page) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	return int((p.TotalRows + int64(p.PageSize) - 1) / int64(p.PageSize))
}

// TimeGap is a gap between two adjacent rows of a time-ordered column.
type TimeGap struct {
	StartTime       int64 // epoch milliseconds
	EndTime         int64
	DurationMinutes float64
	StartValue      any
	EndValue        any
}

// ExportFile is a database file found in the import directory.
type ExportFile struct {
	Path    string
	Name    string
	Size    int64
	ModTime int64
}
