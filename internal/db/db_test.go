package db

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// buildFixture creates a database file with the given statements and returns its bytes.
func buildFixture(t *testing.T, stmts ...string) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.db")

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("Failed to open fixture: %v", err)
	}
	for _, stmt := range stmts {
		if _, err := sqlDB.ExecContext(context.Background(), stmt); err != nil {
			_ = sqlDB.Close()
			t.Fatalf("Failed to execute %q: %v", stmt, err)
		}
	}
	if err := sqlDB.Close(); err != nil {
		t.Fatalf("Failed to close fixture: %v", err)
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read fixture: %v", err)
	}
	return buf
}

func glucoseFixture(t *testing.T) []byte {
	t.Helper()
	return buildFixture(t,
		`CREATE TABLE readings (id INTEGER PRIMARY KEY, t INTEGER NOT NULL, v REAL, device TEXT)`,
		`INSERT INTO readings (t, v, device) VALUES (0, 100, 'cgm'), (1800000, 110, 'cgm'), (9000000, 90, NULL)`,
		`CREATE TABLE empty_table (x TEXT)`,
	)
}

func TestOpen(t *testing.T) {
	s, err := Open(context.Background(), glucoseFixture(t))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if s.ID() == "" {
		t.Error("Expected a session id")
	}
	dir := s.dir
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("Staging directory missing: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Error("Staging directory was not removed")
	}

	if _, err := s.conn.QueryContext(context.Background(), "SELECT 1"); err == nil {
		t.Error("Expected error querying closed session")
	}
}

func TestOpen_SessionsAreIndependent(t *testing.T) {
	buf := glucoseFixture(t)
	a, err := Open(context.Background(), buf)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer a.Close()
	b, err := Open(context.Background(), buf)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer b.Close()

	if a.ID() == b.ID() {
		t.Error("Sessions share an id")
	}
	if a.path == b.path {
		t.Error("Sessions share a staged file")
	}
}

func TestOpen_InvalidBuffer(t *testing.T) {
	valid := glucoseFixture(t)
	corrupt := append([]byte(nil), valid[:headerSize]...)
	corrupt = append(corrupt, make([]byte, 4096)...)
	for i := 100; i < len(corrupt); i++ {
		corrupt[i] = 0xAB
	}

	tests := []struct {
		name string
		buf  []byte
	}{
		{"nil", nil},
		{"text", []byte("timestamp,value\n0,100\n")},
		{"short header", []byte(sqliteHeader)},
		{"header then garbage", corrupt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tables, err := ListTables(context.Background(), tt.buf)
			if err == nil {
				t.Fatal("Expected error for invalid buffer")
			}
			if tables != nil {
				t.Errorf("Expected no tables, got %v", tables)
			}
		})
	}
}

func TestOpen_NotDatabaseSentinel(t *testing.T) {
	_, err := Open(context.Background(), []byte("definitely not sqlite"))
	if !errors.Is(err, ErrNotDatabase) {
		t.Errorf("Expected ErrNotDatabase, got %v", err)
	}
}

func TestOpen_ReadOnly(t *testing.T) {
	s, err := Open(context.Background(), glucoseFixture(t))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	if _, err := s.conn.ExecContext(context.Background(), "DELETE FROM readings"); err == nil {
		t.Error("Expected write to fail on a read-only session")
	}
}

func TestOpen_QueryOnlyOnEveryConnection(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, glucoseFixture(t))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	// Hold two connections at once so the pool has to open a second one.
	var conns []*sql.Conn
	for range 2 {
		c, err := s.conn.Conn(ctx)
		if err != nil {
			t.Fatalf("Conn failed: %v", err)
		}
		conns = append(conns, c)
	}
	for i, c := range conns {
		var queryOnly int
		if err := c.QueryRowContext(ctx, "PRAGMA query_only").Scan(&queryOnly); err != nil {
			t.Fatalf("PRAGMA query_only on connection %d: %v", i, err)
		}
		if queryOnly != 1 {
			t.Errorf("connection %d: query_only = %d, want 1", i, queryOnly)
		}
		_ = c.Close()
	}
}

func TestReadOnlyDSN(t *testing.T) {
	dsn := readOnlyDSN("/tmp/x/upload.db")
	for _, want := range []string{"file:", "mode=ro", "query_only%281%29"} {
		if !strings.Contains(dsn, want) {
			t.Errorf("DSN %q missing %q", dsn, want)
		}
	}
}

func TestOpen_WALExport(t *testing.T) {
	buf := buildFixture(t,
		`PRAGMA journal_mode=WAL`,
		`CREATE TABLE entries (ts INTEGER, sgv INTEGER)`,
		`INSERT INTO entries VALUES (1, 100)`,
	)

	tables, err := ListTables(context.Background(), buf)
	if err != nil {
		t.Fatalf("ListTables failed: %v", err)
	}
	if len(tables) != 1 || tables[0].RowCount != 1 {
		t.Errorf("Unexpected tables %+v", tables)
	}
}

func TestRollbackJournal(t *testing.T) {
	buf := make([]byte, headerSize)
	copy(buf, sqliteHeader)
	buf[18], buf[19] = 2, 2

	out := rollbackJournal(buf)
	if out[18] != 1 || out[19] != 1 {
		t.Errorf("Expected rollback journal bytes, got %d %d", out[18], out[19])
	}
	if buf[18] != 2 {
		t.Error("Input buffer was modified")
	}
}

func TestQuoteIdent(t *testing.T) {
	tests := map[string]string{
		"readings":   `"readings"`,
		`we"ird`:     `"we""ird"`,
		"two words":  `"two words"`,
		`"quoted"`:   `"""quoted"""`,
		"drop table": `"drop table"`,
	}
	for in, want := range tests {
		if got := quoteIdent(in); got != want {
			t.Errorf("quoteIdent(%q) = %s, want %s", in, got, want)
		}
	}
}
