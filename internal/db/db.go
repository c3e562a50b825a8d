// Package db inspects uploaded SQLite export files read-only.
package db

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/j-veylop/glucodash/internal/logger"

	// Import modernc.org/sqlite as a blank import to register the driver
	_ "modernc.org/sqlite"
)

var (
	// ErrNotDatabase is returned when a buffer is not a readable SQLite database.
	ErrNotDatabase = errors.New("not a valid SQLite database")
	// ErrUnknownTable is returned when a referenced table does not exist.
	ErrUnknownTable = errors.New("unknown table")
	// ErrUnknownColumn is returned when a referenced column does not exist.
	ErrUnknownColumn = errors.New("unknown column")
)

// Session is a read-only handle on one uploaded database buffer. It is owned
// by the caller and must be closed when the upload is replaced.
type Session struct {
	conn *sql.DB
	id   string
	dir  string
	path string
	size int
}

// Open loads buf into a private temporary file and opens it read-only.
func Open(ctx context.Context, buf []byte) (*Session, error) {
	if len(buf) < headerSize || !bytes.HasPrefix(buf, []byte(sqliteHeader)) {
		return nil, fmt.Errorf("%w: missing SQLite header (%d bytes)", ErrNotDatabase, len(buf))
	}

	dir, err := os.MkdirTemp("", "glucodash-inspect-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	path := filepath.Join(dir, "upload.db")
	if err := os.WriteFile(path, rollbackJournal(buf), 0o600); err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to stage database: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", readOnlyDSN(path))
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Session{
		conn: sqlDB,
		id:   uuid.NewString(),
		dir:  dir,
		path: path,
		size: len(buf),
	}

	if err := s.configure(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	logger.Debug("inspector session opened", "session", s.id, "bytes", s.size)
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Size returns the size in bytes of the loaded buffer.
func (s *Session) Size() int {
	return s.size
}

// readOnlyDSN opens path read-only. The pragmas ride in the DSN so every
// pooled connection gets them, not only the first one.
func readOnlyDSN(path string) string {
	q := url.Values{}
	q.Set("mode", "ro")
	q.Add("_pragma", "query_only(1)")
	q.Add("_pragma", "temp_store(2)")
	return (&url.URL{Scheme: "file", Path: path, RawQuery: q.Encode()}).String()
}

// configure verifies the file parses.
func (s *Session) configure(ctx context.Context) error {
	if err := s.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrNotDatabase, err)
	}

	var n int
	if err := s.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master").Scan(&n); err != nil {
		return fmt.Errorf("%w: %v", ErrNotDatabase, err)
	}
	return nil
}

// Close releases the connection and removes the staged copy.
func (s *Session) Close() error {
	err := s.conn.Close()
	if rmErr := os.RemoveAll(s.dir); rmErr != nil && err == nil {
		err = rmErr
	}
	logger.Debug("inspector session closed", "session", s.id)
	return err
}

// rollbackJournal returns a copy of buf whose header declares the legacy
// rollback journal, so WAL-mode exports open without -wal/-shm side files.
func rollbackJournal(buf []byte) []byte {
	out := make([]byte, len(buf))
	copy(out, buf)
	if out[18] == 2 && out[19] == 2 {
		out[18], out[19] = 1, 1
	}
	return out
}
