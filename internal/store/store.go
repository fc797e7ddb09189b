// Package store handles tracker, user, and session persistence.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/timesince/internal/store/migrate"

	_ "github.com/duckdb/duckdb-go/v2" // DuckDB driver.
	_ "modernc.org/sqlite"            // SQLite driver.
)

// Supported database drivers.
const (
	DriverSQLite = "sqlite"
	DriverDuckDB = "duckdb"
)

// timeLayout is fixed width so text columns sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned when an update or delete matches no record.
var ErrNotFound = errors.New("record not found")

// OpError reports which store operation failed.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

func opErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Err: err}
}

// Store wraps database access for trackers and identities.
type Store struct {
	db     *sql.DB
	driver string
	now    func() time.Time
}

// Open opens or creates the SQLite database at path and applies migrations.
func Open(path string) (*Store, error) {
	return OpenDriver(DriverSQLite, path)
}

// OpenDriver opens a database with the named driver. An empty DuckDB path
// selects an in-memory database.
func OpenDriver(driver, path string) (*Store, error) {
	switch driver {
	case "", DriverSQLite:
		driver = DriverSQLite
	case DriverDuckDB:
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open(driver, path)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		// SQLite allows one writer; serialise through a single connection.
		db.SetMaxOpenConns(1)
	}
	if err := migrate.NewRunner(db).Run(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return &Store{db: db, driver: driver, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Driver returns the database driver name.
func (s *Store) Driver() string {
	return s.driver
}

// Schema reports the applied migration version and how many are pending.
func (s *Store) Schema() (current, pending int, err error) {
	current, pending, err = migrate.NewRunner(s.db).Status()
	if err != nil {
		return 0, 0, opErr("read schema version", err)
	}
	return current, pending, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(v string) (time.Time, error) {
	return time.Parse(timeLayout, v)
}

func closeRows(rows *sql.Rows) {
	if cerr := rows.Close(); cerr != nil {
		// Best-effort rows close.
		_ = cerr
	}
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
