// Package store owns the relational database the chat pipeline queries.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/marcboeker/go-duckdb/v2"
	_ "modernc.org/sqlite"
)

const (
	DriverDuckDB   = "duckdb"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

var ErrNotReady = errors.New("database not ready")

type Store struct {
	db     *sql.DB
	driver string
	closed atomic.Bool
}

// Open connects to the configured database. DuckDB and SQLite default to an
// in-memory database and are limited to a single connection so every caller
// sees the same data.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	driver = strings.ToLower(strings.TrimSpace(driver))
	var driverName string
	embedded := true
	switch driver {
	case DriverDuckDB:
		driverName = "duckdb"
	case DriverSQLite:
		driverName = "sqlite"
		if strings.TrimSpace(dsn) == "" {
			dsn = ":memory:"
		}
	case DriverPostgres:
		driverName = "pgx"
		embedded = false
		if strings.TrimSpace(dsn) == "" {
			return nil, fmt.Errorf("postgres dsn is required")
		}
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if embedded {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return New(db, driver), nil
}

// New wraps an existing handle.
func New(db *sql.DB, driver string) *Store {
	return &Store{db: db, driver: driver}
}

func (s *Store) DB() *sql.DB {
	if s == nil {
		return nil
	}
	return s.db
}

func (s *Store) Driver() string {
	if s == nil {
		return ""
	}
	return s.driver
}

func (s *Store) Ready() bool {
	return s != nil && s.db != nil && !s.closed.Load()
}

func (s *Store) Ping(ctx context.Context) error {
	if !s.Ready() {
		return ErrNotReady
	}
	return s.db.PingContext(ctx)
}

// Placeholder returns the bind parameter marker for position n (1-based).
func (s *Store) Placeholder(n int) string {
	return Placeholder(s.Driver(), n)
}

// Placeholder returns the bind parameter marker the driver expects for
// position n (1-based).
func Placeholder(driver string, n int) string {
	if driver == DriverPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}
