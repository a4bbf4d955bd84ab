package store

import (
	"context"
	"errors"
	"testing"
)

func TestOpenEmbeddedDrivers(t *testing.T) {
	for _, driver := range []string{DriverDuckDB, DriverSQLite} {
		s, err := Open(context.Background(), driver, "")
		if err != nil {
			t.Fatalf("Open(%s) error = %v", driver, err)
		}
		if !s.Ready() {
			t.Fatalf("Open(%s) store not ready", driver)
		}
		if s.Driver() != driver {
			t.Fatalf("Driver() = %q", s.Driver())
		}
		if err := s.Ping(context.Background()); err != nil {
			t.Fatalf("Ping() error = %v", err)
		}
		if err := s.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		if s.Ready() {
			t.Fatalf("store still ready after Close")
		}
		if err := s.Close(); err != nil {
			t.Fatalf("second Close() error = %v", err)
		}
	}
}

func TestOpenSQLiteMemorySharedAcrossCalls(t *testing.T) {
	s, err := Open(context.Background(), DriverSQLite, "")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer func() { _ = s.Close() }()

	ctx := context.Background()
	if _, err := s.DB().ExecContext(ctx, `CREATE TABLE t (id INTEGER)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := s.DB().ExecContext(ctx, `INSERT INTO t (id) VALUES (1)`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	var count int
	if err := s.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM t`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d", count)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), "oracle", ""); err == nil {
		t.Fatal("expected error for unknown driver")
	}
	if _, err := Open(context.Background(), DriverPostgres, ""); err == nil {
		t.Fatal("expected error for postgres without dsn")
	}
}

func TestNilStoreIsNotReady(t *testing.T) {
	var s *Store
	if s.Ready() {
		t.Fatal("nil store reported ready")
	}
	if err := s.Ping(context.Background()); !errors.Is(err, ErrNotReady) {
		t.Fatalf("Ping() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

func TestPlaceholder(t *testing.T) {
	if got := New(nil, DriverPostgres).Placeholder(2); got != "$2" {
		t.Fatalf("Placeholder() = %q", got)
	}
	if got := New(nil, DriverDuckDB).Placeholder(2); got != "?" {
		t.Fatalf("Placeholder() = %q", got)
	}
	if got := Placeholder(DriverPostgres, 1); got != "$1" {
		t.Fatalf("Placeholder() = %q", got)
	}
	if got := Placeholder(DriverSQLite, 1); got != "?" {
		t.Fatalf("Placeholder() = %q", got)
	}
}
