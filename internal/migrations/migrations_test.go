package migrations

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/sqlchat/sqlchat/internal/store"
)

func TestLoadMigrationsSortsAndPairsUpDown(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/000002_two.up.sql":   {Data: []byte("SELECT 2;")},
		"sql/000002_two.down.sql": {Data: []byte("SELECT -2;")},
		"sql/000001_one.up.sql":   {Data: []byte("SELECT 1;")},
		"sql/000001_one.down.sql": {Data: []byte("SELECT -1;")},
	}

	items, err := loadMigrations(fsys, "sql")
	if err != nil {
		t.Fatalf("loadMigrations() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d", len(items))
	}
	if items[0].Version != 1 || items[1].Version != 2 {
		t.Fatalf("unexpected migration order: %+v", items)
	}
}

func TestLoadMigrationsErrorsWhenDownMissing(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/000001_one.up.sql": {Data: []byte("SELECT 1;")},
	}
	_, err := loadMigrations(fsys, "sql")
	if err == nil {
		t.Fatal("expected error for missing down migration")
	}
	if !strings.Contains(err.Error(), "missing down SQL") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewRunnerRejectsUnknownDialect(t *testing.T) {
	if _, err := NewRunner("oracle"); err == nil {
		t.Fatal("expected error for unknown dialect")
	}
}

func TestRunnerPlaceholderFollowsDialect(t *testing.T) {
	for dialect, want := range map[string]string{"postgres": "$1", "duckdb": "?", "sqlite": "?"} {
		runner, err := NewRunner(dialect)
		if err != nil {
			t.Fatalf("NewRunner(%q) error = %v", dialect, err)
		}
		if got := runner.placeholder(); got != want {
			t.Fatalf("placeholder(%q) = %q, want %q", dialect, got, want)
		}
	}
}

func TestEmbeddedMigrationsDeclareCalendarTables(t *testing.T) {
	for _, driver := range []string{store.DriverDuckDB, store.DriverSQLite, store.DriverPostgres} {
		items, err := loadMigrations(embeddedFS, "sql/"+driver)
		if err != nil {
			t.Fatalf("loadMigrations(%s) error = %v", driver, err)
		}
		if len(items) == 0 {
			t.Fatalf("no migrations for %s", driver)
		}
		up := items[0].UpSQL
		for _, snippet := range []string{`CREATE TABLE "user"`, "CREATE TABLE event", "CREATE TABLE task", "isCompleted", "userId"} {
			if !strings.Contains(up, snippet) {
				t.Fatalf("%s migration missing %q", driver, snippet)
			}
		}
	}
}

func TestRunnerAppliesAndRollsBackEmbeddedStores(t *testing.T) {
	for _, driver := range []string{store.DriverDuckDB, store.DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			ctx := context.Background()
			s, err := store.Open(ctx, driver, "")
			if err != nil {
				t.Fatalf("store.Open() error = %v", err)
			}
			defer func() { _ = s.Close() }()

			runner, err := NewRunner(driver)
			if err != nil {
				t.Fatalf("NewRunner() error = %v", err)
			}
			applied, err := runner.Up(ctx, s.DB(), 0)
			if err != nil {
				t.Fatalf("runner.Up() error = %v", err)
			}
			if applied != 1 {
				t.Fatalf("runner.Up() applied %d", applied)
			}

			again, err := runner.Up(ctx, s.DB(), 0)
			if err != nil {
				t.Fatalf("second runner.Up() error = %v", err)
			}
			if again != 0 {
				t.Fatalf("second runner.Up() applied %d", again)
			}

			if _, err := s.DB().ExecContext(ctx, `INSERT INTO "user" (username, password) VALUES ('user_1', 'password_1')`); err != nil {
				t.Fatalf("insert user: %v", err)
			}
			if _, err := s.DB().ExecContext(ctx, `INSERT INTO event (title, datetime, userId) VALUES ('Event 1', '2024-10-06 09:00:00', 1)`); err != nil {
				t.Fatalf("insert event: %v", err)
			}
			var id int64
			if err := s.DB().QueryRowContext(ctx, `SELECT id FROM event`).Scan(&id); err != nil {
				t.Fatalf("select event id: %v", err)
			}
			if id != 1 {
				t.Fatalf("event id = %d", id)
			}

			versions, err := runner.Applied(ctx, s.DB())
			if err != nil {
				t.Fatalf("runner.Applied() error = %v", err)
			}
			if len(versions) != 1 || versions[0] != 1 {
				t.Fatalf("Applied() = %v", versions)
			}

			rolledBack, err := runner.Down(ctx, s.DB(), 1)
			if err != nil {
				t.Fatalf("runner.Down() error = %v", err)
			}
			if rolledBack != 1 {
				t.Fatalf("runner.Down() rolled back %d", rolledBack)
			}
			if _, err := s.DB().ExecContext(ctx, `SELECT COUNT(*) FROM event`); err == nil {
				t.Fatal("event table still exists after Down")
			}
		})
	}
}
