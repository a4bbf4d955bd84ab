package seed

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/sqlchat/sqlchat/internal/store"
)

type Loader struct {
	store  *store.Store
	logger *slog.Logger
}

func NewLoader(s *store.Store, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{store: s, logger: logger.With(slog.String("component", "seed.loader"))}
}

// IsEmpty reports whether none of the calendar tables hold rows.
func (l *Loader) IsEmpty(ctx context.Context) (bool, error) {
	if !l.store.Ready() {
		return false, store.ErrNotReady
	}
	for _, table := range TableNames() {
		var count int64
		if err := l.store.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM `+quoteIdent(table)).Scan(&count); err != nil {
			return false, fmt.Errorf("count %s rows: %w", table, err)
		}
		if count > 0 {
			return false, nil
		}
	}
	return true, nil
}

// Load inserts the dataset in one transaction. Ids are left to the database
// so later inserts keep counting from the seeded rows; on empty tables the
// assigned ids match the dataset's.
func (l *Loader) Load(ctx context.Context, ds Dataset) (Counts, error) {
	if !l.store.Ready() {
		return Counts{}, store.ErrNotReady
	}
	tx, err := l.store.DB().BeginTx(ctx, nil)
	if err != nil {
		return Counts{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	p := l.store.Placeholder
	userStmt := fmt.Sprintf(`INSERT INTO "user" (username, password) VALUES (%s, %s)`, p(1), p(2))
	for _, user := range ds.Users {
		if _, err := tx.ExecContext(ctx, userStmt, user.Username, user.Password); err != nil {
			return Counts{}, fmt.Errorf("insert user %d: %w", user.ID, err)
		}
	}
	eventStmt := fmt.Sprintf(`INSERT INTO event (title, datetime, userId) VALUES (%s, %s, %s)`, p(1), p(2), p(3))
	for _, event := range ds.Events {
		if _, err := tx.ExecContext(ctx, eventStmt, event.Title, event.Datetime, event.UserID); err != nil {
			return Counts{}, fmt.Errorf("insert event %d: %w", event.ID, err)
		}
	}
	taskStmt := fmt.Sprintf(`INSERT INTO task (title, datetime, isCompleted, userId) VALUES (%s, %s, %s, %s)`, p(1), p(2), p(3), p(4))
	for _, task := range ds.Tasks {
		if _, err := tx.ExecContext(ctx, taskStmt, task.Title, task.Datetime, task.IsCompleted, task.UserID); err != nil {
			return Counts{}, fmt.Errorf("insert task %d: %w", task.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return Counts{}, fmt.Errorf("commit seed: %w", err)
	}

	counts := ds.Counts()
	l.logger.InfoContext(ctx, "seed data loaded",
		slog.Int("users", counts.Users),
		slog.Int("events", counts.Events),
		slog.Int("tasks", counts.Tasks),
	)
	return counts, nil
}

var parquetColumns = map[string]struct {
	target string
	source string
}{
	TableUser:  {target: "username, password", source: "username, password"},
	TableEvent: {target: "title, datetime, userId", source: "title, datetime, user_id"},
	TableTask:  {target: "title, datetime, isCompleted, userId", source: "title, datetime, is_completed, user_id"},
}

// LoadParquet lets DuckDB read the snapshot files directly with read_parquet.
// Other drivers decode the files and go through Load.
func (l *Loader) LoadParquet(ctx context.Context, files map[string][]byte) (Counts, error) {
	if !l.store.Ready() {
		return Counts{}, store.ErrNotReady
	}
	if l.store.Driver() != store.DriverDuckDB {
		ds, err := DecodeDataset(files)
		if err != nil {
			return Counts{}, err
		}
		return l.Load(ctx, ds)
	}

	workDir, err := os.MkdirTemp("", "sqlchat-seed-")
	if err != nil {
		return Counts{}, fmt.Errorf("create seed temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	tx, err := l.store.DB().BeginTx(ctx, nil)
	if err != nil {
		return Counts{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var counts Counts
	for _, table := range TableNames() {
		data, ok := files[table]
		if !ok {
			return Counts{}, fmt.Errorf("missing %s parquet file", table)
		}
		localPath := filepath.Join(workDir, table+".parquet")
		if err := os.WriteFile(localPath, data, 0o600); err != nil {
			return Counts{}, fmt.Errorf("write local parquet file %q: %w", localPath, err)
		}
		cols := parquetColumns[table]
		stmt := fmt.Sprintf(`INSERT INTO %s (%s) SELECT %s FROM read_parquet(%s) ORDER BY id`,
			quoteIdent(table), cols.target, cols.source, quoteString(localPath))
		inserted, err := execCount(ctx, tx, stmt)
		if err != nil {
			return Counts{}, fmt.Errorf("load %s from parquet: %w", table, err)
		}
		switch table {
		case TableUser:
			counts.Users = inserted
		case TableEvent:
			counts.Events = inserted
		case TableTask:
			counts.Tasks = inserted
		}
	}
	if err := tx.Commit(); err != nil {
		return Counts{}, fmt.Errorf("commit parquet seed: %w", err)
	}
	l.logger.InfoContext(ctx, "seed data loaded from parquet",
		slog.Int("users", counts.Users),
		slog.Int("events", counts.Events),
		slog.Int("tasks", counts.Tasks),
	)
	return counts, nil
}

func execCount(ctx context.Context, tx *sql.Tx, stmt string) (int, error) {
	result, err := tx.ExecContext(ctx, stmt)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(affected), nil
}

func quoteIdent(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

func quoteString(value string) string {
	return `'` + strings.ReplaceAll(value, `'`, `''`) + `'`
}
