// Package query runs SQL against the store and folds every outcome into a
// Result: rows, empty or an "Error:" message.
package query

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sqlchat/sqlchat/internal/observability"
	"github.com/sqlchat/sqlchat/internal/store"
)

const (
	notReadyMessage = "database not ready"
	readOnlyMessage = "only SELECT and WITH statements are allowed in read-only mode"
)

type Options struct {
	ReadOnly bool
	// MaxRows caps the rows kept from a result set. Zero keeps everything.
	MaxRows int
	Timeout time.Duration
}

type Executor struct {
	store  *store.Store
	opts   Options
	logger *slog.Logger
}

func NewExecutor(s *store.Store, opts Options, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		store:  s,
		opts:   opts,
		logger: logger.With(slog.String("component", "query.executor")),
	}
}

// ReadOnly reports whether writes are rejected before they reach the store.
func (e *Executor) ReadOnly() bool {
	return e != nil && e.opts.ReadOnly
}

// Execute never returns an error; failures become error results.
func (e *Executor) Execute(ctx context.Context, sqlText string) Result {
	start := time.Now()
	result := e.execute(ctx, sqlText)
	result.Duration = time.Since(start)
	observability.ObserveQueryExecution(string(result.Kind), result.Duration)

	attrs := []any{
		slog.String("kind", string(result.Kind)),
		slog.Int("rows", len(result.Rows)),
		slog.Duration("elapsed", result.Duration),
	}
	if e != nil {
		if result.IsError() {
			e.logger.InfoContext(ctx, "query failed", append(attrs, slog.String("error", result.Message))...)
		} else {
			e.logger.DebugContext(ctx, "query executed", attrs...)
		}
	}
	return result
}

func (e *Executor) execute(ctx context.Context, sqlText string) (result Result) {
	defer func() {
		if recovered := recover(); recovered != nil {
			result = ErrorResult(fmt.Sprintf("%v", recovered))
		}
	}()

	if e == nil || !e.store.Ready() {
		return ErrorResult(notReadyMessage)
	}
	if strings.TrimSpace(sqlText) == "" {
		return ErrorResult("sql is required")
	}
	if e.opts.ReadOnly && !IsReadOnly(sqlText) {
		return ErrorResult(readOnlyMessage)
	}

	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	statements := splitStatements(sqlText)
	if len(statements) == 0 {
		return Result{Kind: KindEmpty}
	}

	// Statements run in order. The first one that produces a result set
	// decides the outcome; the rest still run.
	db := e.store.DB()
	var first *Result
	for _, stmt := range statements {
		if first != nil || !stmt.returnsRows() {
			if _, err := db.ExecContext(ctx, stmt.text); err != nil {
				return ErrorResult(err.Error())
			}
			continue
		}
		collected, err := queryRows(ctx, db, stmt.text, e.opts.MaxRows)
		if err != nil {
			return ErrorResult(err.Error())
		}
		first = &collected
	}
	if first == nil {
		return Result{Kind: KindEmpty}
	}
	return *first
}

func queryRows(ctx context.Context, db *sql.DB, sqlText string, maxRows int) (Result, error) {
	rows, err := db.QueryContext(ctx, sqlText)
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = rows.Close() }()
	return collectRows(rows, maxRows)
}

func collectRows(rows *sql.Rows, maxRows int) (Result, error) {
	columns, err := rows.Columns()
	if err != nil {
		return Result{}, fmt.Errorf("query columns: %w", err)
	}
	if len(columns) == 0 {
		return Result{Kind: KindEmpty}, nil
	}

	resultRows := make([][]any, 0)
	truncated := false
	for rows.Next() {
		if maxRows > 0 && len(resultRows) >= maxRows {
			truncated = true
			break
		}
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return Result{}, fmt.Errorf("scan row: %w", err)
		}
		resultRows = append(resultRows, normalizeValues(values))
	}
	if err := rows.Err(); err != nil {
		return Result{}, err
	}
	if len(resultRows) == 0 {
		return Result{Kind: KindEmpty, Columns: columns}, nil
	}
	return Result{
		Kind:      KindRows,
		Columns:   columns,
		Rows:      resultRows,
		Truncated: truncated,
	}, nil
}

func normalizeValues(values []any) []any {
	normalized := make([]any, len(values))
	for i, value := range values {
		switch typed := value.(type) {
		case []byte:
			normalized[i] = string(typed)
		case time.Time:
			normalized[i] = typed
		case fmt.Stringer:
			normalized[i] = typed.String()
		default:
			normalized[i] = typed
		}
	}
	return normalized
}
