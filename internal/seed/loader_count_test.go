package seed

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestExecCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "event"`).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`INSERT INTO "task"`).WillReturnResult(sqlmock.NewErrorResult(errors.New("not supported")))
	mock.ExpectRollback()

	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("BeginTx() error = %v", err)
	}
	inserted, err := execCount(context.Background(), tx, `INSERT INTO "event" SELECT 1`)
	if err != nil || inserted != 3 {
		t.Fatalf("execCount() = %d, %v", inserted, err)
	}
	if _, err := execCount(context.Background(), tx, `INSERT INTO "task" SELECT 1`); err == nil || !strings.Contains(err.Error(), "rows affected") {
		t.Fatalf("execCount() error = %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sql expectations: %v", err)
	}
}
