package kv

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"resume-review/internal/shared/storage/db"
	"resume-review/internal/shared/util"
)

func TestSQLStorePostgresPlaceholders(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	store := &SQLStore{DB: conn, Dialect: db.DialectPostgres}
	owner := util.OwnerKey("alice")

	mock.ExpectExec(`INSERT INTO kv_records .* VALUES \(\$1, \$2, \$3, \$4\)`).
		WithArgs(owner, "resume:1", `{"id":"1"}`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`SELECT record_key, record_value FROM kv_records`).
		WithArgs(owner, "resume:%").
		WillReturnRows(sqlmock.NewRows([]string{"record_key", "record_value"}).AddRow("resume:1", `{"id":"1"}`))
	mock.ExpectExec(`DELETE FROM kv_records WHERE owner_key = \$1`).
		WithArgs(owner).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ctx := context.Background()
	if err := store.Set(ctx, "alice", "resume:1", `{"id":"1"}`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	items, err := store.List(ctx, "alice", "resume:*", true)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 || items[0].Value != `{"id":"1"}` {
		t.Fatalf("unexpected items %+v", items)
	}
	if err := store.Flush(ctx, "alice"); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestSQLStoreFlushError(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	store := &SQLStore{DB: conn, Dialect: db.DialectPostgres}
	mock.ExpectExec(`DELETE FROM kv_records`).WillReturnError(errors.New("connection reset"))

	if err := store.Flush(context.Background(), "alice"); err == nil {
		t.Fatalf("expected flush error")
	}
}

func TestSQLStoreGetMissing(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	store := &SQLStore{DB: conn, Dialect: db.DialectPostgres}
	mock.ExpectQuery(`SELECT record_value FROM kv_records`).
		WithArgs(util.OwnerKey("alice"), "resume:nope").
		WillReturnRows(sqlmock.NewRows([]string{"record_value"}))

	_, ok, err := store.Get(context.Background(), "alice", "resume:nope")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatalf("expected missing key")
	}
}
