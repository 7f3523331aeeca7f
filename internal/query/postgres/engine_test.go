package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/c360chat/c360chat/internal/query"
)

func TestExecuteRunsInsideRolledBackTransaction(t *testing.T) {
	db, mock := newSQLMock(t)
	engine := NewEngine(db, 0)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT state, COUNT(*) AS customers FROM "prod_presentation"."customer360" GROUP BY state`)).
		WillReturnRows(sqlmock.NewRows([]string{"state", "customers"}).
			AddRow([]byte("TX"), int64(10)).
			AddRow("CA", int64(7)))
	mock.ExpectRollback()

	result, err := engine.Execute(context.Background(), query.Request{
		SQL: `SELECT state, COUNT(*) AS customers FROM "prod_presentation"."customer360" GROUP BY state;`,
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(result.Rows) != 2 || result.Rows[0][0] != "TX" || result.Rows[1][1] != int64(7) {
		t.Fatalf("rows = %#v", result.Rows)
	}
	assertSQLMock(t, mock)
}

func TestExecuteSetsStatementTimeoutAndRowLimit(t *testing.T) {
	db, mock := newSQLMock(t)
	engine := NewEngine(db, 1500*time.Millisecond)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`SET LOCAL statement_timeout = 1500`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM (SELECT 1 AS n\n) AS q LIMIT 5")).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(int64(1)))
	mock.ExpectRollback()

	result, err := engine.Execute(context.Background(), query.Request{SQL: "SELECT 1 AS n", RowLimit: 5})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(result.Rows) != 1 {
		t.Fatalf("rows = %#v", result.Rows)
	}
	assertSQLMock(t, mock)
}

func TestExecuteWrapsQueryErrors(t *testing.T) {
	db, mock := newSQLMock(t)
	engine := NewEngine(db, 0)
	upstream := errors.New(`column "nope" does not exist`)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT nope FROM t`)).WillReturnError(upstream)
	mock.ExpectRollback()

	_, err := engine.Execute(context.Background(), query.Request{SQL: "SELECT nope FROM t"})
	if !errors.Is(err, upstream) {
		t.Fatalf("Execute() error = %v", err)
	}
	assertSQLMock(t, mock)
}

func TestExecuteRejectsEmptySQL(t *testing.T) {
	db, mock := newSQLMock(t)
	if _, err := NewEngine(db, 0).Execute(context.Background(), query.Request{SQL: " ; "}); err == nil {
		t.Fatal("expected empty sql error")
	}
	assertSQLMock(t, mock)
}

func TestOpenRequiresDSN(t *testing.T) {
	if _, err := Open(context.Background(), DBConfig{}); err == nil {
		t.Fatal("expected error for empty DSN")
	}
}

func TestParseConnConfigForcesReadOnlySessions(t *testing.T) {
	connConfig, err := parseConnConfig("postgres://reader:pw@warehouse.internal:5432/analytics?sslmode=disable")
	if err != nil {
		t.Fatalf("parseConnConfig() error = %v", err)
	}
	if connConfig.RuntimeParams["default_transaction_read_only"] != "on" {
		t.Fatalf("runtime params = %#v", connConfig.RuntimeParams)
	}
	if connConfig.RuntimeParams["application_name"] != applicationName {
		t.Fatalf("application_name = %q", connConfig.RuntimeParams["application_name"])
	}

	connConfig, err = parseConnConfig("postgres://reader@warehouse.internal/analytics?application_name=bi&sslmode=disable")
	if err != nil {
		t.Fatalf("parseConnConfig() error = %v", err)
	}
	if connConfig.RuntimeParams["application_name"] != "bi" {
		t.Fatalf("application_name = %q", connConfig.RuntimeParams["application_name"])
	}

	if _, err := parseConnConfig("postgres://%zz"); err == nil {
		t.Fatal("expected parse error")
	}
}

func newSQLMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func assertSQLMock(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sql expectations: %v", err)
	}
}
