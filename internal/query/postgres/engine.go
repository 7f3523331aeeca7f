package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/c360chat/c360chat/internal/query"
)

// Engine runs generated statements against a Postgres warehouse. Every
// statement executes inside a read-only transaction that is always rolled
// back.
type Engine struct {
	db               *sql.DB
	statementTimeout time.Duration
}

var _ query.Engine = (*Engine)(nil)

func NewEngine(db *sql.DB, statementTimeout time.Duration) *Engine {
	return &Engine{db: db, statementTimeout: statementTimeout}
}

func (e *Engine) Execute(ctx context.Context, request query.Request) (query.Result, error) {
	if e.db == nil {
		return query.Result{}, fmt.Errorf("warehouse db is required")
	}
	sqlText, err := query.PrepareSQL(request)
	if err != nil {
		return query.Result{}, err
	}

	start := time.Now()
	tx, err := e.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return query.Result{}, fmt.Errorf("begin read-only tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if e.statementTimeout > 0 {
		setTimeout := fmt.Sprintf("SET LOCAL statement_timeout = %d", e.statementTimeout.Milliseconds())
		if _, err := tx.ExecContext(ctx, setTimeout); err != nil {
			return query.Result{}, fmt.Errorf("set statement timeout: %w", err)
		}
	}

	rows, err := tx.QueryContext(ctx, sqlText)
	if err != nil {
		return query.Result{}, fmt.Errorf("execute query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return query.Result{}, fmt.Errorf("query columns: %w", err)
	}
	resultRows := make([][]any, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		targets := make([]any, len(columns))
		for i := range values {
			targets[i] = &values[i]
		}
		if err := rows.Scan(targets...); err != nil {
			return query.Result{}, fmt.Errorf("scan row: %w", err)
		}
		resultRows = append(resultRows, query.NormalizeValues(values))
	}
	if err := rows.Err(); err != nil {
		return query.Result{}, fmt.Errorf("iterate rows: %w", err)
	}

	return query.Result{Columns: columns, Rows: resultRows, Duration: time.Since(start)}, nil
}

func (e *Engine) Ping(ctx context.Context) error {
	if e.db == nil {
		return fmt.Errorf("warehouse db is required")
	}
	return e.db.PingContext(ctx)
}

func (e *Engine) Close() error {
	if e.db == nil {
		return nil
	}
	return e.db.Close()
}
