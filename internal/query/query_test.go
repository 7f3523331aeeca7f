package query

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestRecordsPreservesOrderAndColumns(t *testing.T) {
	result := Result{
		Columns: []string{"state", "customers"},
		Rows:    [][]any{{"TX", int64(10)}, {"CA", int64(7)}},
	}
	records := result.Records()
	if len(records) != 2 {
		t.Fatalf("records = %d", len(records))
	}
	if records[0]["state"] != "TX" || records[1]["customers"] != int64(7) {
		t.Fatalf("records = %#v", records)
	}
}

func TestRecordsKeepRepeatedColumns(t *testing.T) {
	result := Result{
		Columns: []string{"a", "a", "a_2", "a"},
		Rows:    [][]any{{1, 2, 3, 4}},
	}
	keys := result.RecordKeys()
	if got := fmt.Sprint(keys); got != "[a a_2 a_2_2 a_3]" {
		t.Fatalf("RecordKeys() = %s", got)
	}
	records := result.Records()
	if len(records[0]) != 4 || records[0]["a"] != 1 || records[0]["a_3"] != 4 {
		t.Fatalf("records = %#v", records)
	}
}

func TestRecordsEmpty(t *testing.T) {
	records := Result{Columns: []string{"a"}}.Records()
	if records == nil || len(records) != 0 {
		t.Fatalf("records = %#v", records)
	}
}

func TestPrepareSQL(t *testing.T) {
	got, err := PrepareSQL(Request{SQL: " SELECT 1 ;; "})
	if err != nil {
		t.Fatalf("PrepareSQL() error = %v", err)
	}
	if got != "SELECT 1" {
		t.Fatalf("PrepareSQL() = %q", got)
	}

	got, err = PrepareSQL(Request{SQL: "SELECT 1;", RowLimit: 10})
	if err != nil {
		t.Fatalf("PrepareSQL() error = %v", err)
	}
	if got != "SELECT * FROM (SELECT 1\n) AS q LIMIT 10" {
		t.Fatalf("PrepareSQL() = %q", got)
	}

	got, err = PrepareSQL(Request{SQL: "SELECT 1 -- one row", RowLimit: 5})
	if err != nil {
		t.Fatalf("PrepareSQL() error = %v", err)
	}
	if got != "SELECT * FROM (SELECT 1 -- one row\n) AS q LIMIT 5" {
		t.Fatalf("PrepareSQL() = %q", got)
	}

	if _, err := PrepareSQL(Request{SQL: " ; "}); err == nil {
		t.Fatal("expected error for empty sql")
	}
}

func TestNormalizeValues(t *testing.T) {
	got := NormalizeValues([]any{[]byte("x"), int64(1), nil})
	if got[0] != "x" || got[1] != int64(1) || got[2] != nil {
		t.Fatalf("NormalizeValues() = %#v", got)
	}
}

type deadlineEngine struct {
	sawDeadline bool
}

func (d *deadlineEngine) Execute(ctx context.Context, _ Request) (Result, error) {
	_, d.sawDeadline = ctx.Deadline()
	return Result{}, nil
}

func TestWithTimeout(t *testing.T) {
	inner := &deadlineEngine{}
	if WithTimeout(inner, 0) != Engine(inner) {
		t.Fatal("expected engine unchanged for zero timeout")
	}
	if _, err := WithTimeout(inner, time.Second).Execute(context.Background(), Request{SQL: "SELECT 1"}); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !inner.sawDeadline {
		t.Fatal("expected deadline on context")
	}
}
