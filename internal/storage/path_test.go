package storage

import (
	"testing"
	"time"
)

func TestBuildExtractPath(t *testing.T) {
	ts := time.Date(2026, 2, 13, 23, 45, 0, 0, time.FixedZone("x", 2*3600))
	got, err := BuildExtractPath("prod_presentation", "customer360", ts, 7)
	if err != nil {
		t.Fatalf("BuildExtractPath() error = %v", err)
	}
	want := "prod_presentation/customer360/date=2026-02-13/part-00007.parquet"
	if got != want {
		t.Fatalf("BuildExtractPath() = %q, want %q", got, want)
	}
}

func TestBuildExtractPathValidation(t *testing.T) {
	ts := time.Now()
	if _, err := BuildExtractPath("", "customer360", ts, 0); err == nil {
		t.Fatal("expected dataset validation error")
	}
	if _, err := BuildExtractPath("prod", "../etc", ts, 0); err == nil {
		t.Fatal("expected table validation error")
	}
	if _, err := BuildExtractPath("prod", "customer360", ts, -1); err == nil {
		t.Fatal("expected sequence validation error")
	}
}

func TestTablePrefix(t *testing.T) {
	got, err := TablePrefix("prod_presentation", "customer360")
	if err != nil {
		t.Fatalf("TablePrefix() error = %v", err)
	}
	if got != "prod_presentation/customer360/" {
		t.Fatalf("TablePrefix() = %q", got)
	}
}

func TestIsParquetKey(t *testing.T) {
	if !IsParquetKey("a/b/part-00000.PARQUET") {
		t.Fatal("expected parquet key")
	}
	if IsParquetKey("a/b/_SUCCESS") {
		t.Fatal("expected non-parquet key")
	}
}
