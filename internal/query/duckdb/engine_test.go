package duckdb

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"

	"github.com/c360chat/c360chat/internal/query"
	"github.com/c360chat/c360chat/internal/storage"
)

type row struct {
	CustomerID int64  `parquet:"customer_id"`
	State      string `parquet:"state"`
}

func TestExecuteReadsExtractsThroughObjectStore(t *testing.T) {
	first := mustParquet(t, []row{{CustomerID: 1, State: "TX"}, {CustomerID: 2, State: "CA"}})
	second := mustParquet(t, []row{{CustomerID: 3, State: "TX"}})
	store := &memoryStore{objects: map[string][]byte{
		"prod_presentation/customer360/date=2026-01-01/part-00000.parquet": first,
		"prod_presentation/customer360/date=2026-01-01/part-00001.parquet": second,
		"prod_presentation/customer360/_SUCCESS":                           []byte("ok"),
		"prod_presentation/other/part-00000.parquet":                       first,
	}}
	engine, err := NewEngine(Config{Dataset: "prod_presentation", Table: "customer360", Store: store})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	defer func() { _ = engine.Close() }()

	result, err := engine.Execute(context.Background(), query.Request{
		SQL: `SELECT state, COUNT(*) AS customers FROM "prod_presentation"."customer360" GROUP BY state ORDER BY state;`,
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if strings.Join(result.Columns, ",") != "state,customers" {
		t.Fatalf("columns = %v", result.Columns)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("rows = %#v", result.Rows)
	}
	if result.Rows[0][0] != "CA" || result.Rows[1][1] != int64(2) {
		t.Fatalf("rows = %#v", result.Rows)
	}
	if engine.files != 2 {
		t.Fatalf("files = %d", engine.files)
	}
}

func TestExecuteAppliesRowLimit(t *testing.T) {
	store := &memoryStore{objects: map[string][]byte{
		"ds/t/part-00000.parquet": mustParquet(t, []row{{CustomerID: 1}, {CustomerID: 2}, {CustomerID: 3}}),
	}}
	engine, err := NewEngine(Config{Dataset: "ds", Table: "t", Store: store})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	defer func() { _ = engine.Close() }()

	result, err := engine.Execute(context.Background(), query.Request{
		SQL:      "SELECT customer_id FROM \"ds\".\"t\" ORDER BY customer_id -- lowest ids first",
		RowLimit: 2,
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("rows = %#v", result.Rows)
	}
}

func TestExecuteReadsLocalGlob(t *testing.T) {
	dir := t.TempDir()
	payload := mustParquet(t, []row{{CustomerID: 7, State: "NY"}})
	if err := os.WriteFile(filepath.Join(dir, "part-00000.parquet"), payload, 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	engine, err := NewEngine(Config{Dataset: "ds", Table: "t", LocalGlob: filepath.Join(dir, "*.parquet")})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	defer func() { _ = engine.Close() }()

	result, err := engine.Execute(context.Background(), query.Request{SQL: `SELECT state FROM "ds"."t"`})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(result.Rows) != 1 || result.Rows[0][0] != "NY" {
		t.Fatalf("rows = %#v", result.Rows)
	}
}

func TestExecuteReportsMissingExtract(t *testing.T) {
	engine, err := NewEngine(Config{Dataset: "ds", Table: "t", Store: &memoryStore{objects: map[string][]byte{}}})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if _, err := engine.Execute(context.Background(), query.Request{SQL: "SELECT 1"}); !errors.Is(err, storage.ErrNoExtract) {
		t.Fatalf("Execute() error = %v, want ErrNoExtract", err)
	}
	if err := engine.Ping(context.Background()); err == nil {
		t.Fatal("expected Ping() error")
	}
}

func TestExecuteSurfacesQueryErrors(t *testing.T) {
	store := &memoryStore{objects: map[string][]byte{"ds/t/part-00000.parquet": mustParquet(t, []row{{CustomerID: 1}})}}
	engine, err := NewEngine(Config{Dataset: "ds", Table: "t", Store: store})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	defer func() { _ = engine.Close() }()

	if _, err := engine.Execute(context.Background(), query.Request{SQL: `SELECT no_such_column FROM "ds"."t"`}); err == nil {
		t.Fatal("expected binder error")
	}
}

func TestRefreshPicksUpNewExtracts(t *testing.T) {
	store := &memoryStore{objects: map[string][]byte{"ds/t/part-00000.parquet": mustParquet(t, []row{{CustomerID: 1}})}}
	engine, err := NewEngine(Config{Dataset: "ds", Table: "t", Store: store})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	defer func() { _ = engine.Close() }()

	countSQL := query.Request{SQL: `SELECT COUNT(*) FROM "ds"."t"`}
	result, err := engine.Execute(context.Background(), countSQL)
	if err != nil || result.Rows[0][0] != int64(1) {
		t.Fatalf("Execute() = %#v, %v", result.Rows, err)
	}

	store.objects["ds/t/part-00001.parquet"] = mustParquet(t, []row{{CustomerID: 2}})
	if err := engine.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	result, err = engine.Execute(context.Background(), countSQL)
	if err != nil || result.Rows[0][0] != int64(2) {
		t.Fatalf("Execute() after refresh = %#v, %v", result.Rows, err)
	}
}

func TestExecuteCannotWriteOrReachHostFiles(t *testing.T) {
	store := &memoryStore{objects: map[string][]byte{"ds/t/part-00000.parquet": mustParquet(t, []row{{CustomerID: 1, State: "TX"}})}}
	engine, err := NewEngine(Config{Dataset: "ds", Table: "t", Store: store})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	defer func() { _ = engine.Close() }()

	outside := filepath.Join(t.TempDir(), "leak.csv")
	statements := []string{
		`SELECT 1 AS x FROM "ds"."t"; COPY (SELECT * FROM "ds"."t") TO '` + outside + `'`,
		`SELECT 1 AS x FROM "ds"."t"; TRUNCATE "ds"."t"`,
		`SELECT 1 AS x FROM "ds"."t"; SET enable_external_access = true`,
		`SELECT * FROM read_csv('` + outside + `')`,
	}
	for _, statement := range statements {
		if _, err := engine.Execute(context.Background(), query.Request{SQL: statement}); err == nil {
			t.Fatalf("Execute(%q) expected error", statement)
		}
	}
	if _, err := os.Stat(outside); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("stat %s: err = %v, want not exist", outside, err)
	}

	result, err := engine.Execute(context.Background(), query.Request{SQL: `SELECT COUNT(*) FROM "ds"."t"`})
	if err != nil || result.Rows[0][0] != int64(1) {
		t.Fatalf("Execute() = %#v, %v", result.Rows, err)
	}
}

func TestExecuteReadsOnlyNewestSnapshot(t *testing.T) {
	payload := mustParquet(t, []row{{CustomerID: 1, State: "TX"}})
	store := &memoryStore{objects: map[string][]byte{
		"ds/t/date=2026-01-01/part-00000.parquet": payload,
		"ds/t/date=2026-01-02/part-00000.parquet": payload,
	}}
	engine, err := NewEngine(Config{Dataset: "ds", Table: "t", Store: store})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	defer func() { _ = engine.Close() }()

	result, err := engine.Execute(context.Background(), query.Request{SQL: `SELECT COUNT(*) FROM "ds"."t"`})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Rows[0][0] != int64(1) {
		t.Fatalf("count = %#v", result.Rows[0][0])
	}
}

func TestCloseRemovesWorkDir(t *testing.T) {
	store := &memoryStore{objects: map[string][]byte{"ds/t/part-00000.parquet": mustParquet(t, []row{{CustomerID: 1}})}}
	engine, err := NewEngine(Config{Dataset: "ds", Table: "t", Store: store})
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if err := engine.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	workDir := engine.workDir
	if _, err := os.Stat(filepath.Join(workDir, warehouseFile)); err != nil {
		t.Fatalf("warehouse file: %v", err)
	}
	if _, err := os.Stat(filepath.Join(workDir, partsDir)); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("downloaded parts should be removed after load, err = %v", err)
	}
	if err := engine.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if _, err := os.Stat(workDir); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("work dir still present, err = %v", err)
	}
}

func TestNewEngineValidatesSource(t *testing.T) {
	if _, err := NewEngine(Config{Dataset: "ds", Table: "t"}); err == nil {
		t.Fatal("expected missing source error")
	}
	if _, err := NewEngine(Config{Dataset: "ds", Table: "t", LocalGlob: "*.parquet", Store: &memoryStore{}}); err == nil {
		t.Fatal("expected conflicting source error")
	}
	if _, err := NewEngine(Config{Table: "t", LocalGlob: "*.parquet"}); err == nil {
		t.Fatal("expected dataset error")
	}
}

func mustParquet(t *testing.T, rows []row) []byte {
	t.Helper()
	buf := bytes.NewBuffer(nil)
	writer := parquet.NewGenericWriter[row](buf)
	if _, err := writer.Write(rows); err != nil {
		t.Fatalf("write parquet: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close parquet writer: %v", err)
	}
	return buf.Bytes()
}

type memoryStore struct {
	objects map[string][]byte
}

func (m *memoryStore) Put(context.Context, string, io.Reader, int64, storage.PutOptions) (storage.ObjectInfo, error) {
	return storage.ObjectInfo{}, nil
}

func (m *memoryStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	payload, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(payload)), nil
}

func (m *memoryStore) Stat(context.Context, string) (storage.ObjectInfo, error) {
	return storage.ObjectInfo{}, nil
}

func (m *memoryStore) List(_ context.Context, prefix string) ([]storage.ObjectInfo, error) {
	var out []storage.ObjectInfo
	for key, payload := range m.objects {
		if strings.HasPrefix(key, prefix) {
			out = append(out, storage.ObjectInfo{Key: key, Size: int64(len(payload))})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *memoryStore) Delete(context.Context, string) error {
	return nil
}
