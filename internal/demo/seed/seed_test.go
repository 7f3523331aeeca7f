package seed

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/require"

	"github.com/c360chat/c360chat/internal/query"
	"github.com/c360chat/c360chat/internal/query/duckdb"
	"github.com/c360chat/c360chat/internal/storage"
)

var fixedNow = time.Date(2026, 2, 19, 7, 30, 0, 0, time.UTC)

func TestGeneratorDeterministicForSeed(t *testing.T) {
	g1 := NewGenerator(42)
	g2 := NewGenerator(42)
	g1.now = func() time.Time { return fixedNow }
	g2.now = func() time.Time { return fixedNow }

	for i := 0; i < 5; i++ {
		c1 := g1.NextCustomer()
		c2 := g2.NextCustomer()
		if !reflect.DeepEqual(c1, c2) {
			t.Fatalf("customer %d differs: %#v vs %#v", i, c1, c2)
		}
	}
}

func TestGeneratorRowsAreConsistent(t *testing.T) {
	g := NewGenerator(7)
	g.now = func() time.Time { return fixedNow }

	seen := map[string]struct{}{}
	for i := 0; i < 200; i++ {
		c := g.NextCustomer()
		if _, ok := seen[c.CustomerKey]; ok {
			t.Fatalf("duplicate customer key %s", c.CustomerKey)
		}
		seen[c.CustomerKey] = struct{}{}
		if c.TotalOrders != c.TotalOrdersOnline+c.TotalOrdersStore {
			t.Fatalf("orders do not add up: %#v", c)
		}
		if c.LastOrderDate < c.AcquisitionDate {
			t.Fatalf("last order before acquisition: %#v", c)
		}
		if c.AcquisitionDate > epochDays(fixedNow) {
			t.Fatalf("acquisition in the future: %#v", c)
		}
	}
}

func TestRunWritesPartsToObjectStore(t *testing.T) {
	store := &memoryStore{objects: map[string][]byte{}}
	cfg := DefaultConfig()
	cfg.Customers = 1200
	svc, err := NewService(cfg, store, nil)
	require.NoError(t, err)
	svc.clock = func() time.Time { return fixedNow }

	result, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1200, result.Rows)
	require.Equal(t, []string{
		"prod_presentation/customer360/date=2026-02-19/part-00000.parquet",
		"prod_presentation/customer360/date=2026-02-19/part-00001.parquet",
		"prod_presentation/customer360/date=2026-02-19/part-00002.parquet",
	}, result.Paths)

	rows, err := parquet.Read[CustomerRow](bytes.NewReader(store.objects[result.Paths[2]]), int64(len(store.objects[result.Paths[2]])))
	require.NoError(t, err)
	require.Len(t, rows, 200)
}

func TestRunReplacesPreviousExtract(t *testing.T) {
	store := &memoryStore{objects: map[string][]byte{
		"prod_presentation/customer360/date=2026-02-18/part-00000.parquet": []byte("old"),
		"prod_presentation/customer360/date=2026-02-19/part-00005.parquet": []byte("stale"),
		"prod_presentation/other/part-00000.parquet":                       []byte("keep"),
	}}
	cfg := DefaultConfig()
	cfg.Customers = 10
	svc, err := NewService(cfg, store, nil)
	require.NoError(t, err)
	svc.clock = func() time.Time { return fixedNow }

	_, err = svc.Run(context.Background())
	require.NoError(t, err)

	keys := make([]string, 0, len(store.objects))
	for key := range store.objects {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	require.Equal(t, []string{
		"prod_presentation/customer360/date=2026-02-19/part-00000.parquet",
		"prod_presentation/other/part-00000.parquet",
	}, keys)
}

func TestRunFailsWhenUploadIsNotVisible(t *testing.T) {
	store := &memoryStore{objects: map[string][]byte{}, dropPuts: true}
	cfg := DefaultConfig()
	cfg.Customers = 5
	svc, err := NewService(cfg, store, nil)
	require.NoError(t, err)

	_, err = svc.Run(context.Background())
	require.ErrorIs(t, err, storage.ErrObjectNotFound)
}

func TestSeededExtractIsQueryable(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Customers = 50
	cfg.PartSize = 20
	cfg.OutputDir = dir
	svc, err := NewService(cfg, nil, nil)
	require.NoError(t, err)
	svc.clock = func() time.Time { return fixedNow }

	result, err := svc.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Paths, 3)

	engine, err := duckdb.NewEngine(duckdb.Config{
		Dataset:   cfg.Dataset,
		Table:     cfg.Table,
		LocalGlob: filepath.Join(dir, cfg.Dataset, cfg.Table, "*", "*.parquet"),
	})
	require.NoError(t, err)
	defer func() { _ = engine.Close() }()

	out, err := engine.Execute(context.Background(), query.Request{
		SQL: `SELECT COUNT(DISTINCT customer_key) AS total_customers, SUM(total_orders) > 0 AS has_orders, MAX(acquisition_date) AS latest FROM "prod_presentation"."customer360"`,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"total_customers", "has_orders", "latest"}, out.Columns)
	require.Equal(t, int64(50), out.Rows[0][0])
	require.Equal(t, true, out.Rows[0][1])
	latest, ok := out.Rows[0][2].(time.Time)
	require.True(t, ok, "latest = %T", out.Rows[0][2])
	require.False(t, latest.After(fixedNow))
}

func TestNewServiceValidatesConfig(t *testing.T) {
	cfg := DefaultConfig()
	_, err := NewService(cfg, nil, nil)
	require.Error(t, err)

	cfg.OutputDir = t.TempDir()
	cfg.Customers = 0
	_, err = NewService(cfg, nil, nil)
	require.Error(t, err)

	cfg.Customers = 1
	cfg.Table = "../x"
	_, err = NewService(cfg, nil, nil)
	require.Error(t, err)
}

func TestEncodeCustomersRequiresRows(t *testing.T) {
	_, err := EncodeCustomers(nil)
	require.Error(t, err)
}

type memoryStore struct {
	objects  map[string][]byte
	dropPuts bool
}

func (m *memoryStore) Put(_ context.Context, key string, body io.Reader, _ int64, _ storage.PutOptions) (storage.ObjectInfo, error) {
	payload, err := io.ReadAll(body)
	if err != nil {
		return storage.ObjectInfo{}, err
	}
	if !m.dropPuts {
		m.objects[key] = payload
	}
	return storage.ObjectInfo{Key: key, Size: int64(len(payload))}, nil
}

func (m *memoryStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	payload, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(payload)), nil
}

func (m *memoryStore) Stat(_ context.Context, key string) (storage.ObjectInfo, error) {
	payload, ok := m.objects[key]
	if !ok {
		return storage.ObjectInfo{}, storage.ErrObjectNotFound
	}
	return storage.ObjectInfo{Key: key, Size: int64(len(payload))}, nil
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

func (m *memoryStore) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}
