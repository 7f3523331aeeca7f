package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/marcboeker/go-duckdb/v2"

	"github.com/c360chat/c360chat/internal/observability"
	"github.com/c360chat/c360chat/internal/query"
	"github.com/c360chat/c360chat/internal/schema"
	"github.com/c360chat/c360chat/internal/storage"
)

// Config describes where the warehouse table's parquet extract lives. Exactly
// one of LocalGlob or Store must be set.
type Config struct {
	Dataset   string
	Table     string
	LocalGlob string
	Store     storage.ObjectStore
	// ObjectPrefix overrides the default <dataset>/<table>/ key prefix.
	ObjectPrefix string
	Logger       *slog.Logger
}

// Engine answers SQL against an in-process DuckDB database holding a copy of
// the warehouse table's parquet extract. The copy is loaded on first use and
// reloaded by Refresh.
type Engine struct {
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	db      *sql.DB
	workDir string
	files   int
}

var _ query.Engine = (*Engine)(nil)

const (
	warehouseFile = "warehouse.duckdb"
	partsDir      = "parts"
)

// readOnlySettings are applied when the materialized warehouse is opened for
// queries.
var readOnlySettings = url.Values{
	"access_mode":            {"READ_ONLY"},
	"enable_external_access": {"false"},
	"lock_configuration":     {"true"},
}

func NewEngine(cfg Config) (*Engine, error) {
	cfg.Dataset = strings.TrimSpace(cfg.Dataset)
	cfg.Table = strings.TrimSpace(cfg.Table)
	cfg.LocalGlob = strings.TrimSpace(cfg.LocalGlob)
	if cfg.Dataset == "" || cfg.Table == "" {
		return nil, fmt.Errorf("dataset and table are required")
	}
	if cfg.LocalGlob == "" && cfg.Store == nil {
		return nil, fmt.Errorf("either a local parquet glob or an object store is required")
	}
	if cfg.LocalGlob != "" && cfg.Store != nil {
		return nil, fmt.Errorf("local parquet glob and object store are mutually exclusive")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = observability.DiscardLogger()
	}
	return &Engine{cfg: cfg, logger: logger}, nil
}

func (e *Engine) Execute(ctx context.Context, request query.Request) (query.Result, error) {
	sqlText, err := query.PrepareSQL(request)
	if err != nil {
		return query.Result{}, err
	}
	db, err := e.database(ctx)
	if err != nil {
		return query.Result{}, err
	}

	start := time.Now()
	rows, err := db.QueryContext(ctx, sqlText)
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
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return query.Result{}, fmt.Errorf("scan row: %w", err)
		}
		resultRows = append(resultRows, query.NormalizeValues(values))
	}
	if err := rows.Err(); err != nil {
		return query.Result{}, fmt.Errorf("iterate rows: %w", err)
	}

	return query.Result{
		Columns:  columns,
		Rows:     resultRows,
		Duration: time.Since(start),
	}, nil
}

// Ping loads the table if needed, reporting whether the extract is
// reachable.
func (e *Engine) Ping(ctx context.Context) error {
	db, err := e.database(ctx)
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}

// Refresh drops the current copy and re-reads the extract.
func (e *Engine) Refresh(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closeLocked()
	_, err := e.loadLocked(ctx)
	return err
}

func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closeLocked()
	return nil
}

func (e *Engine) database(ctx context.Context) (*sql.DB, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.db != nil {
		return e.db, nil
	}
	return e.loadLocked(ctx)
}

// loadLocked materializes the extract into a DuckDB file inside a fresh work
// dir and reopens it read-only with external access disabled and the
// configuration locked. Queries can then neither modify the table nor reach
// the host filesystem, whatever statements the text carries.
func (e *Engine) loadLocked(ctx context.Context) (*sql.DB, error) {
	start := time.Now()
	workDir, err := os.MkdirTemp("", "c360chat-warehouse-")
	if err != nil {
		return nil, fmt.Errorf("create warehouse work dir: %w", err)
	}
	source, files, err := e.resolveSource(ctx, workDir)
	if err != nil {
		removeDir(workDir)
		return nil, err
	}
	dbPath := filepath.Join(workDir, warehouseFile)
	if err := e.materialize(ctx, dbPath, source); err != nil {
		removeDir(workDir)
		return nil, err
	}
	removeDir(filepath.Join(workDir, partsDir))

	db, err := sql.Open("duckdb", dbPath+"?"+readOnlySettings.Encode())
	if err != nil {
		removeDir(workDir)
		return nil, fmt.Errorf("open read-only warehouse: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		removeDir(workDir)
		return nil, fmt.Errorf("open read-only warehouse: %w", err)
	}

	e.db = db
	e.workDir = workDir
	e.files = files
	e.logger.Info("warehouse table loaded",
		"dataset", e.cfg.Dataset,
		"table", e.cfg.Table,
		"files", files,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return db, nil
}

func (e *Engine) materialize(ctx context.Context, dbPath, source string) error {
	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return fmt.Errorf("open duckdb: %w", err)
	}
	defer func() { _ = db.Close() }()
	statements := []string{
		fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, schema.QuoteIdent(e.cfg.Dataset)),
		fmt.Sprintf(`CREATE OR REPLACE TABLE %s.%s AS SELECT * FROM read_parquet(%s)`,
			schema.QuoteIdent(e.cfg.Dataset), schema.QuoteIdent(e.cfg.Table), source),
		`CHECKPOINT`,
	}
	for _, statement := range statements {
		if _, err := db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("load %s.%s: %w", e.cfg.Dataset, e.cfg.Table, err)
		}
	}
	return db.Close()
}

// resolveSource returns the read_parquet argument for the configured source.
// Object store parts are downloaded below workDir.
func (e *Engine) resolveSource(ctx context.Context, workDir string) (string, int, error) {
	if e.cfg.LocalGlob != "" {
		matches, err := filepath.Glob(e.cfg.LocalGlob)
		if err != nil {
			return "", 0, fmt.Errorf("expand parquet glob %q: %w", e.cfg.LocalGlob, err)
		}
		if len(matches) == 0 {
			return "", 0, fmt.Errorf("no parquet files match %q", e.cfg.LocalGlob)
		}
		return quoteStringArray(matches), len(matches), nil
	}

	prefix := strings.TrimSpace(e.cfg.ObjectPrefix)
	if prefix == "" {
		var err error
		prefix, err = storage.TablePrefix(e.cfg.Dataset, e.cfg.Table)
		if err != nil {
			return "", 0, err
		}
	}
	parts, err := storage.ListExtract(ctx, e.cfg.Store, prefix)
	if err != nil {
		return "", 0, err
	}

	localDir := filepath.Join(workDir, partsDir)
	if err := os.MkdirAll(localDir, 0o700); err != nil {
		return "", 0, fmt.Errorf("create extract dir: %w", err)
	}
	localPaths := make([]string, 0, len(parts))
	for i, part := range parts {
		localPath := filepath.Join(localDir, fmt.Sprintf("part-%05d.parquet", i))
		if err := download(ctx, e.cfg.Store, part.Key, localPath); err != nil {
			return "", 0, err
		}
		localPaths = append(localPaths, localPath)
	}
	return quoteStringArray(localPaths), len(localPaths), nil
}

func (e *Engine) closeLocked() {
	if e.db != nil {
		_ = e.db.Close()
		e.db = nil
	}
	removeDir(e.workDir)
	e.workDir = ""
	e.files = 0
}

func quoteStringArray(values []string) string {
	quoted := make([]string, 0, len(values))
	for _, value := range values {
		quoted = append(quoted, `'`+strings.ReplaceAll(value, `'`, `''`)+`'`)
	}
	return "[" + strings.Join(quoted, ",") + "]"
}
