// Package app assembles the assistant from configuration. Both the HTTP
// service and the terminal client build their runtime through it.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/c360chat/c360chat/internal/assistant"
	"github.com/c360chat/c360chat/internal/config"
	"github.com/c360chat/c360chat/internal/nl2sql"
	"github.com/c360chat/c360chat/internal/prompt"
	"github.com/c360chat/c360chat/internal/query"
	duckdbengine "github.com/c360chat/c360chat/internal/query/duckdb"
	pgengine "github.com/c360chat/c360chat/internal/query/postgres"
	"github.com/c360chat/c360chat/internal/schema"
	"github.com/c360chat/c360chat/internal/sqlguard"
	"github.com/c360chat/c360chat/internal/storage"
	s3store "github.com/c360chat/c360chat/internal/storage/s3"
)

// Warehouse is a query engine that can be health-checked and released.
type Warehouse interface {
	query.Engine
	Ping(ctx context.Context) error
	Close() error
}

type App struct {
	Assistant *assistant.Orchestrator
	Warehouse Warehouse
	Schema    schema.Descriptor
	Generator nl2sql.Generator
}

// Build wires generator, warehouse, validator and orchestrator from cfg.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	generator, err := nl2sql.New(ctx, nl2sql.Config{
		Provider:    cfg.AI.Provider,
		BaseURL:     cfg.AI.BaseURL,
		APIKey:      cfg.AI.APIKey,
		Model:       cfg.AI.Model,
		Temperature: cfg.AI.Temperature,
		Timeout:     cfg.AI.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize sql generator: %w", err)
	}

	warehouse, err := OpenWarehouse(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	a, err := assemble(cfg, logger, generator, warehouse)
	if err != nil {
		_ = warehouse.Close()
		return nil, err
	}
	return a, nil
}

func assemble(cfg config.Config, logger *slog.Logger, generator nl2sql.Generator, warehouse Warehouse) (*App, error) {
	descriptor := schema.Customer360(cfg.Warehouse.Dataset, cfg.Warehouse.Table)
	validator, err := sqlguard.NewValidator(descriptor.Identifier())
	if err != nil {
		return nil, err
	}
	orchestrator, err := assistant.New(assistant.Options{
		Composer:  prompt.NewComposer(descriptor, Dialect(cfg.Warehouse.Driver)),
		Generator: generator,
		Validator: validator,
		Engine:    query.WithTimeout(warehouse, cfg.Warehouse.QueryTimeout),
		Logger:    logger,
		RowLimit:  cfg.Warehouse.RowLimit,
	})
	if err != nil {
		return nil, err
	}
	return &App{
		Assistant: orchestrator,
		Warehouse: warehouse,
		Schema:    descriptor,
		Generator: generator,
	}, nil
}

func (a *App) Close() error {
	if a == nil || a.Warehouse == nil {
		return nil
	}
	return a.Warehouse.Close()
}

// Dialect names the SQL dialect the generator is asked to write.
func Dialect(driver string) string {
	if driver == config.DriverPostgres {
		return "PostgreSQL"
	}
	return prompt.DefaultDialect
}

// OpenWarehouse returns the query engine selected by cfg.Warehouse.Driver.
func OpenWarehouse(ctx context.Context, cfg config.Config, logger *slog.Logger) (Warehouse, error) {
	switch cfg.Warehouse.Driver {
	case config.DriverPostgres:
		db, err := pgengine.Open(ctx, pgengine.DBConfig{
			DSN:             cfg.Warehouse.DSN,
			MaxOpenConns:    cfg.Warehouse.MaxOpenConns,
			MaxIdleConns:    cfg.Warehouse.MaxIdleConns,
			ConnMaxIdleTime: cfg.Warehouse.ConnMaxIdleTime,
			ConnMaxLifetime: cfg.Warehouse.ConnMaxLifetime,
		})
		if err != nil {
			return nil, fmt.Errorf("open warehouse db: %w", err)
		}
		return pgengine.NewEngine(db, cfg.Warehouse.QueryTimeout), nil
	case config.DriverDuckDB:
		engineCfg := duckdbengine.Config{
			Dataset:      cfg.Warehouse.Dataset,
			Table:        cfg.Warehouse.Table,
			LocalGlob:    cfg.Warehouse.LocalGlob,
			ObjectPrefix: cfg.Warehouse.ObjectPrefix,
			Logger:       logger,
		}
		if engineCfg.LocalGlob == "" {
			store, err := OpenObjectStore(ctx, cfg)
			if err != nil {
				return nil, err
			}
			engineCfg.Store = store
		}
		engine, err := duckdbengine.NewEngine(engineCfg)
		if err != nil {
			return nil, fmt.Errorf("initialize duckdb engine: %w", err)
		}
		return engine, nil
	default:
		return nil, fmt.Errorf("unsupported warehouse driver %q", cfg.Warehouse.Driver)
	}
}

func OpenObjectStore(ctx context.Context, cfg config.Config) (storage.ObjectStore, error) {
	store, err := s3store.New(ctx, s3store.Config{
		Endpoint:         cfg.ObjectStore.Endpoint,
		Region:           cfg.ObjectStore.Region,
		Bucket:           cfg.ObjectStore.Bucket,
		AccessKeyID:      cfg.ObjectStore.AccessKeyID,
		SecretAccessKey:  cfg.ObjectStore.SecretAccessKey,
		UseSSL:           cfg.ObjectStore.UseSSL,
		Prefix:           cfg.ObjectStore.Prefix,
		AutoCreateBucket: cfg.ObjectStore.AutoCreateBucket,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize object store: %w", err)
	}
	return store, nil
}

// CheckObjectStoreConfig reports a configuration error for the duckdb driver
// when it has neither a local glob nor a reachable bucket configured.
func CheckObjectStoreConfig(cfg config.Config) func(context.Context) error {
	return func(context.Context) error {
		if cfg.Warehouse.Driver != config.DriverDuckDB || cfg.Warehouse.LocalGlob != "" {
			return nil
		}
		if cfg.ObjectStore.Endpoint == "" {
			return errors.New("object store endpoint is not configured")
		}
		if cfg.ObjectStore.Bucket == "" {
			return errors.New("object store bucket is not configured")
		}
		return nil
	}
}
