package seed

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/c360chat/c360chat/internal/observability"
	"github.com/c360chat/c360chat/internal/storage"
)

const parquetContentType = "application/vnd.apache.parquet"

type Config struct {
	Dataset   string
	Table     string
	Customers int
	// PartSize caps the rows per parquet file.
	PartSize int
	Seed     int64
	// OutputDir writes parts to disk instead of the object store.
	OutputDir string
}

func DefaultConfig() Config {
	return Config{
		Dataset:   "prod_presentation",
		Table:     "customer360",
		Customers: 1000,
		PartSize:  500,
		Seed:      42,
	}
}

type Result struct {
	Rows  int
	Paths []string
}

// Service writes a synthetic Customer360 extract.
type Service struct {
	cfg   Config
	store storage.ObjectStore
	log   *slog.Logger
	clock func() time.Time
}

func NewService(cfg Config, store storage.ObjectStore, logger *slog.Logger) (*Service, error) {
	if cfg.Customers <= 0 {
		return nil, fmt.Errorf("customers must be > 0")
	}
	if cfg.PartSize <= 0 {
		return nil, fmt.Errorf("part size must be > 0")
	}
	if cfg.OutputDir == "" && store == nil {
		return nil, fmt.Errorf("either an output dir or an object store is required")
	}
	if _, err := storage.TablePrefix(cfg.Dataset, cfg.Table); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = observability.DiscardLogger()
	}
	return &Service{
		cfg:   cfg,
		store: store,
		log:   logger,
		clock: func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *Service) Run(ctx context.Context) (Result, error) {
	generator := NewGenerator(s.cfg.Seed)
	generator.now = s.clock
	extractedAt := s.clock()

	var (
		result Result
		sizes  = map[string]int64{}
	)
	for sequence := 0; result.Rows < s.cfg.Customers; sequence++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		size := min(s.cfg.PartSize, s.cfg.Customers-result.Rows)
		rows := make([]CustomerRow, 0, size)
		for range size {
			rows = append(rows, generator.NextCustomer())
		}
		payload, err := EncodeCustomers(rows)
		if err != nil {
			return result, err
		}

		key, err := storage.BuildExtractPath(s.cfg.Dataset, s.cfg.Table, extractedAt, sequence)
		if err != nil {
			return result, err
		}
		written, err := s.write(ctx, key, payload)
		if err != nil {
			return result, err
		}

		result.Rows += len(rows)
		result.Paths = append(result.Paths, written)
		sizes[written] = int64(len(payload))
		s.log.InfoContext(ctx, "seed part written",
			slog.String("path", written),
			slog.Int("rows", len(rows)),
			slog.Int("bytes", len(payload)),
		)
	}
	if s.cfg.OutputDir != "" {
		return result, nil
	}
	if err := s.verify(ctx, sizes); err != nil {
		return result, err
	}
	return result, s.prune(ctx, sizes)
}

// verify checks that every uploaded part is visible with the size written.
func (s *Service) verify(ctx context.Context, sizes map[string]int64) error {
	for key, size := range sizes {
		info, err := s.store.Stat(ctx, key)
		if err != nil {
			return fmt.Errorf("verify seed part %q: %w", key, err)
		}
		if info.Size != size {
			return fmt.Errorf("verify seed part %q: size %d, want %d", key, info.Size, size)
		}
	}
	return nil
}

// prune deletes every object under the table prefix that this run did not
// write, so earlier snapshots and parts from a larger previous seed go away.
func (s *Service) prune(ctx context.Context, keep map[string]int64) error {
	prefix, err := storage.TablePrefix(s.cfg.Dataset, s.cfg.Table)
	if err != nil {
		return err
	}
	objects, err := s.store.List(ctx, prefix)
	if err != nil {
		return fmt.Errorf("list previous extract: %w", err)
	}
	removed := 0
	for _, object := range objects {
		if _, ok := keep[object.Key]; ok {
			continue
		}
		if err := s.store.Delete(ctx, object.Key); err != nil {
			return fmt.Errorf("delete previous extract object: %w", err)
		}
		removed++
	}
	if removed > 0 {
		s.log.InfoContext(ctx, "previous extract removed",
			slog.String("prefix", prefix),
			slog.Int("objects", removed),
		)
	}
	return nil
}

func (s *Service) write(ctx context.Context, key string, payload []byte) (string, error) {
	if s.cfg.OutputDir != "" {
		path := filepath.Join(s.cfg.OutputDir, filepath.FromSlash(key))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return "", fmt.Errorf("create seed dir: %w", err)
		}
		if err := os.WriteFile(path, payload, 0o644); err != nil {
			return "", fmt.Errorf("write seed part %q: %w", path, err)
		}
		return path, nil
	}
	info, err := s.store.Put(ctx, key, bytes.NewReader(payload), int64(len(payload)), storage.PutOptions{ContentType: parquetContentType})
	if err != nil {
		return "", fmt.Errorf("upload seed part: %w", err)
	}
	return info.Key, nil
}
