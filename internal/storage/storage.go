package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	// ErrNoExtract means a table prefix holds no parquet parts.
	ErrNoExtract = errors.New("no parquet extract found")
)

// ObjectInfo describes one stored extract object. Keys are relative to the
// store prefix.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	LastModified time.Time
}

type PutOptions struct {
	ContentType string
}

// ObjectStore holds parquet extracts of warehouse tables.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, opts PutOptions) (ObjectInfo, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Stat(ctx context.Context, key string) (ObjectInfo, error)
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	Delete(ctx context.Context, key string) error
}

// ListExtract returns the parquet parts of the newest extract under prefix,
// ordered by key. Extracts are full snapshots, so when several date=
// partitions exist only the latest one is returned. Parts outside any date=
// partition form a single undated extract that any dated one supersedes.
func ListExtract(ctx context.Context, store ObjectStore, prefix string) ([]ObjectInfo, error) {
	objects, err := store.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list extract objects: %w", err)
	}
	var (
		parts  []ObjectInfo
		latest string
	)
	for _, object := range objects {
		if !IsParquetKey(object.Key) || object.Size == 0 {
			continue
		}
		partition := datePartition(object.Key)
		switch {
		case len(parts) == 0 || partition > latest:
			parts = append(parts[:0], object)
			latest = partition
		case partition == latest:
			parts = append(parts, object)
		}
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w under %q", ErrNoExtract, prefix)
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].Key < parts[j].Key })
	return parts, nil
}

// datePartition returns the date=YYYY-MM-DD segment of key, or "".
func datePartition(key string) string {
	for segment := range strings.SplitSeq(key, "/") {
		if strings.HasPrefix(segment, datePartitionPrefix) {
			return segment
		}
	}
	return ""
}
