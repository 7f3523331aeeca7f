package query

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type Request struct {
	SQL string
	// RowLimit wraps the statement in an outer LIMIT when positive.
	RowLimit int
}

type Result struct {
	Columns  []string
	Rows     [][]any
	Duration time.Duration
}

// RecordKeys returns Columns with repeated names suffixed _2, _3, ... so that
// every field of a row keeps its own record key.
func (r Result) RecordKeys() []string {
	keys := make([]string, len(r.Columns))
	seen := make(map[string]bool, len(r.Columns))
	for i, column := range r.Columns {
		key := column
		for n := 2; seen[key]; n++ {
			key = fmt.Sprintf("%s_%d", column, n)
		}
		seen[key] = true
		keys[i] = key
	}
	return keys
}

// Records converts positional rows into records keyed by RecordKeys,
// preserving row order.
func (r Result) Records() []map[string]any {
	keys := r.RecordKeys()
	records := make([]map[string]any, 0, len(r.Rows))
	for _, row := range r.Rows {
		record := make(map[string]any, len(keys))
		for i, column := range keys {
			if i < len(row) {
				record[column] = row[i]
			}
		}
		records = append(records, record)
	}
	return records
}

type Engine interface {
	Execute(ctx context.Context, request Request) (Result, error)
}

// WithTimeout bounds every Execute call on engine. A non-positive timeout
// returns engine unchanged.
func WithTimeout(engine Engine, timeout time.Duration) Engine {
	if timeout <= 0 {
		return engine
	}
	return timeoutEngine{engine: engine, timeout: timeout}
}

type timeoutEngine struct {
	engine  Engine
	timeout time.Duration
}

func (t timeoutEngine) Execute(ctx context.Context, request Request) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.engine.Execute(ctx, request)
}

// PrepareSQL strips trailing semicolons and applies the optional row limit.
// The wrapper closes on its own line so a trailing line comment in the query
// cannot swallow it.
func PrepareSQL(request Request) (string, error) {
	sqlText := StripTrailingSemicolons(request.SQL)
	if sqlText == "" {
		return "", fmt.Errorf("sql is required")
	}
	if request.RowLimit > 0 {
		sqlText = fmt.Sprintf("SELECT * FROM (%s\n) AS q LIMIT %d", sqlText, request.RowLimit)
	}
	return sqlText, nil
}

func StripTrailingSemicolons(sqlText string) string {
	trimmed := strings.TrimSpace(sqlText)
	for strings.HasSuffix(trimmed, ";") {
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, ";"))
	}
	return trimmed
}

// NormalizeValues converts driver byte slices to strings.
func NormalizeValues(values []any) []any {
	normalized := make([]any, len(values))
	for i, value := range values {
		switch typed := value.(type) {
		case []byte:
			normalized[i] = string(typed)
		default:
			normalized[i] = typed
		}
	}
	return normalized
}
