package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/c360chat/c360chat/internal/config"
	"github.com/c360chat/c360chat/internal/conversation"
	"github.com/c360chat/c360chat/internal/demo/seed"
)

func mapLookup(values map[string]string) config.LookupFunc {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}

func seedLocalExtract(t *testing.T, customers int) string {
	t.Helper()
	dir := t.TempDir()
	cfg := seed.DefaultConfig()
	cfg.Customers = customers
	cfg.OutputDir = dir
	svc, err := seed.NewService(cfg, nil, nil)
	require.NoError(t, err)
	_, err = svc.Run(context.Background())
	require.NoError(t, err)
	return filepath.Join(dir, cfg.Dataset, cfg.Table, "*", "*.parquet")
}

func completionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": content}}},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestBuildAnswersQuestionAgainstLocalExtract(t *testing.T) {
	glob := seedLocalExtract(t, 25)
	server := completionServer(t, "```sql\nSELECT COUNT(*) AS total_customers FROM \"prod_presentation\".\"customer360\";\n```")

	cfg, err := config.Load("c360chat", mapLookup(map[string]string{
		"C360CHAT_AI_PROVIDER":          "openai",
		"C360CHAT_AI_BASE_URL":          server.URL,
		"C360CHAT_AI_API_KEY":           "k",
		"C360CHAT_WAREHOUSE_LOCAL_GLOB": glob,
	}))
	require.NoError(t, err)

	a, err := Build(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer func() { _ = a.Close() }()
	require.NoError(t, a.Warehouse.Ping(context.Background()))

	state := conversation.NewState()
	turn := a.Assistant.RunTurn(context.Background(), state, "How many customers do we have?")
	require.Equal(t, conversation.OutcomeOK, turn.Outcome, turn.Answer)
	require.Equal(t, "total_customers: 25", turn.Answer)
	require.Equal(t, `SELECT COUNT(*) AS total_customers FROM "prod_presentation"."customer360";`, turn.GeneratedQuery)
	require.Equal(t, 1, state.Len())
}

func TestBuildBlocksUnsafeGeneratedSQL(t *testing.T) {
	glob := seedLocalExtract(t, 5)
	server := completionServer(t, `DELETE FROM "prod_presentation"."customer360"`)

	cfg, err := config.Load("c360chat", mapLookup(map[string]string{
		"C360CHAT_AI_PROVIDER":          "openai",
		"C360CHAT_AI_BASE_URL":          server.URL,
		"C360CHAT_AI_API_KEY":           "k",
		"C360CHAT_WAREHOUSE_LOCAL_GLOB": glob,
	}))
	require.NoError(t, err)

	a, err := Build(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer func() { _ = a.Close() }()

	turn := a.Assistant.RunTurn(context.Background(), conversation.NewState(), "remove everyone")
	require.Equal(t, conversation.OutcomeUnsafeQuery, turn.Outcome)
	require.Equal(t, conversation.NotApplicable, turn.GeneratedQuery)
}

func TestBuildRequiresGeneratorCredentials(t *testing.T) {
	cfg, err := config.Load("c360chat", mapLookup(map[string]string{
		"C360CHAT_WAREHOUSE_LOCAL_GLOB": "/tmp/none/*.parquet",
	}))
	require.NoError(t, err)
	_, err = Build(context.Background(), cfg, nil)
	require.Error(t, err)
}

func TestDialect(t *testing.T) {
	require.Equal(t, "PostgreSQL", Dialect(config.DriverPostgres))
	require.Equal(t, "DuckDB SQL", Dialect(config.DriverDuckDB))
}

func TestCheckObjectStoreConfig(t *testing.T) {
	cfg, err := config.Load("c360chat", mapLookup(nil))
	require.NoError(t, err)
	require.NoError(t, CheckObjectStoreConfig(cfg)(context.Background()))

	cfg.ObjectStore.Endpoint = ""
	require.Error(t, CheckObjectStoreConfig(cfg)(context.Background()))

	cfg.Warehouse.LocalGlob = "/data/*.parquet"
	require.NoError(t, CheckObjectStoreConfig(cfg)(context.Background()))
}
