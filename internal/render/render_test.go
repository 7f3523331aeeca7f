package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/c360chat/c360chat/internal/conversation"
	"github.com/c360chat/c360chat/internal/schema"
)

func TestShowTable(t *testing.T) {
	cases := []struct {
		name string
		rows []conversation.Record
		want bool
	}{
		{name: "no rows", rows: nil, want: false},
		{name: "single value", rows: []conversation.Record{{"total_customers": int64(4213)}}, want: false},
		{name: "single row two fields", rows: []conversation.Record{{"a": 1, "b": 2}}, want: true},
		{name: "two rows", rows: []conversation.Record{{"a": 1}, {"a": 2}}, want: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ShowTable(conversation.Turn{Rows: tc.rows}))
		})
	}
}

func TestTurnSuppressesTableForSingleValue(t *testing.T) {
	var buf bytes.Buffer
	Renderer{}.Turn(&buf, conversation.Turn{
		UserText:       "How many customers do we have?",
		GeneratedQuery: `SELECT COUNT(*) AS total_customers FROM "prod_presentation"."customer360"`,
		Answer:         "total_customers: 4213",
		Columns:        []string{"total_customers"},
		Rows:           []conversation.Record{{"total_customers": int64(4213)}},
	})
	out := buf.String()
	require.Contains(t, out, "You: How many customers do we have?")
	require.Contains(t, out, "SQL:\n```sql\nSELECT COUNT(*)")
	require.Contains(t, out, "Answer: total_customers: 4213")
	require.NotContains(t, out, "rows)")
}

func TestTurnRendersTableInColumnOrder(t *testing.T) {
	var buf bytes.Buffer
	Renderer{}.Turn(&buf, conversation.Turn{
		UserText:       "show customers by state",
		GeneratedQuery: "SELECT ...",
		Answer:         "Returned 2 rows.",
		Columns:        []string{"state", "customers"},
		Rows: []conversation.Record{
			{"state": "TX", "customers": int64(10)},
			{"state": "CA", "customers": nil},
		},
	})
	out := buf.String()
	require.Contains(t, out, "(2 rows)")
	require.Contains(t, out, "NULL")
	header := strings.ToUpper(out)
	require.Less(t, strings.Index(header, "STATE"), strings.Index(header, "CUSTOMERS"))
}

func TestColumnsOfFallsBackToSortedKeys(t *testing.T) {
	got := columnsOf(conversation.Turn{Rows: []conversation.Record{{"b": 1, "a": 2}}})
	require.Equal(t, []string{"a", "b"}, got)
}

func TestTranscriptAndSchema(t *testing.T) {
	var buf bytes.Buffer
	Renderer{}.Transcript(&buf, nil)
	require.Contains(t, buf.String(), "no turns yet")

	buf.Reset()
	Schema(&buf, schema.Customer360(schema.DefaultDataset, schema.DefaultTable))
	require.Contains(t, buf.String(), `Table: "prod_presentation"."customer360"`)
	require.Contains(t, buf.String(), "customer_key")
}

func TestColorLabels(t *testing.T) {
	var buf bytes.Buffer
	Renderer{Color: true}.Turn(&buf, conversation.Turn{UserText: "q", GeneratedQuery: "N/A", Answer: "Error: x"})
	require.Contains(t, buf.String(), "\x1b[")
}
