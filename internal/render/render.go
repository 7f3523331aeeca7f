package render

import (
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/c360chat/c360chat/internal/conversation"
	"github.com/c360chat/c360chat/internal/schema"
)

// ShowTable reports whether a turn's rows deserve a table: more than one row,
// or a single row with more than one field.
func ShowTable(turn conversation.Turn) bool {
	if len(turn.Rows) > 1 {
		return true
	}
	return len(turn.Rows) == 1 && len(turn.Rows[0]) > 1
}

type Renderer struct {
	// Color enables ANSI styling of labels.
	Color bool
}

func (r Renderer) Turn(w io.Writer, turn conversation.Turn) {
	_, _ = fmt.Fprintf(w, "%s %s\n", r.label("You:"), turn.UserText)
	_, _ = fmt.Fprintln(w, r.label("SQL:"))
	_, _ = fmt.Fprintln(w, "```sql")
	_, _ = fmt.Fprintln(w, turn.GeneratedQuery)
	_, _ = fmt.Fprintln(w, "```")
	_, _ = fmt.Fprintf(w, "%s %s\n", r.label("Answer:"), turn.Answer)
	if ShowTable(turn) {
		Rows(w, columnsOf(turn), turn.Rows)
	}
}

// Transcript renders every turn in order, separated by blank lines.
func (r Renderer) Transcript(w io.Writer, turns []conversation.Turn) {
	if len(turns) == 0 {
		_, _ = fmt.Fprintln(w, "(no turns yet)")
		return
	}
	for i, turn := range turns {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}
		r.Turn(w, turn)
	}
}

func (r Renderer) label(s string) string {
	if !r.Color {
		return s
	}
	return text.Colors{text.Bold, text.FgCyan}.Sprint(s)
}

func Rows(w io.Writer, columns []string, rows []conversation.Record) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(columns))
	for i, column := range columns {
		header[i] = column
	}
	t.AppendHeader(header)
	for _, record := range rows {
		row := make(table.Row, len(columns))
		for i, column := range columns {
			row[i] = conversation.FormatValue(record[column])
		}
		t.AppendRow(row)
	}
	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(rows))
}

// Schema prints the table's column reference.
func Schema(w io.Writer, descriptor schema.Descriptor) {
	_, _ = fmt.Fprintf(w, "Table: %s\n", descriptor.Identifier())
	if descriptor.Grain != "" {
		_, _ = fmt.Fprintf(w, "Grain: %s\n", descriptor.Grain)
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Column", "Type", "Description"})
	for _, column := range descriptor.Columns {
		t.AppendRow(table.Row{column.Name, column.Type, column.Description})
	}
	t.Render()
}

// columnsOf prefers the engine's column order and falls back to sorted keys
// for turns that lost it, such as ones decoded from JSON.
func columnsOf(turn conversation.Turn) []string {
	if len(turn.Columns) > 0 {
		return turn.Columns
	}
	seen := map[string]struct{}{}
	var columns []string
	for _, record := range turn.Rows {
		for key := range record {
			if _, ok := seen[key]; !ok {
				seen[key] = struct{}{}
				columns = append(columns, key)
			}
		}
	}
	sort.Strings(columns)
	return columns
}
