package schema

import (
	"fmt"
	"strings"
)

type Column struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

type Metric struct {
	Name       string `json:"name"`
	Expression string `json:"expression"`
	Note       string `json:"note,omitempty"`
}

// Descriptor is the static contract injected into every fresh-mode prompt.
// Values are never mutated after construction.
type Descriptor struct {
	Dataset     string   `json:"dataset"`
	Table       string   `json:"table"`
	Grain       string   `json:"grain"`
	Notes       []string `json:"notes"`
	BaseColumns []string `json:"base_columns"`
	Metrics     []Metric `json:"metrics"`
	DateFilter  []string `json:"date_filter"`
	Grouping    []string `json:"grouping"`
	Columns     []Column `json:"columns"`
	Footnote    string   `json:"footnote,omitempty"`
}

// Identifier returns the fully-qualified, quoted table name. Generated SQL
// must contain it byte for byte.
func (d Descriptor) Identifier() string {
	if strings.TrimSpace(d.Dataset) == "" {
		return QuoteIdent(d.Table)
	}
	return QuoteIdent(d.Dataset) + "." + QuoteIdent(d.Table)
}

func (d Descriptor) Column(name string) (Column, bool) {
	for _, column := range d.Columns {
		if column.Name == name {
			return column, true
		}
	}
	return Column{}, false
}

// Render produces the schema block of the fresh-mode prompt.
func (d Descriptor) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Table: %s\n", d.Identifier())
	b.WriteString("Important Notes:\n")
	if d.Grain != "" {
		fmt.Fprintf(&b, "- %s\n", d.Grain)
	}
	for _, note := range d.Notes {
		fmt.Fprintf(&b, "- %s\n", note)
	}

	if len(d.BaseColumns) > 0 {
		b.WriteString("- Always use these base columns for metrics:\n")
		for _, name := range d.BaseColumns {
			column, ok := d.Column(name)
			if !ok {
				fmt.Fprintf(&b, "    - %s\n", name)
				continue
			}
			fmt.Fprintf(&b, "    - %s (%s): %s\n", column.Name, column.Type, column.Description)
		}
	}

	if len(d.Metrics) > 0 {
		b.WriteString("- To calculate metrics:\n")
		for _, metric := range d.Metrics {
			fmt.Fprintf(&b, "    - %s -> %s.\n", metric.Name, metric.Expression)
			if metric.Note != "" {
				fmt.Fprintf(&b, "      *%s*\n", metric.Note)
			}
		}
	}

	if len(d.DateFilter) > 0 {
		b.WriteString("- When the user specifies a time period (month, year, quarter):\n")
		for _, rule := range d.DateFilter {
			fmt.Fprintf(&b, "    - %s\n", rule)
		}
	}

	if len(d.Grouping) > 0 {
		b.WriteString("- When grouping (e.g., by zipcode, state, acquisition_product):\n")
		for _, rule := range d.Grouping {
			fmt.Fprintf(&b, "    - %s\n", rule)
		}
	}

	b.WriteString("Columns:\n")
	for _, column := range d.Columns {
		fmt.Fprintf(&b, "- %s (%s): %s\n", column.Name, column.Type, column.Description)
	}
	if d.Footnote != "" {
		fmt.Fprintf(&b, "\n(%s)\n", d.Footnote)
	}
	return b.String()
}

func QuoteIdent(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}
