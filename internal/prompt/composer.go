package prompt

import (
	"fmt"
	"strings"

	"github.com/c360chat/c360chat/internal/conversation"
	"github.com/c360chat/c360chat/internal/schema"
)

// FreshLeadWords mark a question as a new topic. The list is deliberately
// small and matched against the lowercased, untrimmed input; a follow-up such
// as "What about Texas?" is therefore treated as fresh.
var FreshLeadWords = []string{"how", "what", "show", "list", "give"}

const DefaultDialect = "DuckDB SQL"

type Prompt struct {
	Mode conversation.Mode
	Text string
}

type Composer struct {
	schema  schema.Descriptor
	dialect string
}

func NewComposer(descriptor schema.Descriptor, dialect string) *Composer {
	dialect = strings.TrimSpace(dialect)
	if dialect == "" {
		dialect = DefaultDialect
	}
	return &Composer{schema: descriptor, dialect: dialect}
}

func (c *Composer) Schema() schema.Descriptor {
	return c.schema
}

func (c *Composer) Dialect() string {
	return c.dialect
}

// SelectMode decides between editing the previous query and writing a new one.
func SelectMode(userText string, turns []conversation.Turn) conversation.Mode {
	if len(turns) == 0 {
		return conversation.ModeFresh
	}
	if !turns[len(turns)-1].HasQuery() {
		return conversation.ModeFresh
	}
	lowered := strings.ToLower(userText)
	for _, word := range FreshLeadWords {
		if strings.HasPrefix(lowered, word) {
			return conversation.ModeFresh
		}
	}
	return conversation.ModeFollowUp
}

// Compose builds the single prompt sent to the model. It has no side effects.
func (c *Composer) Compose(userText string, turns []conversation.Turn) Prompt {
	mode := SelectMode(userText, turns)
	if mode == conversation.ModeFollowUp {
		return Prompt{Mode: mode, Text: c.followUp(userText, turns[len(turns)-1].GeneratedQuery)}
	}
	return Prompt{Mode: mode, Text: c.fresh(userText, turns)}
}

func (c *Composer) followUp(userText, lastQuery string) string {
	return fmt.Sprintf(`You are an expert SQL assistant.
The last SQL query was:

%s

The user asked a follow-up: %q

Modify the previous SQL to incorporate the new filter or condition,
while keeping the same structure and logic where possible.

Only return valid %s.
`, lastQuery, userText, c.dialect)
}

func (c *Composer) fresh(userText string, turns []conversation.Turn) string {
	table := c.schema.Identifier()

	var b strings.Builder
	b.WriteString("You are an expert SQL generator.\n")
	fmt.Fprintf(&b, "Convert the following natural language question into a %s SELECT query.\n\n", c.dialect)

	b.WriteString("Rules:\n")
	fmt.Fprintf(&b, "- Use ONLY the table: %s, written exactly like that.\n", table)
	b.WriteString("- Do NOT use any other tables or datasets.\n")
	b.WriteString("- Do NOT generate DML (INSERT, UPDATE, DELETE, MERGE) or DDL (CREATE, DROP, ALTER).\n")
	b.WriteString("- Do NOT use non-SELECT queries; start the query with SELECT.\n")
	fmt.Fprintf(&b, "- Only valid %s is allowed.\n", c.dialect)
	b.WriteString("- For customer counts -> use COUNT(DISTINCT customer_key) or COUNT(email).\n")
	b.WriteString("- For total orders -> use SUM(total_orders), not COUNT(*).\n")
	b.WriteString("- For total sales -> use SUM(total_net_sales).\n")
	b.WriteString("- For ratios such as AOV -> divide the aggregated sums, never average per-row ratios.\n")
	b.WriteString("- For time periods -> filter on acquisition_date unless last_order_date is explicitly requested.\n")
	b.WriteString("- When ranking by zipcode/city/state, always aggregate first, then ORDER BY the metric.\n\n")

	b.WriteString("Schema:\n")
	b.WriteString(c.schema.Render())
	b.WriteString("\n")

	b.WriteString("Chat history so far:\n")
	b.WriteString(FormatHistory(turns))
	b.WriteString("\n")

	fmt.Fprintf(&b, "New Question: %s\n\nSQL:\n", userText)
	return b.String()
}

// FormatHistory serializes turns as User/SQL/Answer triples.
func FormatHistory(turns []conversation.Turn) string {
	entries := make([]string, 0, len(turns))
	for _, turn := range turns {
		entries = append(entries, fmt.Sprintf("User: %s\nSQL: %s\nAnswer: %s", turn.UserText, turn.GeneratedQuery, turn.Answer))
	}
	return strings.Join(entries, "\n")
}
