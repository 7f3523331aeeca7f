package assistant

import (
	"fmt"

	"github.com/c360chat/c360chat/internal/conversation"
	"github.com/c360chat/c360chat/internal/query"
)

// Summarize turns a successful result into the turn's answer.
func Summarize(result query.Result) string {
	switch {
	case len(result.Rows) == 1 && len(result.Columns) == 1 && len(result.Rows[0]) == 1:
		return fmt.Sprintf("%s: %s", result.Columns[0], conversation.FormatValue(result.Rows[0][0]))
	case len(result.Rows) == 0:
		return NoResultsAnswer
	default:
		return fmt.Sprintf("Returned %d rows.", len(result.Rows))
	}
}

func toRecords(result query.Result) []conversation.Record {
	records := result.Records()
	out := make([]conversation.Record, 0, len(records))
	for _, record := range records {
		out = append(out, conversation.Record(record))
	}
	return out
}
