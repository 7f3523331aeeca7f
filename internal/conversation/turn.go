package conversation

import (
	"fmt"
	"time"
)

// NotApplicable is stored as the generated query of a turn whose generation,
// validation or execution failed.
const NotApplicable = "N/A"

type Outcome string

const (
	OutcomeOK                Outcome = "ok"
	OutcomeGenerationFailure Outcome = "generation_failure"
	OutcomeUnsafeQuery       Outcome = "unsafe_query"
	OutcomeExecutionFailure  Outcome = "execution_failure"
)

type Mode string

const (
	ModeFresh    Mode = "fresh"
	ModeFollowUp Mode = "follow_up"
)

// Record maps column name to a scalar value (string, int64, float64, bool or
// time.Time for dates).
type Record map[string]any

type Turn struct {
	ID             string        `json:"id"`
	UserText       string        `json:"user_text"`
	GeneratedQuery string        `json:"generated_query"`
	Answer         string        `json:"answer"`
	Columns        []string      `json:"columns"`
	Rows           []Record      `json:"rows"`
	Outcome        Outcome       `json:"outcome"`
	Mode           Mode          `json:"mode"`
	CreatedAt      time.Time     `json:"created_at"`
	Duration       time.Duration `json:"duration_ns"`
}

// HasQuery reports whether the turn carries a query usable as a follow-up base.
func (t Turn) HasQuery() bool {
	return t.GeneratedQuery != "" && t.GeneratedQuery != NotApplicable
}

// FormatValue renders a scalar the way answers and tables show it. Dates
// without a time component print as YYYY-MM-DD.
func FormatValue(value any) string {
	switch typed := value.(type) {
	case nil:
		return "NULL"
	case time.Time:
		if typed.Hour() == 0 && typed.Minute() == 0 && typed.Second() == 0 && typed.Nanosecond() == 0 {
			return typed.Format(time.DateOnly)
		}
		return typed.Format(time.RFC3339)
	case []byte:
		return string(typed)
	default:
		return fmt.Sprintf("%v", typed)
	}
}
