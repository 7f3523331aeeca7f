package sqlguard

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmpty          = errors.New("query is empty")
	ErrNotSelect      = errors.New("query does not start with select")
	ErrForbiddenWord  = errors.New("query contains a mutation or definition keyword")
	ErrTableNotScoped = errors.New("query does not reference the permitted table")
)

// ForbiddenKeywords are rejected as case-insensitive substrings anywhere in the
// query. This is a textual denylist, not a parser: identifiers such as
// created_at or last_update trip it, and string concatenation or encoded
// keywords slip past it.
var ForbiddenKeywords = []string{"insert", "update", "delete", "drop", "alter", "create", "merge"}

type Validator struct {
	table string
}

// NewValidator returns a gate that only admits SELECT statements mentioning
// table, compared case-sensitively including its quoting.
func NewValidator(table string) (*Validator, error) {
	if strings.TrimSpace(table) == "" {
		return nil, fmt.Errorf("table identifier is required")
	}
	return &Validator{table: table}, nil
}

func (v *Validator) Table() string {
	return v.table
}

func (v *Validator) Validate(query string) bool {
	return v.Check(query) == nil
}

// Check reports the first rule the query violates.
func (v *Validator) Check(query string) error {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return ErrEmpty
	}
	lowered := strings.ToLower(trimmed)
	if !strings.HasPrefix(lowered, "select") {
		return ErrNotSelect
	}
	for _, keyword := range ForbiddenKeywords {
		if strings.Contains(lowered, keyword) {
			return fmt.Errorf("%w: %q", ErrForbiddenWord, keyword)
		}
	}
	if !strings.Contains(trimmed, v.table) {
		return fmt.Errorf("%w: %s", ErrTableNotScoped, v.table)
	}
	return nil
}
