package assistant

import (
	"fmt"

	"github.com/c360chat/c360chat/internal/conversation"
)

const (
	RejectedAnswer  = "Unsafe or invalid SQL detected. Query blocked."
	NoResultsAnswer = "No results found."
)

// Failure is the result of a pipeline stage that did not succeed. Kind is
// one of the non-ok outcomes.
type Failure struct {
	Kind conversation.Outcome
	Err  error
}

func (f *Failure) Error() string {
	if f.Err == nil {
		return string(f.Kind)
	}
	return fmt.Sprintf("%s: %v", f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Answer is the user-facing text for a failed turn.
func (f *Failure) Answer() string {
	if f.Kind == conversation.OutcomeUnsafeQuery {
		return RejectedAnswer
	}
	if f.Err == nil {
		return "Error: " + string(f.Kind)
	}
	return "Error: " + f.Err.Error()
}

func failure(kind conversation.Outcome, err error) *Failure {
	return &Failure{Kind: kind, Err: err}
}
