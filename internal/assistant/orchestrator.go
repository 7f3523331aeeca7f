package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/c360chat/c360chat/internal/conversation"
	"github.com/c360chat/c360chat/internal/nl2sql"
	"github.com/c360chat/c360chat/internal/observability"
	"github.com/c360chat/c360chat/internal/prompt"
	"github.com/c360chat/c360chat/internal/query"
	"github.com/c360chat/c360chat/internal/sqlguard"
)

type Options struct {
	Composer  *prompt.Composer
	Generator nl2sql.Generator
	Validator *sqlguard.Validator
	Engine    query.Engine
	Logger    *slog.Logger
	// RowLimit caps result rows when positive.
	RowLimit int
	Clock    func() time.Time
}

// Orchestrator runs one question through compose, generate, sanitize,
// validate, execute and summarize, and appends the resulting turn.
type Orchestrator struct {
	composer  *prompt.Composer
	generator nl2sql.Generator
	validator *sqlguard.Validator
	engine    query.Engine
	logger    *slog.Logger
	rowLimit  int
	clock     func() time.Time
}

func New(opts Options) (*Orchestrator, error) {
	if opts.Composer == nil {
		return nil, fmt.Errorf("prompt composer is required")
	}
	if opts.Generator == nil {
		return nil, fmt.Errorf("sql generator is required")
	}
	if opts.Validator == nil {
		return nil, fmt.Errorf("sql validator is required")
	}
	if opts.Engine == nil {
		return nil, fmt.Errorf("query engine is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = observability.DiscardLogger()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Orchestrator{
		composer:  opts.Composer,
		generator: opts.Generator,
		validator: opts.Validator,
		engine:    opts.Engine,
		logger:    logger,
		rowLimit:  opts.RowLimit,
		clock:     clock,
	}, nil
}

func (o *Orchestrator) Composer() *prompt.Composer {
	return o.composer
}

// RunTurn always returns a turn with a non-empty answer and appends it to
// state exactly once. Stage failures, including panics in collaborators,
// become failed turns instead of errors.
func (o *Orchestrator) RunTurn(ctx context.Context, state *conversation.State, userText string) conversation.Turn {
	start := o.clock()
	history := state.Turns()

	turn := conversation.Turn{
		ID:        uuid.NewString(),
		UserText:  userText,
		CreatedAt: start.UTC(),
	}

	composed, fail := o.compose(userText, history)
	turn.Mode = composed.Mode
	if turn.Mode == "" {
		turn.Mode = prompt.SelectMode(userText, history)
	}
	var sqlText string
	var result query.Result
	if fail == nil {
		sqlText, result, fail = o.resolve(ctx, composed)
	}

	if fail != nil {
		turn.GeneratedQuery = conversation.NotApplicable
		turn.Answer = fail.Answer()
		turn.Outcome = fail.Kind
		turn.Rows = []conversation.Record{}
	} else {
		turn.GeneratedQuery = sqlText
		turn.Answer = Summarize(result)
		turn.Outcome = conversation.OutcomeOK
		turn.Columns = result.RecordKeys()
		turn.Rows = toRecords(result)
	}
	turn.Duration = o.clock().Sub(start)

	state.Append(turn)
	observability.ObserveTurn(string(turn.Outcome), string(turn.Mode), turn.Duration)
	o.logTurn(ctx, turn, fail)
	return turn
}

func (o *Orchestrator) compose(userText string, history []conversation.Turn) (composed prompt.Prompt, fail *Failure) {
	defer recoverStage(conversation.OutcomeGenerationFailure, &fail)
	return o.composer.Compose(userText, history), nil
}

// resolve runs the stages after prompt composition. The engine is only
// reached when the validator accepts the sanitized text.
func (o *Orchestrator) resolve(ctx context.Context, composed prompt.Prompt) (string, query.Result, *Failure) {
	raw, fail := o.generate(ctx, composed.Text)
	if fail != nil {
		return "", query.Result{}, fail
	}

	sqlText, fail := o.sanitizeAndCheck(raw)
	if fail != nil {
		return "", query.Result{}, fail
	}

	result, fail := o.execute(ctx, sqlText)
	if fail != nil {
		return "", query.Result{}, fail
	}
	return sqlText, result, nil
}

func (o *Orchestrator) generate(ctx context.Context, promptText string) (raw string, fail *Failure) {
	defer recoverStage(conversation.OutcomeGenerationFailure, &fail)
	start := time.Now()
	raw, err := o.generator.Generate(ctx, promptText)
	observability.ObserveGeneration(time.Since(start))
	if err != nil {
		return "", failure(conversation.OutcomeGenerationFailure, err)
	}
	return raw, nil
}

func (o *Orchestrator) sanitizeAndCheck(raw string) (sqlText string, fail *Failure) {
	defer recoverStage(conversation.OutcomeUnsafeQuery, &fail)
	sqlText = sqlguard.Sanitize(raw)
	if err := o.validator.Check(sqlText); err != nil {
		return "", failure(conversation.OutcomeUnsafeQuery, err)
	}
	return sqlText, nil
}

func (o *Orchestrator) execute(ctx context.Context, sqlText string) (result query.Result, fail *Failure) {
	defer recoverStage(conversation.OutcomeExecutionFailure, &fail)
	start := time.Now()
	result, err := o.engine.Execute(ctx, query.Request{SQL: sqlText, RowLimit: o.rowLimit})
	observability.ObserveQuery(time.Since(start))
	if err != nil {
		return query.Result{}, failure(conversation.OutcomeExecutionFailure, err)
	}
	return result, nil
}

func recoverStage(kind conversation.Outcome, fail **Failure) {
	if r := recover(); r != nil {
		*fail = failure(kind, fmt.Errorf("panic: %v", r))
	}
}

func (o *Orchestrator) logTurn(ctx context.Context, turn conversation.Turn, fail *Failure) {
	attrs := []any{
		slog.String("turn_id", turn.ID),
		slog.String("mode", string(turn.Mode)),
		slog.String("outcome", string(turn.Outcome)),
		slog.Int("rows", len(turn.Rows)),
		slog.Int64("duration_ms", turn.Duration.Milliseconds()),
	}
	if fail == nil {
		o.logger.InfoContext(ctx, "turn_completed", attrs...)
		return
	}
	attrs = append(attrs, slog.Any("error", fail.Err))
	o.logger.WarnContext(ctx, "turn_failed", attrs...)
}
