// Package pipeline turns a natural-language question into a validated
// read-only SQL statement, executes it, and produces a formatted answer plus
// explanation. Stages run strictly in order within one synchronous run; the
// only concurrency is across independent sessions.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/querybuddy/querybuddy/internal/dbconn"
	"github.com/querybuddy/querybuddy/internal/history"
	"github.com/querybuddy/querybuddy/internal/llm"
	"github.com/querybuddy/querybuddy/internal/prompt"
)

// Stage names, in pipeline order.
const (
	StageAnalyzeSchema = "analyze_schema"
	StageSelectTables  = "select_tables"
	StageGenerateSQL   = "generate_sql"
	StageExecuteQuery  = "execute_query"
	StageFormatResults = "format_results"
	StageExplainQuery  = "explain_query"
)

// SchemaProvider is the pipeline's view of the user's database. Connection
// lifecycle is entirely the implementation's concern.
type SchemaProvider interface {
	IsConnected(ctx context.Context) bool
	SchemaText(ctx context.Context) (string, error)
	ExecuteReadOnly(ctx context.Context, query string) ([]string, []map[string]any, error)
}

// Request is the input to one pipeline run.
type Request struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id,omitempty"`
}

// Result is the caller-facing outcome of one run.
type Result struct {
	SessionID string      `json:"session_id"`
	State     *QueryState `json:"state"`
}

// Runner drives the fixed stage order for one question at a time. A Runner
// is safe for concurrent use across sessions; runs share no mutable state
// beyond the conversation store.
type Runner struct {
	provider SchemaProvider
	model    llm.Caller
	prompts  *prompt.Catalog
	store    history.Store
	dialect  dbconn.Dialect
	window   int
	logger   *slog.Logger
}

// NewRunner creates a pipeline runner. The history window defaults to the
// last two question/answer exchanges.
func NewRunner(provider SchemaProvider, model llm.Caller, prompts *prompt.Catalog, store history.Store, dialect dbconn.Dialect, logger *slog.Logger) *Runner {
	return &Runner{
		provider: provider,
		model:    model,
		prompts:  prompts,
		store:    store,
		dialect:  dialect,
		window:   history.DefaultWindow,
		logger:   logger,
	}
}

type namedStage struct {
	name string
	run  func(context.Context, *QueryState) StageResult
}

func (r *Runner) stages() []namedStage {
	return []namedStage{
		{StageAnalyzeSchema, r.analyzeSchema},
		{StageSelectTables, r.selectTables},
		{StageGenerateSQL, r.generateSQL},
		{StageExecuteQuery, r.executeQuery},
		{StageFormatResults, r.formatResults},
		{StageExplainQuery, r.explainQuery},
	}
}

// Run processes one question for a session. The returned error covers only
// invalid input; pipeline failures land on State.Err and the run is still a
// complete, terminal result. Once a stage fails, every later stage is a
// no-op pass-through.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, fmt.Errorf("question is required")
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	turns, err := r.store.Load(ctx, sessionID)
	if err != nil {
		r.logger.Warn("failed to load history, starting fresh",
			slog.String("session", sessionID), slog.String("error", err.Error()))
		turns = nil
	}

	state := &QueryState{
		Question:       question,
		Dialect:        string(r.dialect),
		historyContext: history.Format(history.Window(turns, r.window)),
	}

	for _, sg := range r.stages() {
		if state.Err != nil {
			r.logger.Debug("stage skipped", slog.String("stage", sg.name), slog.String("session", sessionID))
			continue
		}

		res := sg.run(ctx, state)
		state = res.State
		if res.Failed {
			r.logger.Warn("stage failed",
				slog.String("stage", sg.name),
				slog.String("session", sessionID),
				slog.String("kind", string(state.Err.Kind)),
				slog.String("error", state.Err.Message))
			continue
		}

		// History is persisted as soon as formatting succeeds, so a later
		// explanation failure never loses the exchange.
		if sg.name == StageFormatResults && state.FormattedResponse != "" {
			if err := r.store.Append(ctx, sessionID,
				history.Turn{Role: history.RoleUser, Content: state.Question},
				history.Turn{Role: history.RoleAssistant, Content: state.FormattedResponse},
			); err != nil {
				r.logger.Warn("failed to persist history",
					slog.String("session", sessionID), slog.String("error", err.Error()))
			}
		}
	}

	if state.Err == nil {
		r.logger.Info("question answered",
			slog.String("session", sessionID),
			slog.String("sql", state.SQLQuery),
			slog.Int("rows", len(state.QueryResults)))
	}

	return &Result{SessionID: sessionID, State: state}, nil
}
