package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/querybuddy/querybuddy/internal/llm"
	"github.com/querybuddy/querybuddy/internal/prompt"
)

const diagnosisTimeout = 15 * time.Second

// noResultsMessage is the fixed response for an empty result set. No model
// call is made on this path.
const noResultsMessage = "No results found for your query."

// analyzeSchema snapshots the current schema once per run. The snapshot is
// never refreshed mid-pipeline.
func (r *Runner) analyzeSchema(ctx context.Context, s *QueryState) StageResult {
	if !r.provider.IsConnected(ctx) {
		return Fail(s, KindConnection, "No database connection established")
	}
	schema, err := r.provider.SchemaText(ctx)
	if err != nil {
		return Fail(s, KindConnection, fmt.Sprintf("error analyzing schema: %v", err))
	}
	s.SchemaText = schema
	return Continue(s)
}

// selectTables asks the model which tables matter for the question. An empty
// list is a valid "no relevant tables" outcome, and the hint is advisory:
// generation is never constrained by it.
func (r *Runner) selectTables(ctx context.Context, s *QueryState) StageResult {
	p, err := r.prompts.Render(prompt.TableSelection, prompt.TableSelectionParams{
		Question: s.Question,
		Schema:   s.SchemaText,
	})
	if err != nil {
		return Fail(s, KindSelection, fmt.Sprintf("error selecting tables: %v", err))
	}

	resp, err := r.model.Complete(ctx, []llm.Message{{Role: "user", Content: p}})
	if err != nil {
		return Fail(s, KindSelection, fmt.Sprintf("error selecting tables: %v", err))
	}

	tables, err := parseTableList(resp)
	if err != nil {
		return Fail(s, KindSelection, fmt.Sprintf("error selecting tables: %v", err))
	}
	s.RelevantTables = tables
	return Continue(s)
}

// parseTableList turns the model's table-selection answer into a list of
// table names. Accepts a JSON array, a JSON object with a relevant_tables
// key, the NO_TABLES_FOUND sentinel, or a bare comma-separated list.
func parseTableList(resp string) ([]string, error) {
	cleaned := strings.TrimSpace(stripFences(resp))
	if cleaned == "" || strings.Contains(strings.ToUpper(cleaned), "NO_TABLES_FOUND") {
		return nil, nil
	}

	if strings.HasPrefix(cleaned, "[") {
		var names []string
		if err := json.Unmarshal([]byte(cleaned), &names); err != nil {
			return nil, fmt.Errorf("unparsable table list: %w", err)
		}
		return trimNames(names), nil
	}
	if strings.HasPrefix(cleaned, "{") {
		var obj struct {
			RelevantTables []string `json:"relevant_tables"`
			Tables         []string `json:"tables"`
		}
		if err := json.Unmarshal([]byte(cleaned), &obj); err != nil {
			return nil, fmt.Errorf("unparsable table list: %w", err)
		}
		if len(obj.RelevantTables) > 0 {
			return trimNames(obj.RelevantTables), nil
		}
		return trimNames(obj.Tables), nil
	}

	// Plain comma-separated fallback, one line.
	line := cleaned
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	return trimNames(strings.Split(line, ",")), nil
}

func trimNames(names []string) []string {
	var out []string
	for _, n := range names {
		if t := strings.TrimSpace(n); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// generateSQL renders the generation prompt (with the advisory table hint
// and recent conversation context), extracts one statement from the raw
// model output, and validates it against the read-only policy.
func (r *Runner) generateSQL(ctx context.Context, s *QueryState) StageResult {
	tables := strings.Join(s.RelevantTables, ", ")
	if tables == "" {
		tables = "(no table hint)"
	}

	p, err := r.prompts.Render(prompt.SQLGeneration, prompt.SQLGenerationParams{
		Question: s.Question,
		Schema:   s.SchemaText,
		Tables:   tables,
		Dialect:  s.Dialect,
		Context:  s.historyContext,
	})
	if err != nil {
		return Fail(s, KindExtraction, fmt.Sprintf("error generating SQL: %v", err))
	}

	raw, err := r.model.Complete(ctx, []llm.Message{{Role: "user", Content: p}})
	if err != nil {
		return Fail(s, KindExtraction, fmt.Sprintf("error generating SQL: %v", err))
	}

	sql, err := ExtractSQL(raw)
	if err != nil {
		return Fail(s, KindExtraction, err.Error())
	}
	if err := Validate(sql); err != nil {
		return Fail(s, KindSecurity, err.Error())
	}
	s.SQLQuery = sql
	return Continue(s)
}

// executeQuery runs the validated statement. On failure the raw database
// error is kept verbatim; a best-effort model diagnosis may be appended but
// never replaces it.
func (r *Runner) executeQuery(ctx context.Context, s *QueryState) StageResult {
	if s.SQLQuery == "" {
		return Fail(s, KindExecution, "no SQL query to execute")
	}

	cols, rows, err := r.provider.ExecuteReadOnly(ctx, s.SQLQuery)
	if err != nil {
		msg := fmt.Sprintf("SQL execution error: %v", err)
		if diag := r.diagnoseError(ctx, s, err); diag != "" {
			msg += "\n\nAnalysis: " + diag
		}
		return Fail(s, KindExecution, msg)
	}
	s.Columns = cols
	s.QueryResults = rows
	return Continue(s)
}

// diagnoseError asks the model to explain a database error. Any failure here
// returns "" so the raw error always survives untouched.
func (r *Runner) diagnoseError(ctx context.Context, s *QueryState, execErr error) string {
	p, err := r.prompts.Render(prompt.ErrorAnalysis, prompt.ErrorAnalysisParams{
		Question:     s.Question,
		SQLQuery:     s.SQLQuery,
		ErrorMessage: execErr.Error(),
		Schema:       s.SchemaText,
	})
	if err != nil {
		return ""
	}

	diagCtx, cancel := context.WithTimeout(ctx, diagnosisTimeout)
	defer cancel()

	diag, err := r.model.Complete(diagCtx, []llm.Message{{Role: "user", Content: p}})
	if err != nil {
		r.logger.Debug("error diagnosis call failed", slog.String("error", err.Error()))
		return ""
	}
	return strings.TrimSpace(diag)
}

// formatResults produces the human-facing answer. This is the single
// recoverable stage: a failed model call degrades to the deterministic
// plain-table rendering instead of failing the run.
func (r *Runner) formatResults(ctx context.Context, s *QueryState) StageResult {
	if len(s.QueryResults) == 0 {
		s.FormattedResponse = noResultsMessage
		return Continue(s)
	}

	preview := renderTable(s.Columns, s.QueryResults, previewRows)

	p, err := r.prompts.Render(prompt.ResultFormatting, prompt.FormattingParams{
		Question:    s.Question,
		SQLQuery:    s.SQLQuery,
		RawResults:  preview,
		ChatHistory: s.historyContext,
	})
	if err == nil {
		if resp, callErr := r.model.Complete(ctx, []llm.Message{{Role: "user", Content: p}}); callErr == nil {
			if trimmed := strings.TrimSpace(resp); trimmed != "" {
				s.FormattedResponse = trimmed
				return Continue(s)
			}
		} else {
			r.logger.Warn("result formatting model call failed, using fallback", slog.String("error", callErr.Error()))
		}
	}

	s.FormattedResponse = fallbackRendering(s.Columns, s.QueryResults)
	return Continue(s)
}

// explainQuery produces the prose explanation of the final SQL.
func (r *Runner) explainQuery(ctx context.Context, s *QueryState) StageResult {
	p, err := r.prompts.Render(prompt.QueryExplanation, prompt.ExplanationParams{
		Question: s.Question,
		SQLQuery: s.SQLQuery,
		Schema:   s.SchemaText,
	})
	if err != nil {
		return Fail(s, KindExplanation, fmt.Sprintf("error generating explanation: %v", err))
	}

	resp, err := r.model.Complete(ctx, []llm.Message{{Role: "user", Content: p}})
	if err != nil {
		return Fail(s, KindExplanation, fmt.Sprintf("error generating explanation: %v", err))
	}
	s.Explanation = strings.TrimSpace(resp)
	return Continue(s)
}
