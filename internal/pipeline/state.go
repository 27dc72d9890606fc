package pipeline

import "fmt"

// ErrorKind classifies terminal pipeline failures. Every kind is terminal for
// the current run; nothing is retried automatically.
type ErrorKind string

const (
	KindConnection  ErrorKind = "connection_error"
	KindSelection   ErrorKind = "selection_error"
	KindExtraction  ErrorKind = "extraction_error"
	KindSecurity    ErrorKind = "security_error"
	KindExecution   ErrorKind = "execution_error"
	KindExplanation ErrorKind = "explanation_error"
)

// StageError is the first failure recorded during a run. Once set it is
// sticky: no later stage may clear it or overwrite downstream fields.
type StageError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Row is one result row keyed by column name. Column order lives on
// QueryState.Columns since Go maps do not preserve it.
type Row = map[string]any

// QueryState is the state threaded through every stage of one question.
// It is created fresh per run and discarded after the caller reads it;
// the question/answer pair is folded into conversation history first.
type QueryState struct {
	Question          string   `json:"question"`
	Dialect           string   `json:"dialect"`
	SchemaText        string   `json:"-"`
	RelevantTables    []string `json:"relevant_tables"`
	SQLQuery          string   `json:"sql_query"`
	Columns           []string `json:"columns,omitempty"`
	QueryResults      []Row    `json:"query_results,omitempty"`
	FormattedResponse string   `json:"formatted_response"`
	Explanation       string   `json:"explanation"`

	Err *StageError `json:"error,omitempty"`

	// historyContext is the formatted last-K window of conversation
	// history, captured at run start and fed to the generation and
	// formatting prompts. Reads never mutate the stored history.
	historyContext string
}

// StageResult is the outcome of one stage: the pipeline either continues with
// the updated state or has failed terminally. The orchestrator branches on
// Failed exactly once per stage instead of each stage re-checking the error.
type StageResult struct {
	State  *QueryState
	Failed bool
}

// Continue returns a passing result carrying the updated state.
func Continue(s *QueryState) StageResult {
	return StageResult{State: s}
}

// Fail records the first error on the state and returns a failed result.
// A pre-existing error is never overwritten.
func Fail(s *QueryState, kind ErrorKind, msg string) StageResult {
	if s.Err == nil {
		s.Err = &StageError{Kind: kind, Message: msg}
	}
	return StageResult{State: s, Failed: true}
}
