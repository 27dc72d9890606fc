package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/querybuddy/querybuddy/internal/pipeline"
)

// AskDatabaseParams are the parameters for the ask_database tool.
type AskDatabaseParams struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id,omitempty"`
}

// Asker runs the question pipeline. Satisfied by *pipeline.Runner.
type Asker interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// AskDatabaseHandler answers natural-language questions over MCP.
type AskDatabaseHandler struct {
	runner Asker
	logger *slog.Logger
}

// NewAskDatabaseHandler creates a new AskDatabaseHandler.
func NewAskDatabaseHandler(runner Asker, logger *slog.Logger) *AskDatabaseHandler {
	return &AskDatabaseHandler{runner: runner, logger: logger}
}

// Handle runs the pipeline and renders the terminal state as tool text.
// Pipeline failures are returned as errors so the client sees IsError.
func (h *AskDatabaseHandler) Handle(ctx context.Context, params AskDatabaseParams) (string, error) {
	result, err := h.runner.Run(ctx, pipeline.Request{
		Question:  params.Question,
		SessionID: params.SessionID,
	})
	if err != nil {
		return "", err
	}

	state := result.State
	if state.Err != nil {
		return "", fmt.Errorf("%s: %s", state.Err.Kind, state.Err.Message)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\n\n", result.SessionID)
	fmt.Fprintf(&b, "SQL:\n%s\n\n", state.SQLQuery)
	fmt.Fprintf(&b, "Answer:\n%s\n", state.FormattedResponse)
	if state.Explanation != "" {
		fmt.Fprintf(&b, "\nExplanation:\n%s\n", state.Explanation)
	}
	return b.String(), nil
}
