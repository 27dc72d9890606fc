package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/querybuddy/querybuddy/internal/pipeline"
	"github.com/querybuddy/querybuddy/pkg/apierr"
)

// Asker runs the question pipeline. Satisfied by *pipeline.Runner.
type Asker interface {
	Run(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// AskHandler serves the question endpoint.
type AskHandler struct {
	logger *slog.Logger
	runner Asker
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(logger *slog.Logger, runner Asker) *AskHandler {
	return &AskHandler{logger: logger, runner: runner}
}

type askResponse struct {
	SessionID string `json:"session_id"`
	*pipeline.QueryState
}

// Ask handles POST /api/v1/ask. Pipeline failures are part of the result
// body, not transport errors: the run still produced a terminal state.
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req pipeline.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, h.logger, apierr.InvalidRequestBody())
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeAPIError(w, h.logger, apierr.QuestionRequired())
		return
	}

	result, err := h.runner.Run(r.Context(), req)
	if err != nil {
		h.logger.Error("pipeline run failed", slog.String("error", err.Error()))
		writeAPIError(w, h.logger, apierr.QueryFailed(err))
		return
	}

	writeJSON(w, http.StatusOK, askResponse{
		SessionID:  result.SessionID,
		QueryState: result.State,
	})
}
