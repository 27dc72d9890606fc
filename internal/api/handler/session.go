package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/querybuddy/querybuddy/internal/history"
	"github.com/querybuddy/querybuddy/pkg/apierr"
)

// SessionHandler exposes a session's stored conversation history.
type SessionHandler struct {
	logger *slog.Logger
	store  history.Store
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(logger *slog.Logger, store history.Store) *SessionHandler {
	return &SessionHandler{logger: logger, store: store}
}

type historyResponse struct {
	SessionID string         `json:"session_id"`
	Turns     []history.Turn `json:"turns"`
}

// History handles GET /api/v1/sessions/{sessionID}/history. An unseen
// session returns an empty turn list, not 404: history starts empty.
func (h *SessionHandler) History(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		writeAPIError(w, h.logger, apierr.SessionIDRequired())
		return
	}

	turns, err := h.store.Load(r.Context(), sessionID)
	if err != nil {
		writeAPIError(w, h.logger, apierr.HistoryLoadFailed(err))
		return
	}
	if turns == nil {
		turns = []history.Turn{}
	}
	writeJSON(w, http.StatusOK, historyResponse{SessionID: sessionID, Turns: turns})
}
