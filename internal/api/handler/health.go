package handler

import (
	"net/http"

	"github.com/querybuddy/querybuddy/internal/dbconn"
	"github.com/querybuddy/querybuddy/pkg/apierr"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	provider *dbconn.Provider
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(provider *dbconn.Provider) *HealthHandler {
	return &HealthHandler{provider: provider}
}

// Healthz reports process liveness.
func (h *HealthHandler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz reports readiness: the target database must answer a ping.
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.provider == nil || !h.provider.IsConnected(r.Context()) {
		writeAPIError(w, nil, apierr.DatabaseNotReady())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
