package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	apihandler "github.com/querybuddy/querybuddy/internal/api/handler"
	apimw "github.com/querybuddy/querybuddy/internal/api/middleware"
	"github.com/querybuddy/querybuddy/internal/dbconn"
	"github.com/querybuddy/querybuddy/internal/history"
	"github.com/querybuddy/querybuddy/internal/pipeline"
)

// NewRouter wires the ask endpoint, session history, and health checks.
func NewRouter(logger *slog.Logger, runner *pipeline.Runner, store history.Store, provider *dbconn.Provider) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(apimw.Logger(logger))
	r.Use(apimw.CORS)
	r.Use(chimw.Recoverer)

	health := apihandler.NewHealthHandler(provider)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	r.Route("/api/v1", func(r chi.Router) {
		ask := apihandler.NewAskHandler(logger, runner)
		r.Post("/ask", ask.Ask)

		sessions := apihandler.NewSessionHandler(logger, store)
		r.Get("/sessions/{sessionID}/history", sessions.History)
	})

	return r
}
