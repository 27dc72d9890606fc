package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/valkey-io/valkey-go"

	// Database drivers, selected at runtime by DB_DIALECT.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/querybuddy/querybuddy/internal/api"
	"github.com/querybuddy/querybuddy/internal/config"
	"github.com/querybuddy/querybuddy/internal/dbconn"
	"github.com/querybuddy/querybuddy/internal/history"
	"github.com/querybuddy/querybuddy/internal/llm"
	"github.com/querybuddy/querybuddy/internal/pipeline"
	"github.com/querybuddy/querybuddy/internal/prompt"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	params, err := cfg.Database.ConnParams()
	if err != nil {
		logger.Error("invalid database config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	provider, err := dbconn.Open(params)
	if err != nil {
		logger.Error("failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer provider.Close()
	logger.Info("database configured",
		slog.String("dialect", string(params.Dialect)),
		slog.String("name", params.Name))

	llmClient := llm.NewClient(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.BaseURL)

	// Conversation history: Valkey when configured, in-memory otherwise.
	var store history.Store = history.NewMemoryStore()
	if cfg.History.Backend == "valkey" {
		vkClient, err := valkey.NewClient(valkey.ClientOption{
			InitAddress: []string{cfg.Valkey.Addr},
			Password:    cfg.Valkey.Password,
		})
		if err != nil {
			logger.Warn("valkey unavailable, using in-memory history", slog.String("error", err.Error()))
		} else {
			defer vkClient.Close()
			store = history.NewValkeyStore(vkClient)
			logger.Info("connected to valkey")
		}
	}

	runner := pipeline.NewRunner(provider, llmClient, prompt.NewCatalog(), store, params.Dialect, logger)

	router := api.NewRouter(logger, runner, store, provider)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting API server", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}
