package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/valkey-io/valkey-go"

	// Database drivers, selected at runtime by DB_DIALECT.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/querybuddy/querybuddy/internal/config"
	"github.com/querybuddy/querybuddy/internal/dbconn"
	"github.com/querybuddy/querybuddy/internal/history"
	"github.com/querybuddy/querybuddy/internal/llm"
	"github.com/querybuddy/querybuddy/internal/mcp/tools"
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	askDatabase := tools.NewAskDatabaseHandler(runner, logger)
	getSchema := tools.NewGetSchemaHandler(provider, logger)

	sdkServer := sdkmcp.NewServer(&sdkmcp.Implementation{Name: "querybuddy", Version: "1.0.0"}, nil)

	sdkmcp.AddTool(sdkServer, &sdkmcp.Tool{
		Name:        "ask_database",
		Description: "Ask a natural language question about the connected database. Generates a read-only SQL query, runs it, and returns the formatted answer with an explanation. Pass session_id to continue a conversation.",
	}, tools.WrapHandler[tools.AskDatabaseParams](askDatabase))

	sdkmcp.AddTool(sdkServer, &sdkmcp.Tool{
		Name:        "get_schema",
		Description: "Return the connected database's schema as text: each table with its columns and types.",
	}, tools.WrapHandler[tools.GetSchemaParams](getSchema))

	// Stateless so stale session IDs from server restarts are ignored rather
	// than returning 404. Conversation state lives in the history store keyed
	// by the session_id tool param.
	sdkHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return sdkServer },
		&sdkmcp.StreamableHTTPOptions{Stateless: true},
	)

	mux := http.NewServeMux()
	mux.Handle("/mcp", sdkHandler)
	mux.Handle("/", sdkHandler)

	httpServer := &http.Server{Addr: cfg.MCP.Addr, Handler: mux}

	go func() {
		logger.Info("MCP server listening", slog.String("addr", cfg.MCP.Addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("MCP HTTP server error", slog.String("error", err.Error()))
		}
	}()

	<-ctx.Done()
	logger.Info("MCP server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("MCP HTTP shutdown", slog.String("error", err.Error()))
	}
	logger.Info("MCP server stopped")
}
