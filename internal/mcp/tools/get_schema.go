package tools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/querybuddy/querybuddy/internal/pipeline"
)

// GetSchemaParams are the parameters for the get_schema tool. It takes none;
// the server is bound to one database.
type GetSchemaParams struct{}

// GetSchemaHandler returns the connected database's schema description.
type GetSchemaHandler struct {
	provider pipeline.SchemaProvider
	logger   *slog.Logger
}

// NewGetSchemaHandler creates a new GetSchemaHandler.
func NewGetSchemaHandler(provider pipeline.SchemaProvider, logger *slog.Logger) *GetSchemaHandler {
	return &GetSchemaHandler{provider: provider, logger: logger}
}

// Handle snapshots the schema.
func (h *GetSchemaHandler) Handle(ctx context.Context, _ GetSchemaParams) (string, error) {
	if !h.provider.IsConnected(ctx) {
		return "", fmt.Errorf("no database connection established")
	}
	schema, err := h.provider.SchemaText(ctx)
	if err != nil {
		return "", fmt.Errorf("get schema: %w", err)
	}
	return schema, nil
}
