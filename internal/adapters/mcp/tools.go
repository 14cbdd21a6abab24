// Package mcpadapter exposes query routing as MCP tools.
//
// Each tool is a struct with its dependencies injected via constructor,
// a Definition() returning the mcp.Tool schema and a Handle() method.
// Results are JSON text so agents can parse them directly.
package mcpadapter

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kirillkom/query-router/internal/core/domain"
)

func documentsSchema() mcp.PropertyOption {
	return mcp.Items(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":       map[string]any{"type": "string"},
			"filename": map[string]any{"type": "string"},
			"status":   map[string]any{"type": "string"},
		},
		"required": []string{"id", "filename"},
	})
}

// documentsArg decodes the optional documents argument. present is false when
// the caller omitted it, which differs from an explicit empty list.
func documentsArg(req mcp.CallToolRequest) (docs []domain.Document, present bool, err error) {
	raw, ok := req.GetArguments()["documents"]
	if !ok || raw == nil {
		return nil, false, nil
	}
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, true, fmt.Errorf("encode documents: %w", err)
	}
	docs = make([]domain.Document, 0)
	if err := json.Unmarshal(encoded, &docs); err != nil {
		return nil, true, fmt.Errorf("'documents' must be an array of {id, filename} objects: %w", err)
	}
	return docs, true, nil
}

func jsonResult(payload any) (*mcp.CallToolResult, error) {
	encoded, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(encoded)), nil
}
