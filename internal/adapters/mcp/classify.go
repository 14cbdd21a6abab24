package mcpadapter

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kirillkom/query-router/internal/core/ports"
)

// ClassifyTool handles the classify_query MCP tool.
type ClassifyTool struct {
	classifier ports.QueryClassifier
}

func NewClassifyTool(classifier ports.QueryClassifier) *ClassifyTool {
	return &ClassifyTool{classifier: classifier}
}

func (t *ClassifyTool) Definition() mcp.Tool {
	return mcp.NewTool("classify_query",
		mcp.WithDescription(
			"Classify a user query into an intent (document, web, command, memory, hybrid) "+
				"and suggest which tool should answer it. Pass the user's completed documents "+
				"so filename references can be resolved.",
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The raw user query"),
		),
		mcp.WithArray("documents",
			mcp.Description("Catalog of the user's documents, in upload order"),
			documentsSchema(),
		),
	)
}

func (t *ClassifyTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	if strings.TrimSpace(query) == "" {
		return mcp.NewToolResultError("'query' is required"), nil
	}
	docs, _, err := documentsArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(t.classifier.Classify(query, docs))
}
