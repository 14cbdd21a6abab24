package mcpadapter

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kirillkom/query-router/internal/core/domain"
	"github.com/kirillkom/query-router/internal/core/ports"
)

// MatchTool handles the match_documents MCP tool.
type MatchTool struct {
	classifier ports.QueryClassifier
}

func NewMatchTool(classifier ports.QueryClassifier) *MatchTool {
	return &MatchTool{classifier: classifier}
}

func (t *MatchTool) Definition() mcp.Tool {
	return mcp.NewTool("match_documents",
		mcp.WithDescription(
			"Return the ids of every catalog document a query refers to by name, plus the "+
				"first document that matches. Use this to scope a document search.",
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The raw user query"),
		),
		mcp.WithArray("documents",
			mcp.Required(),
			mcp.Description("Catalog of the user's documents, in upload order"),
			documentsSchema(),
		),
	)
}

type matchResult struct {
	DocumentIDs []string              `json:"document_ids"`
	BestMatch   *domain.DocumentMatch `json:"best_match,omitempty"`
}

func (t *MatchTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := req.GetString("query", "")
	if strings.TrimSpace(query) == "" {
		return mcp.NewToolResultError("'query' is required"), nil
	}
	docs, present, err := documentsArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !present {
		return mcp.NewToolResultError("'documents' is required"), nil
	}

	out := matchResult{DocumentIDs: t.classifier.MatchingDocumentIDs(query, docs)}
	if best, ok := t.classifier.BestDocumentMatch(query, docs); ok {
		out.BestMatch = &best
	}
	return jsonResult(out)
}
