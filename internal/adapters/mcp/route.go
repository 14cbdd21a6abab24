package mcpadapter

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kirillkom/query-router/internal/core/domain"
	"github.com/kirillkom/query-router/internal/core/ports"
)

// RouteTool handles the route_query MCP tool. Without inline documents it
// loads the user's completed catalog from storage.
type RouteTool struct {
	router ports.QueryRouter
}

func NewRouteTool(router ports.QueryRouter) *RouteTool {
	return &RouteTool{router: router}
}

func (t *RouteTool) Definition() mcp.Tool {
	return mcp.NewTool("route_query",
		mcp.WithDescription(
			"Route a user query end to end: load the user's completed documents, classify the "+
				"query and return the routing decision with the matched document ids.",
		),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("The raw user query"),
		),
		mcp.WithString("user_id",
			mcp.Description("Owner of the document catalog. Required unless documents are given"),
		),
		mcp.WithArray("documents",
			mcp.Description("Inline catalog; skips the storage lookup when present"),
			documentsSchema(),
		),
	)
}

func (t *RouteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docs, present, err := documentsArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	routeReq := domain.RouteRequest{
		UserID: req.GetString("user_id", ""),
		Query:  req.GetString("query", ""),
	}
	if present {
		routeReq.Documents = docs
	}

	decision, err := t.router.Route(ctx, routeReq)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("route failed (%s): %v", domain.KindLabel(err), err)), nil
	}
	return jsonResult(decision)
}
