package mcpadapter

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/query-router/internal/core/ports"
)

const Version = "0.1.0"

func serverInstructions() string {
	return "Use classify_query before answering a user message to decide whether to search " +
		"their documents, search the web, proxy a slash command or use conversation memory. " +
		"Use match_documents to restrict a document search to the files the user named."
}

// NewServer registers the routing tools. router may be nil, in which case
// route_query is not offered.
func NewServer(name string, classifier ports.QueryClassifier, router ports.QueryRouter) *server.MCPServer {
	s := server.NewMCPServer(
		name,
		Version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	classifyTool := NewClassifyTool(classifier)
	s.AddTool(classifyTool.Definition(), classifyTool.Handle)

	matchTool := NewMatchTool(classifier)
	s.AddTool(matchTool.Definition(), matchTool.Handle)

	if router != nil {
		routeTool := NewRouteTool(router)
		s.AddTool(routeTool.Definition(), routeTool.Handle)
	}
	return s
}
