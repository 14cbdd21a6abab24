package domain

type QueryIntent string

const (
	IntentDocument QueryIntent = "document"
	IntentWeb      QueryIntent = "web"
	IntentCommand  QueryIntent = "command"
	IntentMemory   QueryIntent = "memory"
	IntentHybrid   QueryIntent = "hybrid"
	IntentUnknown  QueryIntent = "unknown"
)

type RouteTool string

const (
	ToolSearchDocuments RouteTool = "search_documents"
	ToolWebSearch       RouteTool = "web_search"
	ToolMCPProxy        RouteTool = "mcp_proxy"
	ToolStoreMemory     RouteTool = "store_memory"
	ToolQueryMemory     RouteTool = "query_memory"
)

// ClassificationContext carries the query signals that produced a classification.
type ClassificationContext struct {
	MentionsDocument bool     `json:"mentions_document"`
	MentionsFile     bool     `json:"mentions_file"`
	MentionsUpload   bool     `json:"mentions_upload"`
	DocumentName     string   `json:"document_name,omitempty"`
	IsQuestion       bool     `json:"is_question"`
	Keywords         []string `json:"keywords"`
}

// QueryClassification is the routing verdict for a single query.
// Confidence is an additive score, not a probability, and is not clamped.
type QueryClassification struct {
	Intent        QueryIntent           `json:"intent"`
	Confidence    float64               `json:"confidence"`
	SuggestedTool RouteTool             `json:"suggested_tool"`
	Context       ClassificationContext `json:"context"`
}

type DocumentMatch struct {
	DocumentID string  `json:"document_id"`
	Filename   string  `json:"filename"`
	Score      float64 `json:"score"`
}

type RouteRequest struct {
	UserID    string     `json:"user_id"`
	Query     string     `json:"query"`
	Documents []Document `json:"documents,omitempty"`
}

type RouteDecision struct {
	ID                 string              `json:"id"`
	UserID             string              `json:"user_id,omitempty"`
	Query              string              `json:"query"`
	Classification     QueryClassification `json:"classification"`
	BestMatch          *DocumentMatch      `json:"best_match,omitempty"`
	MatchedDocumentIDs []string            `json:"matched_document_ids"`
	CatalogSize        int                 `json:"catalog_size"`
}
