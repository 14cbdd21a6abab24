package ports

import (
	"context"

	"github.com/kirillkom/query-router/internal/core/domain"
)

// QueryClassifier is the pure, in-process classification contract.
type QueryClassifier interface {
	Classify(query string, documents []domain.Document) domain.QueryClassification
	MatchingDocumentIDs(query string, documents []domain.Document) []string
	BestDocumentMatch(query string, documents []domain.Document) (domain.DocumentMatch, bool)
}

// QueryRouter is the inbound contract used by chat orchestrators: it loads the
// caller's catalog and returns the routing decision.
type QueryRouter interface {
	Route(ctx context.Context, req domain.RouteRequest) (*domain.RouteDecision, error)
}

// DocumentReader is the inbound read model for document metadata.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}
