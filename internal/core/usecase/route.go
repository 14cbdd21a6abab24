package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/kirillkom/query-router/internal/core/domain"
	"github.com/kirillkom/query-router/internal/core/ports"
)

type RouteQueryUseCase struct {
	classifier ports.QueryClassifier
	catalog    ports.DocumentCatalog
	publisher  ports.RouteEventPublisher
	observer   ports.RouteObserver
}

// NewRouteQueryUseCase wires the router. publisher and observer are optional.
func NewRouteQueryUseCase(
	classifier ports.QueryClassifier,
	catalog ports.DocumentCatalog,
	publisher ports.RouteEventPublisher,
	observer ports.RouteObserver,
) *RouteQueryUseCase {
	return &RouteQueryUseCase{
		classifier: classifier,
		catalog:    catalog,
		publisher:  publisher,
		observer:   observer,
	}
}

func (uc *RouteQueryUseCase) Route(ctx context.Context, req domain.RouteRequest) (*domain.RouteDecision, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "route query", fmt.Errorf("query is required"))
	}
	userID := strings.TrimSpace(req.UserID)

	documents := req.Documents
	if documents == nil {
		if userID == "" {
			return nil, domain.WrapError(domain.ErrInvalidInput, "route query", fmt.Errorf("user_id is required when documents are not supplied"))
		}
		if uc.catalog == nil {
			return nil, fmt.Errorf("route query: document catalog is not configured")
		}
		loaded, err := uc.catalog.ListCatalog(ctx, userID, domain.StatusCompleted)
		if err != nil {
			return nil, fmt.Errorf("load document catalog: %w", err)
		}
		documents = loaded
	}

	// The raw query is classified, not the trimmed copy; the classifier trims itself.
	classification := uc.classifier.Classify(req.Query, documents)
	matchedIDs := uc.classifier.MatchingDocumentIDs(req.Query, documents)

	decision := domain.RouteDecision{
		ID:                 uuid.NewString(),
		UserID:             userID,
		Query:              req.Query,
		Classification:     classification,
		MatchedDocumentIDs: matchedIDs,
		CatalogSize:        len(documents),
	}
	if best, ok := uc.classifier.BestDocumentMatch(req.Query, documents); ok {
		decision.BestMatch = &best
		if len(matchedIDs) == 0 && searchesDocuments(classification.Intent) {
			decision.MatchedDocumentIDs = []string{best.DocumentID}
		}
	}

	if uc.publisher != nil {
		if err := uc.publisher.PublishRouteDecision(ctx, decision); err != nil {
			slog.Warn("route_decision_publish_failed",
				"decision_id", decision.ID,
				"user_id", userID,
				"error", err,
			)
		}
	}
	if uc.observer != nil {
		uc.observer.ObserveRoute(decision)
	}

	slog.Debug("query_routed",
		"decision_id", decision.ID,
		"user_id", userID,
		"intent", classification.Intent,
		"tool", classification.SuggestedTool,
		"confidence", classification.Confidence,
		"document_name", classification.Context.DocumentName,
		"matched_documents", len(decision.MatchedDocumentIDs),
		"catalog_size", decision.CatalogSize,
	)
	return &decision, nil
}

func searchesDocuments(intent domain.QueryIntent) bool {
	return intent == domain.IntentDocument || intent == domain.IntentHybrid
}
