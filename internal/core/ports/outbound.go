package ports

import (
	"context"

	"github.com/kirillkom/query-router/internal/core/domain"
)

// DocumentCatalog lists the documents a user may reference in chat.
type DocumentCatalog interface {
	ListCatalog(ctx context.Context, userID string, status domain.DocumentStatus) ([]domain.Document, error)
}

// RouteEventPublisher announces routing decisions to downstream consumers.
type RouteEventPublisher interface {
	PublishRouteDecision(ctx context.Context, decision domain.RouteDecision) error
}

// RouteObserver records routing observations (metrics).
type RouteObserver interface {
	ObserveRoute(decision domain.RouteDecision)
}
