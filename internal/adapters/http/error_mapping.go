package httpadapter

import (
	"context"
	"errors"
	"net/http"

	"github.com/kirillkom/query-router/internal/core/domain"
)

// mapErrorToHTTPStatus maps routing failures to statuses. Domain kinds win
// over transport causes, so a catalog timeout already marked temporary is 503.
func mapErrorToHTTPStatus(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case domain.IsKind(err, domain.ErrDocumentNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
