package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrTemporary        = errors.New("temporary failure")
)

// WrapError keeps the semantic kind reachable through errors.Is while adding
// the failing operation to the message.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// KindLabel returns a stable snake_case label for logs and metrics.
func KindLabel(err error) string {
	switch {
	case err == nil:
		return "none"
	case IsKind(err, ErrInvalidInput):
		return "invalid_input"
	case IsKind(err, ErrUnauthorized):
		return "unauthorized"
	case IsKind(err, ErrDocumentNotFound):
		return "not_found"
	case IsKind(err, ErrTemporary):
		return "temporary"
	default:
		return "internal"
	}
}
