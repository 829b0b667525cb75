// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

import "errors"

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Erreur de validation", Fields: fields}
}

// Sentinel errors shared by the service layer. Handlers map them to HTTP
// statuses with errors.Is, so services can wrap them with context via
// fmt.Errorf("...: %w", ...).
var (
	// ErrNotFound: the referenced resource does not exist (404).
	ErrNotFound = errors.New("ressource introuvable")

	// ErrInvalidState: a state-machine transition was requested from the
	// wrong state (409). Always raised before any mutation.
	ErrInvalidState = errors.New("transition d'état invalide")

	// ErrValidation: semantically invalid input that survived DTO binding,
	// like bad rule params or an out-of-range percentage (422).
	ErrValidation = errors.New("données invalides")

	// ErrForbidden: authenticated but not allowed (403).
	ErrForbidden = errors.New("permissions insuffisantes")
)
