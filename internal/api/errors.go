package api

import (
	"errors"
	"net/http"

	"github.com/goethe-exam/exam-api/internal/domain"
	"github.com/goethe-exam/exam-api/internal/generation"
	"github.com/goethe-exam/exam-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Validation errors
	case errors.Is(err, domain.ErrInvalidLevel),
		errors.Is(err, domain.ErrLevelRequired),
		errors.Is(err, domain.ErrInvalidCategory),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrEmptyContent),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Not found: unknown queue ID and not-yet-ready results are deliberately
	// the same status; an update matching no row means the ID is unknown.
	case store.IsNotFoundError(err),
		errors.Is(err, store.ErrUpdateFailed):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	// Provider failures that surface synchronously
	case errors.Is(err, generation.ErrGenerationFailed),
		errors.Is(err, generation.ErrTimeout),
		errors.Is(err, generation.ErrInvalidResponse),
		errors.Is(err, generation.ErrContentBlocked):
		return http.StatusInternalServerError

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, domain.ErrInvalidLevel),
		errors.Is(err, domain.ErrLevelRequired):
		return "Invalid level. Must be one of: A1, A2, B1, B2, C1, C2"

	case errors.Is(err, domain.ErrInvalidCategory):
		return "Invalid category"

	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid queue_id"

	case errors.Is(err, domain.ErrEmptyContent),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	case store.IsNotFoundError(err),
		errors.Is(err, store.ErrUpdateFailed):
		return "Queue ID not found"

	case errors.Is(err, store.ErrDuplicate):
		return "Queue ID already exists"

	default:
		return "Failed to process request"
	}
}
