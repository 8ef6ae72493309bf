package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/vicentejluz/taskmanager/internal/api/shared"
	"github.com/vicentejluz/taskmanager/internal/domain"
	"github.com/vicentejluz/taskmanager/internal/service"
	"github.com/vicentejluz/taskmanager/internal/service/auth"
	"github.com/vicentejluz/taskmanager/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized

	// Lockout
	case errors.Is(err, service.ErrAccountLocked):
		return http.StatusLocked

	// Authorization errors
	case errors.Is(err, service.ErrAccountNotActive),
		errors.Is(err, service.ErrOperationNotAllowed):
		return http.StatusForbidden

	// Not found errors
	case store.IsNotFoundError(err):
		return http.StatusNotFound

	// Conflict errors
	case store.IsDuplicateError(err),
		errors.Is(err, store.ErrVersionConflict),
		errors.Is(err, domain.ErrInvalidStateTransition):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, service.ErrTokenInvalid),
		errors.Is(err, service.ErrInvalidOldPassword),
		errors.Is(err, service.ErrSamePassword):
		return http.StatusBadRequest

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
	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid credentials"

	case errors.Is(err, service.ErrAccountLocked):
		var locked *service.AccountLockedError
		if errors.As(err, &locked) {
			return "Account is temporarily locked until " + locked.LockUntil.UTC().Format(time.RFC3339)
		}
		return "Account is temporarily locked"

	case errors.Is(err, service.ErrAccountNotActive):
		return "Account is not active"

	case errors.Is(err, service.ErrOperationNotAllowed):
		return "Operation not allowed"

	case errors.Is(err, service.ErrTokenInvalid):
		return "Verification token is invalid or expired"

	case errors.Is(err, service.ErrInvalidOldPassword):
		return "Old password does not match"

	case errors.Is(err, service.ErrSamePassword):
		return "New password must differ from the old one"

	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, store.ErrVersionConflict):
		return "The resource was modified concurrently, retry with fresh data"

	case errors.Is(err, domain.ErrInvalidStateTransition):
		return "The task's current status does not allow this operation"

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data: " + err.Error()

	default:
		return "An unexpected error occurred"
	}
}

// HandleServiceError writes the error response for a service-layer failure
// using the standard status and message mapping.
func HandleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err))
}
