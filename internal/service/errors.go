// Package service provides application-level services for managing users,
// tasks and verification tokens.
package service

import (
	"errors"
	"fmt"
	"time"
)

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for
// with errors.Is(). The API layer maps them to HTTP status codes.
var (
	// ErrInvalidCredentials indicates the email/password pair did not match.
	// Deliberately covers unknown emails and soft-deleted accounts so the
	// login surface does not reveal which accounts exist.
	// API layer should map this to HTTP 401 Unauthorized.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAccountLocked indicates the account is temporarily locked after too
	// many failed login attempts. Use errors.As with *AccountLockedError to
	// recover the expiry. API layer should map this to HTTP 423 Locked.
	ErrAccountLocked = errors.New("account is temporarily locked")

	// ErrAccountNotActive indicates the account exists but may not
	// authenticate: either still pending email verification or disabled by
	// an administrator. API layer should map this to HTTP 403 Forbidden.
	ErrAccountNotActive = errors.New("account is not active")

	// ErrTokenInvalid indicates a verification token is unknown, expired,
	// already used, revoked, or presented to the wrong flow. The reasons are
	// deliberately collapsed into one error.
	// API layer should map this to HTTP 400 Bad Request.
	ErrTokenInvalid = errors.New("verification token is invalid or expired")

	// ErrInvalidOldPassword indicates the current password supplied to a
	// password change did not match.
	// API layer should map this to HTTP 400 Bad Request.
	ErrInvalidOldPassword = errors.New("old password does not match")

	// ErrSamePassword indicates the new password equals the current one.
	// API layer should map this to HTTP 400 Bad Request.
	ErrSamePassword = errors.New("new password must differ from the old one")

	// ErrOperationNotAllowed indicates an operation that exists but is
	// forbidden for the target, such as disabling or deleting an admin
	// account. API layer should map this to HTTP 403 Forbidden.
	ErrOperationNotAllowed = errors.New("operation not allowed for this account")
)

// AccountLockedError carries the lock expiry alongside ErrAccountLocked so
// callers can tell the user when to retry.
type AccountLockedError struct {
	LockUntil time.Time
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("account is temporarily locked until %s", e.LockUntil.UTC().Format(time.RFC3339))
}

// Is makes errors.Is(err, ErrAccountLocked) succeed for this type.
func (e *AccountLockedError) Is(target error) bool {
	return target == ErrAccountLocked
}
