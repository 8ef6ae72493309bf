package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vicentejluz/taskmanager/internal/domain"
	"github.com/vicentejluz/taskmanager/internal/service"
	"github.com/vicentejluz/taskmanager/internal/service/auth"
	"github.com/vicentejluz/taskmanager/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"expired access token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"missing access token", auth.ErrMissingToken, http.StatusUnauthorized},
		{"locked account", &service.AccountLockedError{LockUntil: time.Now()}, http.StatusLocked},
		{"inactive account", service.ErrAccountNotActive, http.StatusForbidden},
		{"forbidden operation", service.ErrOperationNotAllowed, http.StatusForbidden},
		{"unknown user", store.ErrUserNotFound, http.StatusNotFound},
		{"unknown task", store.ErrTaskNotFound, http.StatusNotFound},
		{"duplicate email", store.ErrEmailExists, http.StatusConflict},
		{"version conflict", store.ErrVersionConflict, http.StatusConflict},
		{"bad transition", domain.ErrInvalidStateTransition, http.StatusConflict},
		{"validation failure", fmt.Errorf("%w: due date cannot be in the past", domain.ErrValidation), http.StatusBadRequest},
		{"spent verification token", service.ErrTokenInvalid, http.StatusBadRequest},
		{"old password mismatch", service.ErrInvalidOldPassword, http.StatusBadRequest},
		{"password reuse", service.ErrSamePassword, http.StatusBadRequest},
		{"unexpected failure", errors.New("pq: connection refused"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	t.Run("locked account message carries the expiry", func(t *testing.T) {
		t.Parallel()
		until := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
		msg := GetSafeErrorMessage(&service.AccountLockedError{LockUntil: until})
		assert.Contains(t, msg, "2026-09-01T12:00:00Z")
	})

	t.Run("internal details never leak", func(t *testing.T) {
		t.Parallel()
		msg := GetSafeErrorMessage(errors.New("dial tcp 10.0.0.5:5432: connection refused"))
		assert.Equal(t, "An unexpected error occurred", msg)
	})

	t.Run("wrapped errors map like their sentinels", func(t *testing.T) {
		t.Parallel()
		err := fmt.Errorf("saving task: %w", store.ErrVersionConflict)
		assert.Equal(t, http.StatusConflict, MapErrorToStatusCode(err))
		assert.Contains(t, GetSafeErrorMessage(err), "modified concurrently")
	})
}
