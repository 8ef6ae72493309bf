package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vicentejluz/taskmanager/internal/config"
	"github.com/vicentejluz/taskmanager/internal/domain"
	"github.com/vicentejluz/taskmanager/internal/store"
)

// TokenService manages the verification token lifecycle: issuing tokens,
// reusing still-active ones, and consuming them exactly once.
type TokenService struct {
	tokenStore store.TokenStore
	ttls       map[domain.TokenType]time.Duration
	logger     *slog.Logger
}

// NewTokenService creates a TokenService with per-type expiries taken from
// configuration.
func NewTokenService(tokenStore store.TokenStore, cfg config.TokenConfig, logger *slog.Logger) *TokenService {
	return &TokenService{
		tokenStore: tokenStore,
		ttls: map[domain.TokenType]time.Duration{
			domain.TokenTypeEmailVerification: time.Duration(cfg.EmailVerificationExpiryMinutes) * time.Minute,
			domain.TokenTypePasswordReset:     time.Duration(cfg.PasswordResetExpiryMinutes) * time.Minute,
		},
		logger: logger.With("component", "token_service"),
	}
}

// WithStore returns a copy of the service bound to the given store, typically
// a transaction-scoped one obtained via TokenStore.WithTx.
func (s *TokenService) WithStore(tokenStore store.TokenStore) *TokenService {
	return &TokenService{
		tokenStore: tokenStore,
		ttls:       s.ttls,
		logger:     s.logger,
	}
}

// GetOrCreateActive returns the user's active token of the given type,
// creating one if necessary. A lingering unrevoked token that is no longer
// consumable (expired or used) is revoked first so the unique slot frees up.
// When a concurrent request wins the insert race, the winner's token is
// fetched and returned so both callers end up holding the same token.
func (s *TokenService) GetOrCreateActive(ctx context.Context, userID uuid.UUID, tokenType domain.TokenType) (*domain.VerificationToken, error) {
	existing, err := s.tokenStore.FindActiveByUserAndType(ctx, userID, tokenType)
	if err != nil && !errors.Is(err, store.ErrTokenNotFound) {
		return nil, fmt.Errorf("failed to look up active token: %w", err)
	}

	if existing != nil {
		if existing.IsActive() {
			s.logger.Debug("reusing active verification token",
				"user_id", userID,
				"token_type", tokenType)
			return existing, nil
		}

		// Unrevoked but no longer consumable; revoke to free the slot.
		existing.Revoked = true
		if err := s.tokenStore.Save(ctx, existing); err != nil {
			if errors.Is(err, store.ErrVersionConflict) || errors.Is(err, store.ErrTokenNotFound) {
				// A concurrent caller revoked or replaced it; fall through
				// to the insert and resolve any remaining race there.
				s.logger.Debug("stale token already revoked concurrently",
					"user_id", userID,
					"token_type", tokenType)
			} else {
				return nil, fmt.Errorf("failed to revoke stale token: %w", err)
			}
		}
	}

	token, err := domain.NewVerificationToken(userID, tokenType, s.ttls[tokenType])
	if err != nil {
		return nil, fmt.Errorf("failed to build verification token: %w", err)
	}

	if err := s.tokenStore.Create(ctx, token); err != nil {
		if errors.Is(err, store.ErrActiveTokenExists) {
			winner, findErr := s.tokenStore.FindActiveByUserAndType(ctx, userID, tokenType)
			if findErr != nil {
				return nil, fmt.Errorf("failed to fetch winning token after insert race: %w", findErr)
			}
			s.logger.Debug("lost token insert race, using winner",
				"user_id", userID,
				"token_type", tokenType)
			return winner, nil
		}
		return nil, fmt.Errorf("failed to create verification token: %w", err)
	}

	s.logger.Info("verification token issued",
		"user_id", userID,
		"token_type", tokenType,
		"expires_at", token.ExpiresAt)

	return token, nil
}

// ValidateForConsumption resolves a token string of the expected type and
// verifies it can still be consumed. All failure modes collapse into
// ErrTokenInvalid so callers cannot distinguish unknown from expired tokens.
func (s *TokenService) ValidateForConsumption(ctx context.Context, tokenValue string, tokenType domain.TokenType) (*domain.VerificationToken, error) {
	token, err := s.tokenStore.GetByToken(ctx, tokenValue)
	if err != nil {
		if errors.Is(err, store.ErrTokenNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, fmt.Errorf("failed to look up token: %w", err)
	}

	if token.Type != tokenType || !token.IsActive() {
		return nil, ErrTokenInvalid
	}

	return token, nil
}

// Consume marks the token used and revoked in one persisted write. A version
// conflict means a concurrent consumer got there first, which surfaces as
// ErrTokenInvalid: one winner, everyone else rejected.
func (s *TokenService) Consume(ctx context.Context, token *domain.VerificationToken) error {
	token.MarkConsumed()
	if err := s.tokenStore.Save(ctx, token); err != nil {
		if errors.Is(err, store.ErrVersionConflict) || errors.Is(err, store.ErrTokenNotFound) {
			return ErrTokenInvalid
		}
		return fmt.Errorf("failed to consume token: %w", err)
	}

	s.logger.Info("verification token consumed",
		"user_id", token.UserID,
		"token_type", token.Type)

	return nil
}
