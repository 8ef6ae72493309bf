package mocks

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vicentejluz/taskmanager/internal/domain"
	"github.com/vicentejluz/taskmanager/internal/store"
)

// MockTokenStore implements store.TokenStore for testing
type MockTokenStore struct {
	// Function fields for customizable behavior
	CreateFn func(ctx context.Context, token *domain.VerificationToken) error
	SaveFn   func(ctx context.Context, token *domain.VerificationToken) error

	mu     sync.Mutex
	tokens map[uuid.UUID]*domain.VerificationToken
}

// Ensure MockTokenStore implements store.TokenStore
var _ store.TokenStore = (*MockTokenStore)(nil)

// NewMockTokenStore creates a new mock store with initialized defaults
func NewMockTokenStore() *MockTokenStore {
	return &MockTokenStore{
		tokens: make(map[uuid.UUID]*domain.VerificationToken),
	}
}

// Seed inserts a token directly, bypassing the uniqueness check.
func (m *MockTokenStore) Seed(token *domain.VerificationToken) *domain.VerificationToken {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *token
	m.tokens[token.ID] = &c
	return token
}

// Count returns the number of stored tokens.
func (m *MockTokenStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tokens)
}

// Create implements the TokenStore interface
func (m *MockTokenStore) Create(ctx context.Context, token *domain.VerificationToken) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, token)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.tokens {
		if t.UserID == token.UserID && t.Type == token.Type && !t.Revoked {
			return store.ErrActiveTokenExists
		}
	}

	token.Version = 0
	token.CreatedAt = time.Now().UTC()
	c := *token
	m.tokens[token.ID] = &c
	return nil
}

// GetByToken implements the TokenStore interface
func (m *MockTokenStore) GetByToken(ctx context.Context, tokenValue string) (*domain.VerificationToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.tokens {
		if t.Token == tokenValue {
			c := *t
			return &c, nil
		}
	}
	return nil, store.ErrTokenNotFound
}

// FindActiveByUserAndType implements the TokenStore interface
func (m *MockTokenStore) FindActiveByUserAndType(ctx context.Context, userID uuid.UUID, tokenType domain.TokenType) (*domain.VerificationToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.tokens {
		if t.UserID == userID && t.Type == tokenType && !t.Revoked {
			c := *t
			return &c, nil
		}
	}
	return nil, store.ErrTokenNotFound
}

// Save implements the TokenStore interface
func (m *MockTokenStore) Save(ctx context.Context, token *domain.VerificationToken) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, token)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.tokens[token.ID]
	if !ok {
		return store.ErrTokenNotFound
	}
	if stored.Version != token.Version {
		return store.ErrVersionConflict
	}

	token.Version++
	c := *token
	m.tokens[token.ID] = &c
	return nil
}

// WithTx implements the TokenStore interface. The mock has no transactions;
// it returns itself.
func (m *MockTokenStore) WithTx(tx *sql.Tx) store.TokenStore {
	return m
}
