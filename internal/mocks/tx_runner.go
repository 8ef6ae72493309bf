package mocks

import (
	"context"

	"github.com/vicentejluz/taskmanager/internal/store"
)

// MockTxRunner implements store.TxRunner without a real database: the
// function runs with a nil transaction, which the store mocks ignore.
type MockTxRunner struct {
	// RunFn overrides the default behavior when set.
	RunFn func(ctx context.Context, fn store.TxFn) error
}

// Ensure MockTxRunner implements store.TxRunner
var _ store.TxRunner = (*MockTxRunner)(nil)

// NewMockTxRunner creates a new MockTxRunner.
func NewMockTxRunner() *MockTxRunner {
	return &MockTxRunner{}
}

// RunInTransaction implements the TxRunner interface
func (m *MockTxRunner) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	if m.RunFn != nil {
		return m.RunFn(ctx, fn)
	}
	return fn(ctx, nil)
}
