package mocks

import (
	"sync"

	"github.com/vicentejluz/taskmanager/internal/platform/mailer"
)

// SentEmail records one email dispatched through the MockMailer.
type SentEmail struct {
	Kind  string // "verification", "password_reset", "reset_success"
	To    string
	Name  string
	Token string
	IP    string
}

// MockMailer implements mailer.Mailer and records every send.
type MockMailer struct {
	// SendErr, when set, is returned by every send.
	SendErr error

	mu   sync.Mutex
	sent []SentEmail
}

// Ensure MockMailer implements mailer.Mailer
var _ mailer.Mailer = (*MockMailer)(nil)

// NewMockMailer creates a new MockMailer.
func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

// Reset discards all recorded emails.
func (m *MockMailer) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = nil
}

// Sent returns a copy of all recorded emails.
func (m *MockMailer) Sent() []SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentEmail(nil), m.sent...)
}

// SendVerificationEmail implements the Mailer interface
func (m *MockMailer) SendVerificationEmail(to, name, token string) error {
	return m.record(SentEmail{Kind: "verification", To: to, Name: name, Token: token})
}

// SendPasswordResetEmail implements the Mailer interface
func (m *MockMailer) SendPasswordResetEmail(to, name, token string) error {
	return m.record(SentEmail{Kind: "password_reset", To: to, Name: name, Token: token})
}

// SendPasswordResetSuccessEmail implements the Mailer interface
func (m *MockMailer) SendPasswordResetSuccessEmail(to, name, ip string) error {
	return m.record(SentEmail{Kind: "reset_success", To: to, Name: name, IP: ip})
}

func (m *MockMailer) record(e SentEmail) error {
	if m.SendErr != nil {
		return m.SendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, e)
	return nil
}
