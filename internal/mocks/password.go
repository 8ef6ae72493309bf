package mocks

import (
	"errors"
	"strings"

	"github.com/vicentejluz/taskmanager/internal/service/auth"
)

// PlainPasswordHasher is a test double that "hashes" by prefixing, keeping
// tests fast and hashes inspectable.
type PlainPasswordHasher struct{}

// Ensure PlainPasswordHasher implements auth.PasswordHasher
var _ auth.PasswordHasher = (*PlainPasswordHasher)(nil)

// Hash implements the PasswordHasher interface
func (PlainPasswordHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

// PlainPasswordVerifier is the matching verifier for PlainPasswordHasher.
type PlainPasswordVerifier struct{}

// Ensure PlainPasswordVerifier implements auth.PasswordVerifier
var _ auth.PasswordVerifier = (*PlainPasswordVerifier)(nil)

// Compare implements the PasswordVerifier interface
func (PlainPasswordVerifier) Compare(hashedPassword, password string) error {
	if strings.TrimPrefix(hashedPassword, "hashed:") != password {
		return errors.New("password mismatch")
	}
	return nil
}
