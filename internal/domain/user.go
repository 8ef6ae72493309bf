package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common user validation errors
var (
	ErrEmptyUserID         = errors.New("user ID cannot be empty")
	ErrEmptyEmail          = errors.New("email cannot be empty")
	ErrEmptyName           = errors.New("name cannot be empty")
	ErrNameTooLong         = errors.New("name must be at most 60 characters long")
	ErrPasswordTooShort    = errors.New("password must be at least 8 characters long")
	ErrPasswordTooLong     = errors.New("password must be at most 72 characters long")
	ErrEmptyPassword       = errors.New("password cannot be empty")
	ErrEmptyHashedPassword = errors.New("hashed password cannot be empty")
)

// UserRole identifies a role granted to a user.
type UserRole string

// Supported roles.
const (
	RoleUser  UserRole = "USER"
	RoleAdmin UserRole = "ADMIN"
)

// AccountStatus is the administrative status axis of a user account.
// It is independent of the lock axis (LockUntil) and the soft-delete
// axis (DeletedAt).
type AccountStatus string

// Account status values.
const (
	AccountStatusPendingVerification AccountStatus = "PENDING_VERIFICATION"
	AccountStatusActive              AccountStatus = "ACTIVE"
	AccountStatusDisabledByAdmin     AccountStatus = "DISABLED_BY_ADMIN"
)

// User represents a registered user of the task manager.
//
// Version is a monotonic write counter maintained by the store layer: every
// persisted mutation must present the version it read, and increments it.
type User struct {
	ID             uuid.UUID     `json:"id"`
	Name           string        `json:"name"`
	Email          string        `json:"email"`
	Password       string        `json:"-"` // Plaintext password, used temporarily during registration/updates
	HashedPassword string        `json:"-"` // Never expose password hash in JSON
	Roles          []UserRole    `json:"roles"`
	AccountStatus  AccountStatus `json:"account_status"`
	FailedAttempts int           `json:"-"`
	LockUntil      *time.Time    `json:"-"`
	DeletedAt      *time.Time    `json:"-"`
	Version        int64         `json:"-"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// NormalizeEmail lowercases and trims an email address. All lookups and
// uniqueness checks operate on the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewUser creates a new User with the given name, email and plaintext
// password. The account starts pending verification with the USER role.
// The caller is responsible for hashing the password before storing.
func NewUser(name, email, password string) (*User, error) {
	user := &User{
		ID:            uuid.New(),
		Name:          strings.TrimSpace(name),
		Email:         NormalizeEmail(email),
		Password:      password, // Plaintext password - must be hashed before storage
		Roles:         []UserRole{RoleUser},
		AccountStatus: AccountStatusPendingVerification,
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
// Returns an error if any field fails validation.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if u.Name == "" {
		return ErrEmptyName
	}
	if len(u.Name) > 60 {
		return ErrNameTooLong
	}

	if u.Email == "" {
		return ErrEmptyEmail
	}
	if !validateEmailFormat(u.Email) {
		return ErrInvalidEmail
	}

	if u.Password != "" {
		if len(u.Password) < 8 {
			return ErrPasswordTooShort
		}
		// bcrypt truncates beyond 72 bytes
		if len(u.Password) > 72 {
			return ErrPasswordTooLong
		}
	} else if u.HashedPassword == "" {
		return ErrEmptyPassword
	}

	return nil
}

// HasRole reports whether the user holds the given role.
func (u *User) HasRole(role UserRole) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user holds the ADMIN role. Admin accounts are
// exempt from lockout, admin-disable and self-delete; this is the single
// predicate consulted wherever those carve-outs apply.
func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// IsDeleted reports whether the account has been soft-deleted.
func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

// IsEnabled reports whether the account may authenticate: it must be active
// and not soft-deleted. The lock axis is checked separately via IsLocked.
func (u *User) IsEnabled() bool {
	return u.AccountStatus == AccountStatusActive && !u.IsDeleted()
}

// IsLocked reports whether the account is currently locked out of login.
func (u *User) IsLocked() bool {
	return u.LockUntil != nil && u.LockUntil.After(time.Now())
}

// IsLockExpired reports whether a previously applied lock has run out and
// should be cleared before the next credential check.
func (u *User) IsLockExpired() bool {
	return u.LockUntil != nil && u.LockUntil.Before(time.Now())
}

// RegisterFailedLoginAttempt records one credential failure and applies the
// lockout once the configured maximum is reached. Callers must not invoke
// this for admin accounts; consult IsAdmin first.
func (u *User) RegisterFailedLoginAttempt(lockDuration time.Duration, maxAttempts int) {
	u.FailedAttempts++
	if u.FailedAttempts >= maxAttempts {
		until := time.Now().Add(lockDuration)
		u.LockUntil = &until
	}
}

// ResetFailedAttempts clears the failure counter after a successful login.
func (u *User) ResetFailedAttempts() {
	u.FailedAttempts = 0
}

// Unlock clears the lock axis entirely: failure counter and expiry.
func (u *User) Unlock() {
	u.ResetFailedAttempts()
	u.LockUntil = nil
}

// validateEmailFormat performs basic validation of email format.
// Returns true if the email appears to be in a valid format.
func validateEmailFormat(email string) bool {
	atIndex := strings.IndexByte(email, '@')
	if atIndex <= 0 || atIndex == len(email)-1 {
		return false
	}

	domainPart := email[atIndex+1:]
	if len(domainPart) < 3 { // minimum would be "a.b"
		return false
	}

	dotIndex := strings.IndexByte(domainPart, '.')
	return dotIndex > 0 && dotIndex < len(domainPart)-1
}
