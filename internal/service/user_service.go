package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vicentejluz/taskmanager/internal/config"
	"github.com/vicentejluz/taskmanager/internal/domain"
	"github.com/vicentejluz/taskmanager/internal/platform/mailer"
	"github.com/vicentejluz/taskmanager/internal/service/auth"
	"github.com/vicentejluz/taskmanager/internal/store"
)

// UserService implements the account lifecycle: registration, email
// verification, login with lockout, password reset, profile changes and
// administrative enable/disable.
type UserService struct {
	userStore    store.UserStore
	tokenStore   store.TokenStore
	tokenService *TokenService
	txRunner     store.TxRunner
	verifier     auth.PasswordVerifier
	hasher       auth.PasswordHasher
	jwtService   auth.JWTService
	mailer       mailer.Mailer
	security     config.SecurityConfig
	logger       *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(
	userStore store.UserStore,
	tokenStore store.TokenStore,
	tokenService *TokenService,
	txRunner store.TxRunner,
	verifier auth.PasswordVerifier,
	hasher auth.PasswordHasher,
	jwtService auth.JWTService,
	m mailer.Mailer,
	security config.SecurityConfig,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		userStore:    userStore,
		tokenStore:   tokenStore,
		tokenService: tokenService,
		txRunner:     txRunner,
		verifier:     verifier,
		hasher:       hasher,
		jwtService:   jwtService,
		mailer:       m,
		security:     security,
		logger:       logger.With("component", "user_service"),
	}
}

// Register creates a new pending account and issues an email verification
// token. Registering an email that belongs to a pending or soft-deleted
// account re-registers it in place: name and password are replaced and the
// account returns to pending verification. An email held by a live verified
// account is rejected with store.ErrEmailExists.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	var user *domain.User
	var token *domain.VerificationToken

	err := s.txRunner.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		users := s.userStore.WithTx(tx)
		tokens := s.tokenService.WithStore(s.tokenStore.WithTx(tx))

		existing, err := users.GetByEmail(ctx, email)
		if err != nil && !errors.Is(err, store.ErrUserNotFound) {
			return fmt.Errorf("failed to look up email: %w", err)
		}

		if existing != nil {
			if existing.AccountStatus != domain.AccountStatusPendingVerification && !existing.IsDeleted() {
				return store.ErrEmailExists
			}

			// Re-register: the previous owner never activated or deleted
			// the account, so the new registrant takes it over.
			existing.Name = name
			existing.Password = password
			if err := existing.Validate(); err != nil {
				return fmt.Errorf("%w: %v", domain.ErrValidation, err)
			}
			hash, err := s.hasher.Hash(password)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
			existing.HashedPassword = hash
			existing.Password = ""
			existing.AccountStatus = domain.AccountStatusPendingVerification
			existing.DeletedAt = nil
			existing.Unlock()

			if err := users.Save(ctx, existing); err != nil {
				return fmt.Errorf("failed to re-register account: %w", err)
			}
			user = existing
		} else {
			newUser, err := domain.NewUser(name, email, password)
			if err != nil {
				return fmt.Errorf("%w: %v", domain.ErrValidation, err)
			}
			hash, err := s.hasher.Hash(password)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
			newUser.HashedPassword = hash
			newUser.Password = ""

			if err := users.Create(ctx, newUser); err != nil {
				return err
			}
			user = newUser
		}

		token, err = tokens.GetOrCreateActive(ctx, user.ID, domain.TokenTypeEmailVerification)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("account registered",
		"user_id", user.ID,
		"email", user.Email)

	// Email dispatch stays outside the transaction; a mail failure must not
	// roll back the registration.
	if err := s.mailer.SendVerificationEmail(user.Email, user.Name, token.Token); err != nil {
		s.logger.Error("failed to send verification email",
			"error", err,
			"user_id", user.ID)
	}

	return user, nil
}

// Login authenticates an email/password pair and returns a signed access
// token. Failed attempts are counted and lock the account once the configured
// maximum is reached; admin accounts are exempt from counting and locking.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to look up user: %w", err)
	}

	// Soft-deleted accounts are indistinguishable from unknown emails.
	if user.IsDeleted() {
		return "", nil, ErrInvalidCredentials
	}

	if user.IsLocked() {
		return "", nil, &AccountLockedError{LockUntil: *user.LockUntil}
	}

	// An expired lock is cleared before the credential check so the attempt
	// counter starts fresh.
	if user.IsLockExpired() {
		user.Unlock()
		if err := s.userStore.Save(ctx, user); err != nil {
			if !errors.Is(err, store.ErrVersionConflict) {
				return "", nil, fmt.Errorf("failed to clear expired lock: %w", err)
			}
			s.logger.Warn("expired lock cleared concurrently, continuing",
				"user_id", user.ID)
		}
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		if !user.IsAdmin() {
			user.RegisterFailedLoginAttempt(
				time.Duration(s.security.LockMinutes)*time.Minute,
				s.security.MaxFailedAttempts,
			)
			if saveErr := s.userStore.Save(ctx, user); saveErr != nil {
				s.logger.Warn("failed to record failed login attempt",
					"error", saveErr,
					"user_id", user.ID)
			} else if user.IsLocked() {
				s.logger.Info("account locked after repeated failed logins",
					"user_id", user.ID,
					"lock_until", user.LockUntil)
			}
		}
		return "", nil, ErrInvalidCredentials
	}

	if !user.IsEnabled() {
		return "", nil, ErrAccountNotActive
	}

	if user.FailedAttempts > 0 || user.LockUntil != nil {
		user.Unlock()
		if err := s.userStore.Save(ctx, user); err != nil {
			s.logger.Warn("failed to reset login attempt counter",
				"error", err,
				"user_id", user.ID)
		}
	}

	accessToken, err := s.jwtService.GenerateToken(ctx, user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	s.logger.Info("login succeeded", "user_id", user.ID)

	return accessToken, user, nil
}

// VerifyEmail consumes an email verification token and activates the
// account. Verification also clears any pending soft deletion.
func (s *UserService) VerifyEmail(ctx context.Context, tokenValue string) error {
	return s.txRunner.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		users := s.userStore.WithTx(tx)
		tokens := s.tokenService.WithStore(s.tokenStore.WithTx(tx))

		token, err := tokens.ValidateForConsumption(ctx, tokenValue, domain.TokenTypeEmailVerification)
		if err != nil {
			return err
		}
		if err := tokens.Consume(ctx, token); err != nil {
			return err
		}

		user, err := users.GetByID(ctx, token.UserID)
		if err != nil {
			return fmt.Errorf("failed to load user for verification: %w", err)
		}

		user.AccountStatus = domain.AccountStatusActive
		user.DeletedAt = nil
		if err := users.Save(ctx, user); err != nil {
			return fmt.Errorf("failed to activate account: %w", err)
		}

		s.logger.Info("email verified, account activated", "user_id", user.ID)
		return nil
	})
}

// ResendVerification issues (or reuses) a verification token for a pending
// account and emails it. The result is always nil for unknown emails and
// already-verified accounts so the endpoint cannot be used to probe for
// registered addresses.
func (s *UserService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			s.logger.Debug("verification resend for unknown email, ignoring")
			return nil
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	if user.AccountStatus != domain.AccountStatusPendingVerification {
		s.logger.Debug("verification resend for non-pending account, ignoring",
			"user_id", user.ID)
		return nil
	}

	token, err := s.tokenService.GetOrCreateActive(ctx, user.ID, domain.TokenTypeEmailVerification)
	if err != nil {
		return err
	}

	if err := s.mailer.SendVerificationEmail(user.Email, user.Name, token.Token); err != nil {
		s.logger.Error("failed to send verification email",
			"error", err,
			"user_id", user.ID)
	}
	return nil
}

// ForgotPassword issues (or reuses) a password reset token and emails it.
// Like ResendVerification, it never reveals whether the email is registered.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			s.logger.Debug("password reset requested for unknown email, ignoring")
			return nil
		}
		return fmt.Errorf("failed to look up user: %w", err)
	}

	if !user.IsEnabled() {
		s.logger.Debug("password reset requested for inactive account, ignoring",
			"user_id", user.ID)
		return nil
	}

	token, err := s.tokenService.GetOrCreateActive(ctx, user.ID, domain.TokenTypePasswordReset)
	if err != nil {
		return err
	}

	if err := s.mailer.SendPasswordResetEmail(user.Email, user.Name, token.Token); err != nil {
		s.logger.Error("failed to send password reset email",
			"error", err,
			"user_id", user.ID)
	}
	return nil
}

// ValidateResetToken checks a password reset token without consuming it, so
// the UI can gate the new-password form.
func (s *UserService) ValidateResetToken(ctx context.Context, tokenValue string) error {
	_, err := s.tokenService.ValidateForConsumption(ctx, tokenValue, domain.TokenTypePasswordReset)
	return err
}

// ResetPassword consumes a password reset token and replaces the password.
// Only an active, live account may complete the reset; an account disabled
// or soft-deleted after requesting the token is refused and the token stays
// unconsumed. The reset also clears the lock axis so a locked-out user
// regains access. The requesting IP is included in the confirmation email.
func (s *UserService) ResetPassword(ctx context.Context, tokenValue, newPassword, requestIP string) error {
	var user *domain.User

	err := s.txRunner.RunInTransaction(ctx, func(ctx context.Context, tx *sql.Tx) error {
		users := s.userStore.WithTx(tx)
		tokens := s.tokenService.WithStore(s.tokenStore.WithTx(tx))

		token, err := tokens.ValidateForConsumption(ctx, tokenValue, domain.TokenTypePasswordReset)
		if err != nil {
			return err
		}

		user, err = users.GetByID(ctx, token.UserID)
		if err != nil {
			return fmt.Errorf("failed to load user for password reset: %w", err)
		}

		// The account's eligibility may have changed since the token was
		// issued.
		if user.IsDeleted() {
			return ErrOperationNotAllowed
		}
		if !user.IsEnabled() {
			return ErrAccountNotActive
		}

		if err := tokens.Consume(ctx, token); err != nil {
			return err
		}

		user.Password = newPassword
		if err := user.Validate(); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		hash, err := s.hasher.Hash(newPassword)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		user.HashedPassword = hash
		user.Password = ""
		user.Unlock()

		if err := users.Save(ctx, user); err != nil {
			return fmt.Errorf("failed to save new password: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("password reset completed", "user_id", user.ID)

	if err := s.mailer.SendPasswordResetSuccessEmail(user.Email, user.Name, requestIP); err != nil {
		s.logger.Error("failed to send password reset confirmation",
			"error", err,
			"user_id", user.ID)
	}
	return nil
}

// GetUser retrieves a user by their ID.
func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsDeleted() {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email for administrative lookups.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.userStore.GetByEmail(ctx, email)
}

// UpdateProfile replaces the user's name and email. An email already held by
// another account surfaces as store.ErrEmailExists.
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, name, email string) (*domain.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Name = name
	user.Email = domain.NormalizeEmail(email)
	if err := user.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if err := s.userStore.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("profile updated", "user_id", user.ID)
	return user, nil
}

// ChangePassword replaces the password of an authenticated user. The current
// password must match and the new one must differ from it.
func (s *UserService) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.verifier.Compare(user.HashedPassword, oldPassword); err != nil {
		return ErrInvalidOldPassword
	}
	if oldPassword == newPassword {
		return ErrSamePassword
	}

	user.Password = newPassword
	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.HashedPassword = hash
	user.Password = ""

	if err := s.userStore.Save(ctx, user); err != nil {
		return err
	}

	s.logger.Info("password changed", "user_id", user.ID)
	return nil
}

// DeleteAccount soft-deletes the user's own account. The row survives until
// the retention sweep removes it, so verification within the retention window
// can resurrect the address via Register. Admin accounts cannot self-delete.
func (s *UserService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	if user.IsAdmin() {
		return ErrOperationNotAllowed
	}

	now := time.Now().UTC()
	user.DeletedAt = &now

	if err := s.userStore.Save(ctx, user); err != nil {
		return err
	}

	s.logger.Info("account soft-deleted", "user_id", user.ID)
	return nil
}

// ToggleEnabled flips an account between ACTIVE and DISABLED_BY_ADMIN. Admin
// accounts, soft-deleted accounts and accounts still pending verification
// cannot be toggled.
func (s *UserService) ToggleEnabled(ctx context.Context, targetID uuid.UUID) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if user.IsAdmin() || user.IsDeleted() {
		return nil, ErrOperationNotAllowed
	}

	switch user.AccountStatus {
	case domain.AccountStatusActive:
		user.AccountStatus = domain.AccountStatusDisabledByAdmin
	case domain.AccountStatusDisabledByAdmin:
		user.AccountStatus = domain.AccountStatusActive
	default:
		return nil, ErrOperationNotAllowed
	}

	if err := s.userStore.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("account status toggled",
		"user_id", user.ID,
		"account_status", user.AccountStatus)
	return user, nil
}

// EnsureAdmin creates the seed administrator account if no user holds the
// given email yet. Called once at startup; a blank email disables seeding.
func (s *UserService) EnsureAdmin(ctx context.Context, cfg config.AdminConfig) error {
	if cfg.Email == "" {
		return nil
	}

	exists, err := s.userStore.ExistsByEmail(ctx, cfg.Email)
	if err != nil {
		return fmt.Errorf("failed to check for admin account: %w", err)
	}
	if exists {
		return nil
	}

	admin, err := domain.NewUser(cfg.Name, cfg.Email, cfg.Password)
	if err != nil {
		return fmt.Errorf("invalid admin seed settings: %w", err)
	}
	hash, err := s.hasher.Hash(cfg.Password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	admin.HashedPassword = hash
	admin.Password = ""
	admin.Roles = []domain.UserRole{domain.RoleUser, domain.RoleAdmin}
	admin.AccountStatus = domain.AccountStatusActive

	if err := s.userStore.Create(ctx, admin); err != nil {
		// A concurrent instance may have seeded it first.
		if errors.Is(err, store.ErrEmailExists) {
			return nil
		}
		return fmt.Errorf("failed to create admin account: %w", err)
	}

	s.logger.Info("seed admin account created", "email", admin.Email)
	return nil
}
