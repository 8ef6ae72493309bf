package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server      ServerConfig      `mapstructure:"server" validate:"required"`
	Database    DatabaseConfig    `mapstructure:"database" validate:"required"`
	Auth        AuthConfig        `mapstructure:"auth" validate:"required"`
	Security    SecurityConfig    `mapstructure:"security" validate:"required"`
	Token       TokenConfig       `mapstructure:"token" validate:"required"`
	Retention   RetentionConfig   `mapstructure:"retention" validate:"required"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance" validate:"required"`
	SMTP        SMTPConfig        `mapstructure:"smtp"`
	Admin       AdminConfig       `mapstructure:"admin"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains JWT authentication settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// SecurityConfig contains the login-lockout policy settings.
type SecurityConfig struct {
	// LockMinutes is how long an account stays locked after exhausting
	// its failed attempts.
	LockMinutes int `mapstructure:"lock_minutes" validate:"required,gt=0"`
	// MaxFailedAttempts is the number of credential failures that
	// triggers the lock.
	MaxFailedAttempts int `mapstructure:"max_failed_attempts" validate:"required,gt=0"`
	// BcryptCost is the work factor for password hashing.
	BcryptCost int `mapstructure:"bcrypt_cost" validate:"gte=0,lte=31"`
}

// TokenConfig contains the per-type verification token expiries.
type TokenConfig struct {
	EmailVerificationExpiryMinutes int `mapstructure:"email_verification_expiry_minutes" validate:"required,gt=0"`
	PasswordResetExpiryMinutes     int `mapstructure:"password_reset_expiry_minutes" validate:"required,gt=0"`
}

// RetentionConfig contains the age thresholds, in days, past which entities
// become eligible for permanent deletion by the maintenance sweeps.
type RetentionConfig struct {
	CancelledTaskDays int `mapstructure:"cancelled_task_days" validate:"required,gt=0"`
	DoneTaskDays      int `mapstructure:"done_task_days" validate:"required,gt=0"`
	DisabledUserDays  int `mapstructure:"disabled_user_days" validate:"required,gt=0"`
	DeletedUserDays   int `mapstructure:"deleted_user_days" validate:"required,gt=0"`
}

// MaintenanceConfig contains the scheduler settings.
type MaintenanceConfig struct {
	SweepIntervalMinutes int `mapstructure:"sweep_interval_minutes" validate:"required,gt=0"`
}

// SMTPConfig contains the email dispatch settings. When Host is empty the
// mailer logs and skips sending, which keeps local development working
// without an SMTP server.
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// AdminConfig describes the seed administrator account created at startup
// when no user with the given email exists. Left empty, no seeding happens.
type AdminConfig struct {
	Name     string `mapstructure:"name"`
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}
