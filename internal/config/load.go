package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and an optional
// config.yaml in the working directory. Environment variables use the
// TASKMANAGER_ prefix with underscores for nesting (e.g.
// TASKMANAGER_SERVER_PORT) and take precedence over file values.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("TASKMANAGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; env vars and defaults carry it.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers default values for everything that has a sensible
// one. Secrets (database URL, JWT secret, SMTP credentials) have no default
// and must be provided.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	// Secrets default to empty so viper knows the keys and can resolve them
	// from the environment; validation rejects them when left unset.
	v.SetDefault("database.url", "")
	v.SetDefault("auth.jwt_secret", "")

	v.SetDefault("auth.token_lifetime_minutes", 60)

	v.SetDefault("security.lock_minutes", 15)
	v.SetDefault("security.max_failed_attempts", 5)
	v.SetDefault("security.bcrypt_cost", 0) // 0 lets bcrypt pick its default cost

	v.SetDefault("token.email_verification_expiry_minutes", 60)
	v.SetDefault("token.password_reset_expiry_minutes", 10)

	v.SetDefault("retention.cancelled_task_days", 90)
	v.SetDefault("retention.done_task_days", 180)
	v.SetDefault("retention.disabled_user_days", 180)
	v.SetDefault("retention.deleted_user_days", 180)

	v.SetDefault("maintenance.sweep_interval_minutes", 60)

	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")

	v.SetDefault("admin.name", "Administrator")
	v.SetDefault("admin.email", "")
	v.SetDefault("admin.password", "")
}
