package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret-key-thats-long-enough-for-hs256"

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TASKMANAGER_DATABASE_URL", "postgres://localhost:5432/taskmanager_test")
	t.Setenv("TASKMANAGER_AUTH_JWT_SECRET", testJWTSecret)
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.Equal(t, 60, cfg.Auth.TokenLifetimeMinutes)
	assert.Equal(t, 15, cfg.Security.LockMinutes)
	assert.Equal(t, 5, cfg.Security.MaxFailedAttempts)
	assert.Equal(t, 60, cfg.Token.EmailVerificationExpiryMinutes)
	assert.Equal(t, 10, cfg.Token.PasswordResetExpiryMinutes)
	assert.Equal(t, 90, cfg.Retention.CancelledTaskDays)
	assert.Equal(t, 180, cfg.Retention.DoneTaskDays)
	assert.Equal(t, 60, cfg.Maintenance.SweepIntervalMinutes)
}

func TestLoadEnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TASKMANAGER_SERVER_PORT", "9090")
	t.Setenv("TASKMANAGER_SERVER_LOG_LEVEL", "debug")
	t.Setenv("TASKMANAGER_SECURITY_MAX_FAILED_ATTEMPTS", "3")
	t.Setenv("TASKMANAGER_RETENTION_DELETED_USER_DAYS", "30")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, 3, cfg.Security.MaxFailedAttempts)
	assert.Equal(t, 30, cfg.Retention.DeletedUserDays)
}

func TestLoadValidation(t *testing.T) {
	t.Run("missing database URL", func(t *testing.T) {
		t.Setenv("TASKMANAGER_DATABASE_URL", "")
		t.Setenv("TASKMANAGER_AUTH_JWT_SECRET", testJWTSecret)

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("short JWT secret", func(t *testing.T) {
		t.Setenv("TASKMANAGER_DATABASE_URL", "postgres://localhost:5432/taskmanager_test")
		t.Setenv("TASKMANAGER_AUTH_JWT_SECRET", "too-short")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("bad log level", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("TASKMANAGER_SERVER_LOG_LEVEL", "loud")

		_, err := Load()
		assert.Error(t, err)
	})
}
