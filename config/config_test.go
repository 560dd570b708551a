package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_USER", "root")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "3306", cfg.DBPort)
	assert.Equal(t, 2*time.Hour, cfg.SessionTimeout)
	assert.Equal(t, 0, cfg.MaxLoginAttempts)
	assert.Equal(t, "hospital_session", cfg.SessionCookieName)
	assert.False(t, cfg.OverviewDemoFallback)
	assert.NotEmpty(t, cfg.SessionSecret)
	assert.Equal(t, []string{"http://localhost:8080"}, cfg.CORSOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_USER", "hospital")
	t.Setenv("SESSION_SECRET", "0123456789abcdef0123")
	t.Setenv("SESSION_TIMEOUT", "30m")
	t.Setenv("MAX_LOGIN_ATTEMPTS", "5")
	t.Setenv("LOCKOUT_DURATION", "10m")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Minute, cfg.SessionTimeout)
	assert.Equal(t, 5, cfg.MaxLoginAttempts)
	assert.Equal(t, 10*time.Minute, cfg.LockoutDuration)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.False(t, cfg.IsDev())
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DB_USER", "hospital")
	t.Setenv("SESSION_SECRET", "")

	_, err := Load()
	assert.ErrorContains(t, err, "SESSION_SECRET")
}

func TestValidate(t *testing.T) {
	base := Config{
		DBUser:         "root",
		DBName:         "hospital_management",
		SessionSecret:  "0123456789abcdef",
		SessionTimeout: time.Hour,
	}

	c := base
	assert.NoError(t, c.Validate())

	c = base
	c.DBUser = ""
	assert.Error(t, c.Validate())

	c = base
	c.MaxLoginAttempts = 3
	c.LockoutDuration = 0
	assert.ErrorContains(t, c.Validate(), "LOCKOUT_DURATION")

	c = base
	c.SessionTimeout = 0
	assert.Error(t, c.Validate())
}
