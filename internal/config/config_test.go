package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadRequiresDatabaseAndSecret(t *testing.T) {
	chdirTemp(t)
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.ErrorContains(t, err, "DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://localhost/talent")
	_, err = Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoadDefaultsAndEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/talent")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("FRONTEND_URL", "https://portal.arbeit.io/")
	t.Setenv("STATIC_TOKENS", "a, b,,c")
	t.Setenv("BOOKING_TOKEN_TTL", "48h")
	t.Setenv("PORT", ":9090")
	t.Setenv("GIN_MODE", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://portal.arbeit.io", cfg.FrontendURL)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.StaticTokens)
	assert.Equal(t, 48*time.Hour, cfg.BookingTokenTTL)
	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, "@every 15m", cfg.ReminderSchedule)
	assert.Equal(t, "primary", cfg.Google.CalendarID)
	assert.Equal(t, "release", cfg.GinMode)
	assert.False(t, cfg.Google.OAuthConfigured())
}

func TestLoadGinMode(t *testing.T) {
	chdirTemp(t)
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/talent")
	t.Setenv("JWT_SECRET", "s3cret")

	t.Setenv("GIN_MODE", "debug")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.GinMode)

	t.Setenv("GIN_MODE", "verbose")
	_, err = Load()
	assert.ErrorContains(t, err, "GIN_MODE")
}

func TestLoadYAMLThenEnvWins(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "talent.yaml")
	yml := `
database_url: postgres://yaml/talent
jwt_secret: from-yaml
reminder_schedule: "@every 1h"
email:
  host: smtp.example.com
  from: no-reply@arbeit.io
google:
  client_id: cid
  client_secret: sec
  redirect_url: http://localhost:8080/oauth2callback
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://yaml/talent", cfg.DatabaseURL)
	assert.Equal(t, "from-env", cfg.JWTSecret)
	assert.Equal(t, "@every 1h", cfg.ReminderSchedule)
	assert.True(t, cfg.Email.Enabled())
	assert.Equal(t, 587, cfg.Email.Port)
	assert.True(t, cfg.Google.OAuthConfigured())
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")
	t.Cleanup(func() {
		os.Unsetenv("DATABASE_URL")
		os.Unsetenv("JWT_SECRET")
	})
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DATABASE_URL=postgres://dotenv/talent\nJWT_SECRET=dot\n"), 0o600))

	_ = os.Unsetenv("DATABASE_URL")
	_ = os.Unsetenv("JWT_SECRET")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://dotenv/talent", cfg.DatabaseURL)
	assert.Equal(t, "dot", cfg.JWTSecret)
}

func TestLoadBadDuration(t *testing.T) {
	chdirTemp(t)
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/talent")
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("ACTION_LOCK_TTL", "soon")

	_, err := Load()
	assert.ErrorContains(t, err, "ACTION_LOCK_TTL")
}
