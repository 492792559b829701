package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 168*time.Hour, cfg.RefreshTTL)
	assert.Equal(t, 168*time.Hour, cfg.RefreshCookieMaxAge)
	assert.Equal(t, time.Hour, cfg.VerificationTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.False(t, cfg.CookieSecureFlag())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_ACCESS_TTL", "5m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("DB_MAX_CONNS", "25")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.CookieSecureFlag())
	assert.Equal(t, 5*time.Minute, cfg.AccessTTL)
	assert.Equal(t, int32(25), cfg.DBMaxConns)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins())
}

func TestLoadRejectsSharedSecrets(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "same")
	t.Setenv("JWT_REFRESH_SECRET", "same")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must differ")
}

func TestValidateBcryptCost(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.BcryptCost = 2
	assert.Error(t, cfg.Validate())
	cfg.BcryptCost = 12
	assert.NoError(t, cfg.Validate())
}

func TestPostgresDSN(t *testing.T) {
	c := &Config{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "5432", DBName: "d", DBSSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", c.PostgresDSN())
}
