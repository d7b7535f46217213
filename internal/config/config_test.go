package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DevelopmentDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/x?sslmode=disable")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "DKK", cfg.Currency)
	assert.Equal(t, "postgres://u:p@db:5432/x?sslmode=disable", cfg.DatabaseURL)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.Equal(t, 10*time.Minute, cfg.EscrowReconcileAfter)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, "1", cfg.VerificationAmount.String())
}

func TestLoad_ProductionRequiresSecrets(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "short")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_ProductionRequiresLiveMollieKey(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("MOLLIE_API_KEY", "test_abc")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://honeyjobs.dk")

	_, err := Load()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "MOLLIE_API_KEY")
}

func TestLoad_InvalidDuration(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("MOLLIE_TIMEOUT", "fast")

	_, err := Load()
	assert.Error(t, err)
}

func TestConfig_URLs(t *testing.T) {
	cfg := &Config{PublicBaseURL: "https://api.honeyjobs.dk", FrontendBaseURL: "https://honeyjobs.dk"}

	assert.Equal(t, "https://api.honeyjobs.dk/api/webhooks/escrow", cfg.WebhookURL("/escrow"))
	assert.Equal(t, "https://honeyjobs.dk/contracts/1", cfg.RedirectURL("contracts/1"))
}

func TestGetDatabaseURL_FromParts(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("POSTGRESQL_HOST", "db")
	t.Setenv("POSTGRESQL_USER", "app")
	t.Setenv("POSTGRESQL_PASSWORD", "p@ss")
	t.Setenv("POSTGRESQL_DBNAME", "honey")

	assert.Equal(t, "postgres://app:p%40ss@db:5432/honey?sslmode=disable", getDatabaseURL())
}
