package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/remp2020/crm-stripe-module/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GATEWAY_DATABASE__HOST", "localhost")
	t.Setenv("GATEWAY_DATABASE__PORT", "5432")
	t.Setenv("GATEWAY_DATABASE__USER", "crm")
	t.Setenv("GATEWAY_DATABASE__PASSWORD", "secret")
	t.Setenv("GATEWAY_DATABASE__NAME", "crm")
	t.Setenv("GATEWAY_REDIS__ADDR", "localhost:6379")
	t.Setenv("GATEWAY_STRIPE__SECRET_KEY", "sk_test_123")
	t.Setenv("GATEWAY_STRIPE__PUBLISHABLE_KEY", "pk_test_123")
	t.Setenv("GATEWAY_STRIPE__RETURN_URL", "https://crm.example.com/payments/return")
	t.Setenv("GATEWAY_STRIPE__CHECKOUT_URL", "https://crm.example.com/stripe/checkout")
	t.Setenv("GATEWAY_STRIPE__SUCCESS_URL", "https://crm.example.com/sales-funnel/success")
	t.Setenv("GATEWAY_STRIPE__FAILURE_URL", "https://crm.example.com/sales-funnel/error")
	t.Setenv("GATEWAY_STRIPE__WALLET_URL", "https://crm.example.com/stripe/wallet")
	t.Setenv("GATEWAY_STRIPE__WALLET_DISPLAY_NAME", "Example CRM")
	t.Setenv("GATEWAY_STRIPE__WALLET_COUNTRY", "SK")
}

func TestLoadConfig(t *testing.T) {
	t.Run("loads env over defaults", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("GATEWAY_SERVER__PORT", "9090")
		t.Setenv("GATEWAY_WORKER__INTERVAL", "30s")

		cfg, err := config.LoadConfig()

		require.NoError(t, err)
		assert.Equal(t, "9090", cfg.Server.Port)
		assert.Equal(t, 30*time.Second, cfg.Worker.Interval)
		assert.Equal(t, 15*time.Minute, cfg.Worker.MinAge)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "EUR", cfg.Stripe.Currency)
		assert.Equal(t, "sk_test_123", cfg.Stripe.SecretKey)
		assert.Equal(t, "SK", cfg.Stripe.WalletCountry)
		assert.Equal(t, 30*time.Second, cfg.Redis.LockTTL)
	})

	t.Run("fails validation without publishable key", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("GATEWAY_STRIPE__PUBLISHABLE_KEY", "")

		_, err := config.LoadConfig()

		assert.Error(t, err)
	})

	t.Run("fails validation on malformed return url", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("GATEWAY_STRIPE__RETURN_URL", "not a url")

		_, err := config.LoadConfig()

		assert.Error(t, err)
	})
}

func TestDatabaseConfig_PgxConfig(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host:            "db",
		Port:            5433,
		User:            "crm",
		Password:        "secret",
		Name:            "payments",
		SSLMode:         "disable",
		MaxOpenConns:    8,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: time.Minute,
	}

	pgxCfg, err := cfg.PgxConfig(t.Context())

	require.NoError(t, err)
	assert.Equal(t, "db", pgxCfg.ConnConfig.Host)
	assert.Equal(t, uint16(5433), pgxCfg.ConnConfig.Port)
	assert.Equal(t, "payments", pgxCfg.ConnConfig.Database)
	assert.Equal(t, int32(8), pgxCfg.MaxConns)
	assert.Equal(t, int32(2), pgxCfg.MinConns)
}

func TestLoggerConfig_NewLogger(t *testing.T) {
	logger := config.LoggerConfig{Level: "debug"}.NewLogger()

	assert.True(t, logger.Enabled(t.Context(), slog.LevelDebug))

	logger = config.LoggerConfig{Level: "error", Format: "json"}.NewLogger()

	assert.False(t, logger.Enabled(t.Context(), slog.LevelWarn))
}
