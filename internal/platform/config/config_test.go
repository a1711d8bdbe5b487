package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := FromEnv()
		assert.Equal(t, ":8080", cfg.Server.Addr)
		assert.Equal(t, time.Hour, cfg.Auth.UserTokenTTL)
		assert.Equal(t, 24*time.Hour, cfg.Auth.AdminTokenTTL)
		assert.Equal(t, "pending", cfg.Auth.AdminDefaultStatus)
		assert.Equal(t, "log", cfg.Events.Sink)
		assert.Equal(t, "admin_events", cfg.Events.RabbitMQExchange)
		assert.Empty(t, cfg.Database.IdentityURL)
		assert.Nil(t, cfg.Events.KafkaBrokers)
		assert.Equal(t, 10, cfg.RateLimit.AuthLimit)
		assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("ACCOUNT_ADDR", ":9090")
		t.Setenv("ADMIN_TOKEN_TTL", "12h")
		t.Setenv("ADMIN_DEFAULT_STATUS", "ACTIVE")
		t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
		t.Setenv("HISTORY_ENRICH_CONCURRENCY", "3")
		t.Setenv("DB_AUTO_MIGRATE", "true")
		t.Setenv("RATE_LIMIT_AUTH", "0")
		t.Setenv("HISTORY_LOCATION", "Asia/Dhaka")
		t.Setenv("RATE_LIMIT_TRUSTED_PROXIES", "10.0.0.0/8, 192.0.2.50")

		cfg := FromEnv()
		assert.Equal(t, ":9090", cfg.Server.Addr)
		assert.Equal(t, 12*time.Hour, cfg.Auth.AdminTokenTTL)
		assert.Equal(t, "active", cfg.Auth.AdminDefaultStatus)
		assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Events.KafkaBrokers)
		assert.Equal(t, 3, cfg.History.EnrichConcurrency)
		assert.True(t, cfg.Database.AutoMigrate)
		assert.Zero(t, cfg.RateLimit.AuthLimit)
		assert.Equal(t, "Asia/Dhaka", cfg.History.Location)
		assert.Equal(t, []string{"10.0.0.0/8", "192.0.2.50"}, cfg.RateLimit.TrustedProxies)
	})

	t.Run("malformed values fall back to defaults", func(t *testing.T) {
		t.Setenv("USER_TOKEN_TTL", "soon")
		t.Setenv("BCRYPT_COST", "high")

		cfg := FromEnv()
		assert.Equal(t, time.Hour, cfg.Auth.UserTokenTTL)
		assert.Equal(t, 10, cfg.Auth.BcryptCost)
	})
}
