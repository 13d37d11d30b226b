package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{
		"APP_PORT", "CONFIRMATION_TTL", "SWEEP_INTERVAL", "STORE_BACKEND",
		"SMTP_PORT", "SMTP_USERNAME", "GMAIL_USER", "ALLOWED_ORIGINS", "TRUST_PROXY",
	} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, "3000", cfg.AppPort)
	assert.Equal(t, 24*time.Hour, cfg.ConfirmationTTL)
	assert.Equal(t, time.Hour, cfg.SweepInterval)
	assert.Equal(t, StoreMemory, cfg.StoreBackend)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Empty(t, cfg.SMTPUsername)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.False(t, cfg.TrustProxy)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CONFIRMATION_TTL", "30m")
	t.Setenv("SWEEP_INTERVAL", "5m")
	t.Setenv("STORE_BACKEND", "Redis")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("RATE_LIMIT_RPS", "0.5")
	t.Setenv("TRUST_PROXY", "true")

	cfg := Load()

	assert.Equal(t, 30*time.Minute, cfg.ConfirmationTTL)
	assert.Equal(t, 5*time.Minute, cfg.SweepInterval)
	assert.Equal(t, StoreRedis, cfg.StoreBackend)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 0.5, cfg.RateLimitRPS)
	assert.True(t, cfg.TrustProxy)
}

func TestLoad_GmailAliases(t *testing.T) {
	t.Setenv("SMTP_USERNAME", "")
	t.Setenv("SMTP_PASSWORD", "")
	t.Setenv("GMAIL_USER", "me@gmail.com")
	t.Setenv("GMAIL_APP_PASSWORD", "app-pass")

	cfg := Load()

	assert.Equal(t, "me@gmail.com", cfg.SMTPUsername)
	assert.Equal(t, "app-pass", cfg.SMTPPassword)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("CONFIRMATION_TTL", "tomorrow")
	t.Setenv("SMTP_PORT", "abc")
	t.Setenv("SWEEP_INTERVAL", "-1h")
	t.Setenv("TRUST_PROXY", "sometimes")

	cfg := Load()

	assert.Equal(t, 24*time.Hour, cfg.ConfirmationTTL)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, time.Hour, cfg.SweepInterval)
	assert.False(t, cfg.TrustProxy)
}
