package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestDefaults(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"DATABASE_URL": "sqlite://fintrack.db",
		"JWT_SECRET":   "s3cret",
	}))
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "USD", cfg.CurrencyBase)
	assert.Equal(t, 6*time.Hour, cfg.FXTTL)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.False(t, cfg.DemoMode)
	assert.False(t, cfg.MailEnabled())
	assert.Empty(t, cfg.AllowedOrigins)
}

func TestOverrides(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		"DATABASE_URL":    "postgres://localhost/fintrack",
		"JWT_SECRET":      "s3cret",
		"DEMO_MODE":       "true",
		"ALLOWED_ORIGINS": "https://a.example, https://b.example,",
		"CURRENCY_BASE":   "eur",
		"FX_TTL":          "30m",
		"SMTP_HOST":       "smtp.example.com",
		"SMTP_USER":       "bot@example.com",
		"SMTP_PASS":       "pw",
	}))
	require.NoError(t, err)
	assert.True(t, cfg.DemoMode)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "EUR", cfg.CurrencyBase)
	assert.Equal(t, 30*time.Minute, cfg.FXTTL)
	assert.True(t, cfg.MailEnabled())
}

func TestRequiredKeys(t *testing.T) {
	_, err := FromLookup(lookupFrom(map[string]string{"JWT_SECRET": "x"}))
	assert.ErrorContains(t, err, "DATABASE_URL")

	_, err = FromLookup(lookupFrom(map[string]string{"DATABASE_URL": "sqlite://x"}))
	assert.ErrorContains(t, err, "JWT_SECRET")

	_, err = FromLookup(lookupFrom(map[string]string{
		"DATABASE_URL": "sqlite://x", "JWT_SECRET": "x", "SMTP_HOST": "smtp.example.com",
	}))
	assert.ErrorContains(t, err, "SMTP_USER")

	_, err = FromLookup(lookupFrom(map[string]string{
		"DATABASE_URL": "sqlite://x", "JWT_SECRET": "x", "FX_TTL": "soon",
	}))
	assert.ErrorContains(t, err, "FX_TTL")
}
