package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("JWT_TTL_HOURS", "not-a-number")
	t.Setenv("REQUIRE_OTP_BEFORE_OUTCOME", "")
	t.Setenv("PAYOUT_CURRENCY", "")
	t.Setenv("R2_ACCOUNT_ID", "")

	cfg := Load()

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, 24, cfg.JWT.TTLHours)
	assert.False(t, cfg.Workflow.RequireOTPBeforeOutcome)
	assert.Equal(t, "eur", cfg.Payout.Currency)
	assert.False(t, cfg.Storage.RemoteEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("JWT_TTL_HOURS", "6")
	t.Setenv("REQUIRE_OTP_BEFORE_OUTCOME", "true")
	t.Setenv("PAYOUT_CURRENCY", "USD")
	t.Setenv("DOCUMENTS_PUBLIC_BASE", "https://cdn.example.com/")
	t.Setenv("TWILIO_ACCOUNT_SID", "AC123")
	t.Setenv("TWILIO_AUTH_TOKEN", "secret")
	t.Setenv("TWILIO_FROM_PHONE", "+15550000000")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 6, cfg.JWT.TTLHours)
	assert.True(t, cfg.Workflow.RequireOTPBeforeOutcome)
	assert.Equal(t, "usd", cfg.Payout.Currency)
	assert.Equal(t, "https://cdn.example.com", cfg.Storage.PublicBase)
	assert.True(t, cfg.SMS.Enabled())
}
