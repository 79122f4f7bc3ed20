package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AI_PROVIDER", "")
	cfg := Load()
	cfg.AI.Provider = "deepseek"

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTExpires)
	assert.Equal(t, 4, cfg.AI.WeeksPerChunk)
	assert.Equal(t, "0 1 * * *", cfg.ReminderCron)
	assert.Equal(t, "0 1 * * 1", cfg.DigestCron)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("AI_PROVIDER", "Gemini")
	t.Setenv("GEMINI_API_KEY", "k")
	t.Setenv("AI_WEEKS_PER_CHUNK", "2")
	t.Setenv("AI_MAX_CONCURRENT", "not-a-number")
	t.Setenv("JWT_EXPIRES_MIN", "30")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "gemini", cfg.AI.Provider)
	assert.True(t, cfg.AI.Configured())
	assert.Equal(t, 2, cfg.AI.WeeksPerChunk)
	assert.Equal(t, 4, cfg.AI.MaxConcurrent)
	assert.Equal(t, 30*time.Minute, cfg.JWTExpires)
}

func TestValidateDevelopmentDefaults(t *testing.T) {
	cfg := Load()
	cfg.Env = "development"
	cfg.AI.Provider = "deepseek"
	cfg.ReminderCron = "0 1 * * *"
	cfg.DigestCron = "0 1 * * 1"
	cfg.AI.WeeksPerChunk = 4
	cfg.AI.MaxConcurrent = 4
	cfg.JWTExpires = time.Hour

	assert.NoError(t, cfg.Validate())
}

func TestValidateProductionRequiresSecrets(t *testing.T) {
	cfg := &Config{
		Env:          "production",
		JWTSecret:    defaultJWTSecret,
		JWTExpires:   time.Hour,
		CORSOrigins:  "*",
		AI:           AIConfig{Provider: "openai", WeeksPerChunk: 0, MaxConcurrent: 1},
		ReminderCron: "every day",
		DigestCron:   "0 1 * * 1",
	}

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "JWT_SECRET")
	assert.Contains(t, msg, "CORS_ORIGINS")
	assert.Contains(t, msg, "AI_PROVIDER")
	assert.Contains(t, msg, "AI_WEEKS_PER_CHUNK")
	assert.Contains(t, msg, "REMINDER_CRON")
	assert.NotContains(t, msg, "DIGEST_CRON")
}

func TestServicesAndClientIDs(t *testing.T) {
	cfg := &Config{
		GoogleClientIDs:   " web.apps , ios.apps,,",
		FCMServiceAccount: "sa.json",
		AI:                AIConfig{Provider: "deepseek"},
	}

	assert.Equal(t, ServiceStatus{AI: false, Email: false, Push: true}, cfg.Services())
	assert.Equal(t, []string{"web.apps", "ios.apps"}, cfg.AllowedGoogleClientIDs())
}
