//go:build !integration

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"BOT_NAME", "CREATOR", "AI_PROVIDER", "OPENAI_API_KEY", "GEMINI_API_KEY",
		"ANTHROPIC_API_KEY", "AI_MODEL", "TWILIO_ACCOUNT_SID", "TWILIO_AUTH_TOKEN",
		"TELEGRAM_BOT_TOKEN", "DATABASE_URL", "REDIS_URL", "ADMIN_JWT_SECRET",
		"MAX_TOKENS", "PORT",
	} {
		t.Setenv(k, "")
	}
}

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), false)
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, "🤖 Mannuni", cfg.Bot.Name)
	assert.Equal(t, "created by thexcomrade", cfg.Bot.Creator)
	assert.Equal(t, 1500, cfg.AI.MaxTokens)
	assert.Equal(t, 500, cfg.AI.VisionMaxTokens)
	assert.InDelta(t, 0.7, cfg.AI.Temperature, 1e-9)
	assert.Equal(t, 5000, cfg.HTTP.Port)
	assert.Equal(t, "/whatsapp", cfg.HTTP.WebhookPath)
	assert.Equal(t, 10*time.Second, cfg.Media.Timeout)
	assert.Equal(t, int64(16<<20), cfg.Media.MaxBytes)
	assert.Equal(t, 24*time.Hour, cfg.Redis.DedupTTL)
	assert.Zero(t, cfg.Session.IdleTTL)
	assert.Equal(t, "You are 🤖 Mannuni, a helpful AI assistant created by thexcomrade.", cfg.SystemPrompt())
}

func TestLoadConfig_YAMLAndEnvOverride(t *testing.T) {
	clearEnv(t)
	path := writeYAML(t, `
bot:
  name: Helper
ai:
  provider: gemini
  gemini_key: g-from-file
  max_tokens: 900
session:
  idle_ttl: 30m
  max_sessions: 1000
`)
	t.Setenv("GEMINI_API_KEY", "g-from-env")
	t.Setenv("MAX_TOKENS", "1200")

	cfg, err := LoadConfig(path, false)
	require.NoError(t, err)
	assert.Equal(t, "Helper", cfg.Bot.Name)
	assert.Equal(t, "gemini", cfg.AI.Provider)
	assert.Equal(t, "g-from-env", cfg.AI.GeminiKey)
	assert.Equal(t, 1200, cfg.AI.MaxTokens)
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleTTL)
	assert.Equal(t, 1000, cfg.Session.MaxSessions)
}

func TestLoadConfig_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		dev  bool
	}{
		{name: "no provider", yaml: "bot: {name: x}"},
		{name: "missing key for provider", yaml: "ai: {provider: anthropic}"},
		{name: "unknown provider", yaml: "ai: {provider: llama, openai_key: k}"},
		{name: "noop outside dev", yaml: "ai: {provider: noop}"},
		{name: "short admin secret", yaml: "ai: {openai_key: k}\nadmin: {enabled: true, jwt_secret: short}"},
		{name: "bad webhook path", yaml: "ai: {openai_key: k}\nhttp: {webhook_path: whatsapp}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			_, err := LoadConfig(writeYAML(t, tt.yaml), tt.dev)
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_NoopInDev(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadConfig(writeYAML(t, "ai: {provider: NOOP}"), true)
	require.NoError(t, err)
	assert.Equal(t, "noop", cfg.AI.Provider)
	assert.True(t, cfg.Runtime.Dev)
}

func TestLoadConfig_BadYAML(t *testing.T) {
	clearEnv(t)
	_, err := LoadConfig(writeYAML(t, "ai: [unclosed"), false)
	assert.Error(t, err)
}
