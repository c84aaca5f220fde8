// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Name    string `yaml:"name"`
	Creator string `yaml:"creator"`
	Version string `yaml:"version"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type HTTPConfig struct {
	Port            int           `yaml:"port"`
	WebhookPath     string        `yaml:"webhook_path"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type AdminConfig struct {
	Enabled   bool   `yaml:"enabled"`
	JWTSecret string `yaml:"jwt_secret"`
}

type SessionConfig struct {
	IdleTTL       time.Duration `yaml:"idle_ttl"`       // 0 keeps sessions for the process lifetime
	SweepInterval time.Duration `yaml:"sweep_interval"` // defaults to idle_ttl/2
	MaxSessions   int           `yaml:"max_sessions"`   // 0 = unlimited
}

type AIConfig struct {
	Provider        string        `yaml:"provider"` // openai | gemini | anthropic | noop
	OpenAIKey       string        `yaml:"openai_key"`
	OpenAIBaseURL   string        `yaml:"openai_base_url"`
	GeminiKey       string        `yaml:"gemini_key"`
	GeminiURL       string        `yaml:"gemini_url"`
	AnthropicKey    string        `yaml:"anthropic_key"`
	Model           string        `yaml:"model"`
	VisionModel     string        `yaml:"vision_model"`
	MaxTokens       int           `yaml:"max_tokens"`
	VisionMaxTokens int           `yaml:"vision_max_tokens"`
	Temperature     float64       `yaml:"temperature"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	MaxRetries      int           `yaml:"max_retries"`
	ConcurrentLimit int           `yaml:"concurrent_limit"` // max concurrent AI calls
}

type MediaConfig struct {
	Timeout  time.Duration `yaml:"timeout"`
	MaxBytes int64         `yaml:"max_bytes"`
}

type TwilioConfig struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
}

type TelegramConfig struct {
	Token   string `yaml:"token"`
	Workers int    `yaml:"workers"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	DedupTTL time.Duration `yaml:"dedup_ttl"`
}

type Config struct {
	Bot      BotConfig      `yaml:"bot"`
	Log      LogConfig      `yaml:"log"`
	HTTP     HTTPConfig     `yaml:"http"`
	Admin    AdminConfig    `yaml:"admin"`
	Session  SessionConfig  `yaml:"session"`
	AI       AIConfig       `yaml:"ai"`
	Media    MediaConfig    `yaml:"media"`
	Twilio   TwilioConfig   `yaml:"twilio"`
	Telegram TelegramConfig `yaml:"telegram"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file at path (a missing file is allowed), then
// the .env file, then environment overrides, applies defaults and validates.
func LoadConfig(path string, dev bool) (*Config, error) {
	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
			// env-only deployments are fine
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	cfg.Runtime.Dev = dev
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config) error {
	str := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	str(&cfg.Bot.Name, "BOT_NAME")
	str(&cfg.Bot.Creator, "CREATOR")
	str(&cfg.AI.Provider, "AI_PROVIDER")
	str(&cfg.AI.OpenAIKey, "OPENAI_API_KEY")
	str(&cfg.AI.GeminiKey, "GEMINI_API_KEY")
	str(&cfg.AI.AnthropicKey, "ANTHROPIC_API_KEY")
	str(&cfg.AI.Model, "AI_MODEL")
	str(&cfg.Twilio.AccountSID, "TWILIO_ACCOUNT_SID")
	str(&cfg.Twilio.AuthToken, "TWILIO_AUTH_TOKEN")
	str(&cfg.Telegram.Token, "TELEGRAM_BOT_TOKEN")
	str(&cfg.Database.URL, "DATABASE_URL")
	str(&cfg.Redis.URL, "REDIS_URL")
	str(&cfg.Admin.JWTSecret, "ADMIN_JWT_SECRET")

	if v := os.Getenv("MAX_TOKENS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MAX_TOKENS: %w", err)
		}
		cfg.AI.MaxTokens = n
	}
	if v := os.Getenv("PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		cfg.HTTP.Port = n
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Bot.Name == "" {
		cfg.Bot.Name = "🤖 Mannuni"
	}
	if cfg.Bot.Creator == "" {
		cfg.Bot.Creator = "created by thexcomrade"
	}
	if cfg.Bot.Version == "" {
		cfg.Bot.Version = "1.0"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 5000
	}
	if cfg.HTTP.WebhookPath == "" {
		cfg.HTTP.WebhookPath = "/whatsapp"
	}
	if cfg.HTTP.RequestTimeout <= 0 {
		cfg.HTTP.RequestTimeout = 60 * time.Second
	}
	if cfg.HTTP.ShutdownTimeout <= 0 {
		cfg.HTTP.ShutdownTimeout = 10 * time.Second
	}
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = detectProvider(cfg.AI)
	}
	cfg.AI.Provider = strings.ToLower(strings.TrimSpace(cfg.AI.Provider))
	if cfg.AI.MaxTokens <= 0 {
		cfg.AI.MaxTokens = 1500
	}
	if cfg.AI.VisionMaxTokens <= 0 {
		cfg.AI.VisionMaxTokens = 500
	}
	if cfg.AI.Temperature == 0 {
		cfg.AI.Temperature = 0.7
	}
	if cfg.AI.RequestTimeout <= 0 {
		cfg.AI.RequestTimeout = 45 * time.Second
	}
	if cfg.AI.MaxRetries < 0 {
		cfg.AI.MaxRetries = 0
	} else if cfg.AI.MaxRetries == 0 {
		cfg.AI.MaxRetries = 2
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 16
	}
	if cfg.Media.Timeout <= 0 {
		cfg.Media.Timeout = 10 * time.Second
	}
	if cfg.Media.MaxBytes <= 0 {
		cfg.Media.MaxBytes = 16 << 20
	}
	if cfg.Telegram.Workers <= 0 {
		cfg.Telegram.Workers = 8
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	cfg.Redis.DedupTTL = normalizeTTL(cfg.Redis.DedupTTL)
}

func detectProvider(ai AIConfig) string {
	switch {
	case ai.OpenAIKey != "":
		return "openai"
	case ai.GeminiKey != "":
		return "gemini"
	case ai.AnthropicKey != "":
		return "anthropic"
	default:
		return ""
	}
}

// Validate performs minimal sanity checks.
func (c *Config) Validate() error {
	switch c.AI.Provider {
	case "openai":
		if c.AI.OpenAIKey == "" {
			return errors.New("ai.openai_key (OPENAI_API_KEY) is required for provider openai")
		}
	case "gemini":
		if c.AI.GeminiKey == "" {
			return errors.New("ai.gemini_key (GEMINI_API_KEY) is required for provider gemini")
		}
	case "anthropic":
		if c.AI.AnthropicKey == "" {
			return errors.New("ai.anthropic_key (ANTHROPIC_API_KEY) is required for provider anthropic")
		}
	case "noop":
		if !c.Runtime.Dev {
			return errors.New("ai.provider noop is only allowed with --dev")
		}
	case "":
		return errors.New("no AI provider configured: set ai.openai_key, ai.gemini_key or ai.anthropic_key")
	default:
		return fmt.Errorf("unknown ai.provider %q", c.AI.Provider)
	}
	if c.Admin.Enabled && len(c.Admin.JWTSecret) < 16 {
		return errors.New("admin.jwt_secret must be at least 16 bytes when admin is enabled")
	}
	if !strings.HasPrefix(c.HTTP.WebhookPath, "/") {
		return fmt.Errorf("http.webhook_path must start with '/': %q", c.HTTP.WebhookPath)
	}
	return nil
}

// SystemPrompt is the fixed preamble seeded into every new conversation.
func (c *Config) SystemPrompt() string {
	return fmt.Sprintf("You are %s, a helpful AI assistant %s.", c.Bot.Name, c.Bot.Creator)
}

func normalizeTTL(d time.Duration) time.Duration {
	if d <= 0 {
		return 24 * time.Hour
	}
	return d
}
