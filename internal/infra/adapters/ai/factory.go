package ai

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"ai-chat-bridge/internal/config"
	"ai-chat-bridge/internal/domain"
	"ai-chat-bridge/internal/domain/ports/adapter"
)

// NewProvider builds the configured provider and wraps it with the call guard.
func NewProvider(ctx context.Context, cfg config.AIConfig, media adapter.MediaFetcher, logger *zerolog.Logger) (adapter.Provider, error) {
	opts := GenOptions{
		Model:           cfg.Model,
		VisionModel:     cfg.VisionModel,
		MaxTokens:       cfg.MaxTokens,
		VisionMaxTokens: cfg.VisionMaxTokens,
		Temperature:     cfg.Temperature,
		MaxRetries:      cfg.MaxRetries,
	}

	var (
		p   adapter.Provider
		err error
	)
	switch cfg.Provider {
	case ProviderOpenAI:
		p, err = NewOpenAIAdapter(cfg.OpenAIKey, cfg.OpenAIBaseURL, opts, media)
	case ProviderGemini:
		p, err = NewGeminiAdapter(ctx, cfg.GeminiKey, cfg.GeminiURL, opts, media)
	case ProviderAnthropic:
		p, err = NewAnthropicAdapter(cfg.AnthropicKey, opts, media)
	case ProviderNoop:
		p = NewNoopAIAdapter(logger)
	case "":
		return nil, domain.ErrNoProvider
	default:
		return nil, fmt.Errorf("unknown ai provider %q: %w", cfg.Provider, domain.ErrInvalidArgument)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s provider: %w", cfg.Provider, err)
	}

	logger.Info().
		Str("provider", p.Name()).
		Str("model", p.Model()).
		Int("concurrent_limit", cfg.ConcurrentLimit).
		Msg("ai provider ready")
	return NewGuardedAI(p, cfg.ConcurrentLimit, cfg.MaxRetries), nil
}
