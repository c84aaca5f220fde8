package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"ai-chat-bridge/internal/domain/ports/adapter"
)

var _ adapter.Provider = (*NoopAIAdapter)(nil)

// NoopAIAdapter implements adapter.Provider for local/dev testing.
// It logs prompts instead of sending real AI requests.
type NoopAIAdapter struct {
	log   *zerolog.Logger
	delay time.Duration
}

func NewNoopAIAdapter(logger *zerolog.Logger) *NoopAIAdapter {
	return &NoopAIAdapter{log: logger, delay: 100 * time.Millisecond}
}

func (a *NoopAIAdapter) Name() string  { return ProviderNoop }
func (a *NoopAIAdapter) Model() string { return "noop-ai-model" }

func (a *NoopAIAdapter) Complete(ctx context.Context, messages []adapter.Message) (string, error) {
	if err := a.wait(ctx); err != nil {
		return "", err
	}
	a.log.Debug().Int("messages", len(messages)).Msg("[noop-ai] complete")
	if len(messages) == 0 {
		return "This is a noop AI response.", nil
	}
	return fmt.Sprintf("This is a noop AI response to %d message(s).", len(messages)), nil
}

func (a *NoopAIAdapter) Describe(ctx context.Context, mediaURL string) (string, error) {
	if err := a.wait(ctx); err != nil {
		return "", err
	}
	a.log.Debug().Str("media_url", mediaURL).Msg("[noop-ai] describe")
	return "An image the noop provider did not look at.", nil
}

// Simulate slight processing time and respect ctx
func (a *NoopAIAdapter) wait(ctx context.Context) error {
	select {
	case <-time.After(a.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
