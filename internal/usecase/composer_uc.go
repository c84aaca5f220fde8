// File: internal/usecase/composer_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"ai-chat-bridge/internal/domain"
	"ai-chat-bridge/internal/domain/model"
	"ai-chat-bridge/internal/domain/ports/adapter"
	"ai-chat-bridge/internal/domain/ports/repository"
	"ai-chat-bridge/internal/infra/logging"
	"ai-chat-bridge/internal/infra/metrics"
)

// Compile-time check
var _ ComposerUseCase = (*composerUC)(nil)

const (
	timestampLayout  = "2006-01-02 15:04:05"
	imageContextTag  = "Image context: "
	visionErrorLimit = 200
)

// ComposeRequest is one prompt to build and answer.
type ComposeRequest struct {
	UserID   string
	Text     string
	Style    model.Style // StyleNone leaves Text as is
	MediaURL string      // optional single attachment
}

type ComposerUseCase interface {
	// Compose records the composed prompt in the user's session, asks the
	// completion service and records its answer. A failing completion
	// returns *domain.CollaboratorError and leaves no assistant turn.
	Compose(ctx context.Context, req ComposeRequest) (string, error)
}

type composerUC struct {
	sessions   repository.SessionStore
	completion adapter.CompletionService
	vision     adapter.VisionService // nil disables image understanding
	tokens     adapter.TokenCounter  // optional
	provider   string
	timeout    time.Duration
	now        func() time.Time
	log        *zerolog.Logger
	devMode    bool
}

// ComposerOption tweaks a composer; used mainly by tests.
type ComposerOption func(*composerUC)

func WithComposerClock(now func() time.Time) ComposerOption {
	return func(c *composerUC) { c.now = now }
}

func WithTokenCounter(tc adapter.TokenCounter, provider string) ComposerOption {
	return func(c *composerUC) { c.tokens, c.provider = tc, provider }
}

// WithCallTimeout bounds each collaborator call. Zero means only the caller's deadline applies.
func WithCallTimeout(d time.Duration) ComposerOption {
	return func(c *composerUC) { c.timeout = d }
}

func NewComposerUseCase(
	sessions repository.SessionStore,
	completion adapter.CompletionService,
	vision adapter.VisionService,
	logger *zerolog.Logger,
	devMode bool,
	opts ...ComposerOption,
) *composerUC {
	c := &composerUC{
		sessions:   sessions,
		completion: completion,
		vision:     vision,
		now:        time.Now,
		log:        logger,
		devMode:    devMode,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *composerUC) Compose(ctx context.Context, req ComposeRequest) (string, error) {
	log := logging.With(ctx, c.log)
	defer logging.TraceDuration(log, "Composer.Compose")()

	text := req.Text
	if req.MediaURL != "" {
		text = text + "\n\n" + imageContextTag + c.describe(ctx, log, req.MediaURL)
	}
	text = req.Style.Apply(text)

	c.sessions.Append(req.UserID, model.RoleUser, c.now().Format(timestampLayout)+"\n\n"+text)
	msgs := toMessages(c.sessions.GetOrCreate(req.UserID))
	if c.tokens != nil {
		metrics.ObservePromptTokens(c.provider, c.tokens.Count(msgs))
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()
	reply, err := c.completion.Complete(callCtx, msgs)
	if err == nil && strings.TrimSpace(reply) == "" {
		err = domain.ErrEmptyReply
	}
	if err != nil {
		log.Error().Err(err).
			Str("user", logging.Redact(req.UserID, c.devMode)).
			Str("text", logging.Truncate(req.Text, 100)).
			Str("style", req.Style.String()).
			Msg("completion failed")
		var ce *domain.CollaboratorError
		if errors.As(err, &ce) {
			return "", ce
		}
		return "", domain.NewCompletionError(err)
	}

	c.sessions.Append(req.UserID, model.RoleAssistant, reply)
	return reply, nil
}

// describe never fails: a broken image must not block the rest of the turn.
func (c *composerUC) describe(ctx context.Context, log *zerolog.Logger, mediaURL string) string {
	if c.vision == nil {
		return "🚫 Error analyzing image: image understanding is not configured"
	}
	callCtx, cancel := c.callContext(ctx)
	defer cancel()
	desc, err := c.vision.Describe(callCtx, mediaURL)
	if err == nil && strings.TrimSpace(desc) == "" {
		err = domain.ErrEmptyReply
	}
	if err != nil {
		log.Warn().Err(err).Msg("image analysis failed")
		cause := err
		var ce *domain.CollaboratorError
		if errors.As(err, &ce) {
			cause = ce.Err
		}
		return fmt.Sprintf("🚫 Error analyzing image: %s", logging.Truncate(cause.Error(), visionErrorLimit))
	}
	return desc
}

func (c *composerUC) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func toMessages(turns []model.Turn) []adapter.Message {
	out := make([]adapter.Message, 0, len(turns))
	for _, t := range turns {
		out = append(out, adapter.Message{Role: string(t.Role), Content: t.Content})
	}
	return out
}
