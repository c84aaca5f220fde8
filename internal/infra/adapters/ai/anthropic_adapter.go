package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	antoption "github.com/anthropics/anthropic-sdk-go/option"

	"ai-chat-bridge/internal/domain/ports/adapter"
)

var _ adapter.Provider = (*AnthropicAdapter)(nil)

const defaultAnthropicModel = "claude-3-5-haiku-latest"

// AnthropicAdapter implements adapter.Provider with the Messages API.
type AnthropicAdapter struct {
	client      anthropic.Client
	model       string
	visionModel string
	opts        GenOptions
	media       adapter.MediaFetcher
}

func NewAnthropicAdapter(apiKey string, opts GenOptions, media adapter.MediaFetcher) (*AnthropicAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("anthropic api key empty")
	}
	model := modelOrDefault(opts.Model, defaultAnthropicModel)
	return &AnthropicAdapter{
		client: anthropic.NewClient(
			antoption.WithAPIKey(apiKey),
			antoption.WithMaxRetries(opts.MaxRetries),
		),
		model:       model,
		visionModel: modelOrDefault(opts.VisionModel, model),
		opts:        opts,
		media:       media,
	}, nil
}

func (a *AnthropicAdapter) Name() string  { return ProviderAnthropic }
func (a *AnthropicAdapter) Model() string { return a.model }

func (a *AnthropicAdapter) Complete(ctx context.Context, messages []adapter.Message) (string, error) {
	system, rest := splitSystem(messages)
	if len(rest) == 0 {
		return "", errors.New("anthropic: no messages")
	}
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(a.model),
		MaxTokens:   int64(a.opts.MaxTokens),
		Messages:    toAnthropicMessages(rest),
		Temperature: anthropic.Float(a.opts.Temperature),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", err
	}
	return anthropicText(msg), nil
}

func (a *AnthropicAdapter) Describe(ctx context.Context, mediaURL string) (string, error) {
	if a.media == nil {
		return "", errors.New("anthropic: no media fetcher")
	}
	m, err := a.media.Fetch(ctx, mediaURL)
	if err != nil {
		return "", err
	}
	msg, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.visionModel),
		MaxTokens: int64(a.opts.VisionMaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewImageBlockBase64(m.ContentType, base64.StdEncoding.EncodeToString(m.Data)),
				anthropic.NewTextBlock(visionPrompt),
			),
		},
	})
	if err != nil {
		return "", err
	}
	return anthropicText(msg), nil
}

// --- internal ---

// toAnthropicMessages folds consecutive turns of the same role into one
// message; the Messages API expects user and assistant to alternate.
func toAnthropicMessages(msgs []adapter.Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(msgs))
	var (
		role  string
		parts []string
	)
	flush := func() {
		if len(parts) == 0 {
			return
		}
		block := anthropic.NewTextBlock(strings.Join(parts, "\n\n"))
		if role == "assistant" {
			out = append(out, anthropic.NewAssistantMessage(block))
		} else {
			out = append(out, anthropic.NewUserMessage(block))
		}
		parts = parts[:0]
	}
	for _, m := range msgs {
		r := "user"
		if strings.ToLower(m.Role) == "assistant" {
			r = "assistant"
		}
		if r != role {
			flush()
			role = r
		}
		parts = append(parts, m.Content)
	}
	flush()
	return out
}

func anthropicText(msg *anthropic.Message) string {
	if msg == nil {
		return ""
	}
	var sb strings.Builder
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(tb.Text)
		}
	}
	return sb.String()
}
