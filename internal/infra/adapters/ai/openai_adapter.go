package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"
	oaioption "github.com/openai/openai-go/v2/option"

	"ai-chat-bridge/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.Provider = (*OpenAIAdapter)(nil)

const (
	defaultOpenAIModel       = "gpt-4"
	defaultOpenAIVisionModel = "gpt-4o"
	visionPrompt             = "Describe this image in detail"
)

// OpenAIAdapter implements adapter.Provider using the Chat Completions API.
// Vision requests carry the image inline as a base64 data URL, so provider
// media URLs that need credentials never leave the bridge.
type OpenAIAdapter struct {
	client      openai.Client
	model       string
	visionModel string
	opts        GenOptions
	media       adapter.MediaFetcher
}

func NewOpenAIAdapter(apiKey, baseURL string, opts GenOptions, media adapter.MediaFetcher) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key empty")
	}
	reqOpts := []oaioption.RequestOption{
		oaioption.WithAPIKey(apiKey),
		oaioption.WithMaxRetries(opts.MaxRetries),
	}
	if baseURL != "" {
		// any OpenAI-compatible gateway
		reqOpts = append(reqOpts, oaioption.WithBaseURL(baseURL))
	}
	return &OpenAIAdapter{
		client:      openai.NewClient(reqOpts...),
		model:       modelOrDefault(opts.Model, defaultOpenAIModel),
		visionModel: modelOrDefault(opts.VisionModel, defaultOpenAIVisionModel),
		opts:        opts,
		media:       media,
	}, nil
}

func (o *OpenAIAdapter) Name() string  { return ProviderOpenAI }
func (o *OpenAIAdapter) Model() string { return o.model }

func (o *OpenAIAdapter) Complete(ctx context.Context, messages []adapter.Message) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("openai: no messages")
	}
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(o.model),
		Messages:    toOpenAIMessages(messages),
		MaxTokens:   openai.Int(int64(o.opts.MaxTokens)),
		Temperature: openai.Float(o.opts.Temperature),
	})
	if err != nil {
		return "", err
	}
	return firstChoice(resp)
}

func (o *OpenAIAdapter) Describe(ctx context.Context, mediaURL string) (string, error) {
	if o.media == nil {
		return "", errors.New("openai: no media fetcher")
	}
	m, err := o.media.Fetch(ctx, mediaURL)
	if err != nil {
		return "", err
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", m.ContentType, base64.StdEncoding.EncodeToString(m.Data))

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.visionModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(visionPrompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL}),
			}),
		},
		MaxTokens: openai.Int(int64(o.opts.VisionMaxTokens)),
	})
	if err != nil {
		return "", err
	}
	return firstChoice(resp)
}

// --- internal ---

func toOpenAIMessages(msgs []adapter.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch strings.ToLower(m.Role) {
		case "system":
			out = append(out, openai.SystemMessage(m.Content))
		case "assistant":
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

func firstChoice(resp *openai.ChatCompletion) (string, error) {
	if resp == nil {
		return "", errors.New("openai: empty response")
	}
	for _, c := range resp.Choices {
		if c.Message.Content != "" {
			return c.Message.Content, nil
		}
	}
	return "", errors.New("openai: no choice content")
}
