// File: internal/infra/adapters/ai/gemini_adapter.go
package ai

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"ai-chat-bridge/internal/domain/ports/adapter"
)

var _ adapter.Provider = (*GeminiAdapter)(nil)

const defaultGeminiModel = "gemini-2.0-flash"

type GeminiAdapter struct {
	client      *genai.Client
	model       string
	visionModel string
	opts        GenOptions
	media       adapter.MediaFetcher
}

// NewGeminiAdapter creates a Gemini adapter using the official SDK.
func NewGeminiAdapter(ctx context.Context, apiKey, baseURL string, opts GenOptions, media adapter.MediaFetcher) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	model := modelOrDefault(opts.Model, defaultGeminiModel)
	return &GeminiAdapter{
		client:      c,
		model:       model,
		visionModel: modelOrDefault(opts.VisionModel, model),
		opts:        opts,
		media:       media,
	}, nil
}

func (g *GeminiAdapter) Name() string  { return ProviderGemini }
func (g *GeminiAdapter) Model() string { return g.model }

func (g *GeminiAdapter) Complete(ctx context.Context, messages []adapter.Message) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("gemini: no messages")
	}
	system, rest := splitSystem(messages)
	if len(rest) == 0 || strings.ToLower(rest[len(rest)-1].Role) != "user" {
		return "", errors.New("gemini: last message must be from user")
	}

	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(g.opts.MaxTokens),
		Temperature:     genai.Ptr(float32(g.opts.Temperature)),
	}
	if system != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
	}

	chat, err := g.client.Chats.Create(ctx, g.model, cfg, toGenAIHistory(rest[:len(rest)-1]))
	if err != nil {
		return "", err
	}
	resp, err := chat.SendMessage(ctx, genai.Part{Text: rest[len(rest)-1].Content})
	if err != nil {
		return "", err
	}
	return responseText(resp), nil
}

func (g *GeminiAdapter) Describe(ctx context.Context, mediaURL string) (string, error) {
	if g.media == nil {
		return "", errors.New("gemini: no media fetcher")
	}
	m, err := g.media.Fetch(ctx, mediaURL)
	if err != nil {
		return "", err
	}
	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{Text: visionPrompt},
			{InlineData: &genai.Blob{MIMEType: m.ContentType, Data: m.Data}},
		},
	}}
	resp, err := g.client.Models.GenerateContent(ctx, g.visionModel, contents, &genai.GenerateContentConfig{
		MaxOutputTokens: int32(g.opts.VisionMaxTokens),
	})
	if err != nil {
		return "", err
	}
	return responseText(resp), nil
}

// Retryable reports rate limiting and server-side failures.
func (g *GeminiAdapter) Retryable(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
	}
	return false
}

// --- internal ---

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil && p.Text != "" {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

func toGenAIHistory(msgs []adapter.Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		role := genai.RoleUser
		if r := strings.ToLower(m.Role); r == "assistant" || r == "model" {
			role = genai.RoleModel
		}
		out = append(out, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}
	return out
}
