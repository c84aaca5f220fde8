package adapter

import "context"

// Message is one entry of the prompt sent to a completion provider.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// Usage for a single completion call, when the provider reports it.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// CompletionService turns an ordered multi-turn prompt into reply text.
// Failures are network, auth or quota problems of the provider.
type CompletionService interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// VisionService produces a textual description of the image at mediaURL.
type VisionService interface {
	Describe(ctx context.Context, mediaURL string) (string, error)
}

// Provider is a named backend offering both services. Adapters in
// internal/infra/adapters/ai implement it.
type Provider interface {
	CompletionService
	VisionService
	Name() string
	Model() string
}

// TokenCounter estimates prompt size for accounting.
type TokenCounter interface {
	Count(messages []Message) int
}
