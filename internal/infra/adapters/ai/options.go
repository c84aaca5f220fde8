package ai

import (
	"strings"

	"ai-chat-bridge/internal/domain/ports/adapter"
)

const (
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderNoop      = "noop"
)

// GenOptions are the generation knobs shared by every provider.
// Empty models fall back to each adapter's default.
type GenOptions struct {
	Model           string
	VisionModel     string
	MaxTokens       int
	VisionMaxTokens int
	Temperature     float64
	MaxRetries      int // SDK-level retries where the SDK supports them
}

func modelOrDefault(model, def string) string {
	if strings.TrimSpace(model) != "" {
		return model
	}
	return def
}

// splitSystem joins leading system turns into one instruction for providers
// that take it out of band.
func splitSystem(msgs []adapter.Message) (string, []adapter.Message) {
	var sys []string
	i := 0
	for ; i < len(msgs) && strings.ToLower(msgs[i].Role) == "system"; i++ {
		sys = append(sys, msgs[i].Content)
	}
	return strings.Join(sys, "\n\n"), msgs[i:]
}
