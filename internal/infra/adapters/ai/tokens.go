package ai

import (
	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog"

	"ai-chat-bridge/internal/domain/ports/adapter"
)

var _ adapter.TokenCounter = (*TokenCounter)(nil)

// Per-message framing overhead of the chat format, plus the reply primer.
const (
	tokensPerMessage = 4
	tokensPerReply   = 2
)

// TokenCounter estimates prompt size with the model's BPE encoding. When no
// encoding can be loaded (offline, unknown model) it falls back to roughly
// four bytes per token.
type TokenCounter struct {
	enc *tiktoken.Tiktoken
}

func NewTokenCounter(model string, logger *zerolog.Logger) *TokenCounter {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
	}
	if err != nil {
		logger.Warn().Err(err).Str("model", model).Msg("token encoding unavailable, using estimate")
		return &TokenCounter{}
	}
	return &TokenCounter{enc: enc}
}

func (t *TokenCounter) Count(messages []adapter.Message) int {
	n := tokensPerReply
	for _, m := range messages {
		n += tokensPerMessage + t.count(m.Role) + t.count(m.Content)
	}
	return n
}

func (t *TokenCounter) count(s string) int {
	if s == "" {
		return 0
	}
	if t.enc == nil {
		return (len(s) + 3) / 4
	}
	return len(t.enc.Encode(s, nil, nil))
}
