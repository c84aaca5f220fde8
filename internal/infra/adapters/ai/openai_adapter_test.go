package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-chat-bridge/internal/config"
	"ai-chat-bridge/internal/domain"
	"ai-chat-bridge/internal/domain/ports/adapter"
)

func nopLogger() *zerolog.Logger { l := zerolog.Nop(); return &l }

type stubFetcher struct{ media *adapter.Media }

func (s stubFetcher) Fetch(ctx context.Context, url string) (*adapter.Media, error) {
	return s.media, nil
}

// fakeOpenAI answers chat completions with a fixed text and keeps the request bodies.
type fakeOpenAI struct {
	mu     sync.Mutex
	bodies []map[string]any
	status int
}

func (f *fakeOpenAI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
		http.NotFound(w, r)
		return
	}
	b, _ := io.ReadAll(r.Body)
	var body map[string]any
	_ = json.Unmarshal(b, &body)
	f.mu.Lock()
	f.bodies = append(f.bodies, body)
	status := f.status
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"error":{"message":"nope","type":"invalid_request_error"}}`))
		return
	}
	_, _ = w.Write([]byte(`{
		"id": "chatcmpl-1",
		"object": "chat.completion",
		"created": 1700000000,
		"model": "gpt-4",
		"choices": [{"index": 0, "finish_reason": "stop",
			"message": {"role": "assistant", "content": "TCP is a protocol."}}]
	}`))
}

func (f *fakeOpenAI) last() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[len(f.bodies)-1]
}

func newTestOpenAI(t *testing.T, fake *fakeOpenAI, media adapter.MediaFetcher) *OpenAIAdapter {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	o, err := NewOpenAIAdapter("sk-test", srv.URL+"/v1/", GenOptions{
		MaxTokens: 1500, VisionMaxTokens: 500, Temperature: 0.7,
	}, media)
	require.NoError(t, err)
	return o
}

func TestOpenAI_Complete(t *testing.T) {
	fake := &fakeOpenAI{}
	o := newTestOpenAI(t, fake, nil)

	got, err := o.Complete(context.Background(), []adapter.Message{
		{Role: "system", Content: "You are Bot."},
		{Role: "user", Content: "what is TCP"},
	})
	require.NoError(t, err)
	assert.Equal(t, "TCP is a protocol.", got)

	body := fake.last()
	assert.Equal(t, "gpt-4", body["model"])
	assert.EqualValues(t, 1500, body["max_tokens"])
	assert.InDelta(t, 0.7, body["temperature"], 1e-9)
	msgs, ok := body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "user", msgs[1].(map[string]any)["role"])
}

func TestOpenAI_DescribeSendsDataURL(t *testing.T) {
	fake := &fakeOpenAI{}
	o := newTestOpenAI(t, fake, stubFetcher{media: &adapter.Media{Data: []byte("png!"), ContentType: "image/png"}})

	_, err := o.Describe(context.Background(), "https://api.twilio.com/media/1")
	require.NoError(t, err)

	body := fake.last()
	assert.Equal(t, "gpt-4o", body["model"])
	assert.EqualValues(t, 500, body["max_tokens"])
	raw, _ := json.Marshal(body["messages"])
	assert.Contains(t, string(raw), "data:image/png;base64,cG5nIQ==")
	assert.Contains(t, string(raw), visionPrompt)
	assert.NotContains(t, string(raw), "api.twilio.com")
}

func TestOpenAI_HTTPErrorSurfaces(t *testing.T) {
	fake := &fakeOpenAI{status: http.StatusUnauthorized}
	o := newTestOpenAI(t, fake, nil)

	_, err := o.Complete(context.Background(), []adapter.Message{{Role: "user", Content: "hi"}})
	require.Error(t, err)
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(context.Background(), config.AIConfig{Provider: ProviderNoop, ConcurrentLimit: 2}, nil, nopLogger())
	require.NoError(t, err)
	assert.Equal(t, ProviderNoop, p.Name())

	_, err = NewProvider(context.Background(), config.AIConfig{}, nil, nopLogger())
	assert.ErrorIs(t, err, domain.ErrNoProvider)

	_, err = NewProvider(context.Background(), config.AIConfig{Provider: "llama"}, nil, nopLogger())
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = NewProvider(context.Background(), config.AIConfig{Provider: ProviderOpenAI}, nil, nopLogger())
	assert.Error(t, err, "missing key")

	p, err = NewProvider(context.Background(), config.AIConfig{Provider: ProviderAnthropic, AnthropicKey: "k"}, nil, nopLogger())
	require.NoError(t, err)
	assert.Equal(t, defaultAnthropicModel, p.Model())
}
