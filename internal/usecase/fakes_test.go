//go:build !integration

package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"ai-chat-bridge/internal/domain/ports/adapter"
	"ai-chat-bridge/internal/infra/memory"
)

// ---- Fakes ----

type fakeCompletion struct {
	mu    sync.Mutex
	reply string
	err   error
	block bool // wait for ctx cancellation
	calls [][]adapter.Message
}

func (f *fakeCompletion) Complete(ctx context.Context, messages []adapter.Message) (string, error) {
	f.mu.Lock()
	cp := make([]adapter.Message, len(messages))
	copy(cp, messages)
	f.calls = append(f.calls, cp)
	reply, err, block := f.reply, f.err, f.block
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return reply, err
}

func (f *fakeCompletion) last() []adapter.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return nil
	}
	return f.calls[len(f.calls)-1]
}

func (f *fakeCompletion) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeVision struct {
	desc string
	err  error
	urls []string
}

func (f *fakeVision) Describe(ctx context.Context, mediaURL string) (string, error) {
	f.urls = append(f.urls, mediaURL)
	return f.desc, f.err
}

type recordingComposer struct {
	reqs  []ComposeRequest
	reply string
	err   error
}

func (r *recordingComposer) Compose(ctx context.Context, req ComposeRequest) (string, error) {
	r.reqs = append(r.reqs, req)
	return r.reply, r.err
}

type countingTokens struct{ n int }

func (c *countingTokens) Count(messages []adapter.Message) int {
	c.n++
	return len(messages) * 10
}

var errBoom = errors.New("boom")

// ---- helpers ----

const testSystemPrompt = "You are Bot, a helpful AI assistant created by tests."

func nopLogger() *zerolog.Logger { l := zerolog.Nop(); return &l }

func fixedClock() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }

func newStore() *memory.SessionStore { return memory.NewSessionStore(testSystemPrompt) }

func testTexts() Texts {
	return NewTexts(Identity{Name: "Bot", Creator: "by tests", Version: "1.0", PoweredBy: "stub"})
}
