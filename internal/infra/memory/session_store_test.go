//go:build !integration

package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"ai-chat-bridge/internal/domain/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testPrompt = "You are Bot, a helpful AI assistant."

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock { return &fakeClock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestGetOrCreate_SeedsSystemTurn(t *testing.T) {
	s := NewSessionStore(testPrompt)

	turns := s.GetOrCreate("whatsapp:+100")
	require.Len(t, turns, 1)
	assert.Equal(t, model.RoleSystem, turns[0].Role)
	assert.Equal(t, testPrompt, turns[0].Content)
	assert.NotEmpty(t, turns[0].ID)
	assert.Equal(t, 1, s.Len())

	again := s.GetOrCreate("whatsapp:+100")
	assert.Equal(t, turns[0].ID, again[0].ID, "second call must return the same session")
}

func TestReset_FullAmnesia(t *testing.T) {
	s := NewSessionStore(testPrompt)
	s.Append("u1", model.RoleUser, "hello there")
	s.Append("u1", model.RoleAssistant, "hi")
	s.AwaitStyle("u1", "what is TCP")

	s.Reset("u1")
	turns := s.GetOrCreate("u1")
	require.Len(t, turns, 1)
	assert.Equal(t, model.RoleSystem, turns[0].Role)
	assert.False(t, s.HasPending("u1"))
}

func TestReset_Idempotent(t *testing.T) {
	s := NewSessionStore(testPrompt)
	assert.NotPanics(t, func() {
		s.Reset("nobody")
		s.Reset("nobody")
	})
	s.GetOrCreate("u1")
	s.Reset("u1")
	s.Reset("u1")
	assert.Equal(t, 0, s.Len())
}

func TestAppend_EvictsOldestNonSystemTurn(t *testing.T) {
	for _, n := range []int{6, 7, 10, 25} {
		t.Run(fmt.Sprintf("%d appends", n), func(t *testing.T) {
			s := NewSessionStore(testPrompt)
			sys := s.GetOrCreate("u")[0]
			for i := 0; i < n; i++ {
				s.Append("u", model.RoleUser, fmt.Sprintf("m%d", i))
			}
			turns := s.GetOrCreate("u")
			require.Len(t, turns, model.MaxTurns)
			assert.Equal(t, sys.ID, turns[0].ID, "system turn must stay pinned")
			for i := 1; i < model.MaxTurns; i++ {
				want := fmt.Sprintf("m%d", n-(model.MaxTurns-i))
				assert.Equal(t, want, turns[i].Content)
				assert.Greater(t, turns[i].Seq, turns[i-1].Seq)
			}
		})
	}
}

func TestPending_RoundTrip(t *testing.T) {
	s := NewSessionStore(testPrompt)

	_, ok := s.TakePending("u")
	assert.False(t, ok, "no session means nothing pending")

	s.AwaitStyle("u", "what is TCP")
	turns := s.GetOrCreate("u")
	assert.Equal(t, "what is TCP", turns[len(turns)-1].Content)
	assert.Equal(t, model.RoleUser, turns[len(turns)-1].Role)
	assert.True(t, s.HasPending("u"))

	q, ok := s.TakePending("u")
	require.True(t, ok)
	assert.Equal(t, "what is TCP", q)
	_, ok = s.TakePending("u")
	assert.False(t, ok, "pending question is consumed once")
}

func TestPending_SurvivesEvictionOfItsTurn(t *testing.T) {
	s := NewSessionStore(testPrompt)
	s.AwaitStyle("u", "orphan?")
	for i := 0; i < model.MaxTurns; i++ {
		s.Append("u", model.RoleAssistant, "filler")
	}
	q, ok := s.TakePending("u")
	require.True(t, ok)
	assert.Equal(t, "orphan?", q)
}

func TestSnapshotIsACopy(t *testing.T) {
	s := NewSessionStore(testPrompt)
	turns := s.GetOrCreate("u")
	turns[0].Content = "mutated"
	assert.Equal(t, testPrompt, s.GetOrCreate("u")[0].Content)
}

func TestPeek_DoesNotCreate(t *testing.T) {
	s := NewSessionStore(testPrompt)
	_, ok := s.Peek("ghost")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestSweep_DropsIdleSessions(t *testing.T) {
	clk := newFakeClock()
	s := NewSessionStore(testPrompt, WithIdleTTL(time.Hour), WithClock(clk.Now))
	s.GetOrCreate("old")
	clk.Advance(50 * time.Minute)
	s.GetOrCreate("fresh")
	clk.Advance(20 * time.Minute)

	assert.Equal(t, 1, s.Sweep())
	_, ok := s.Peek("old")
	assert.False(t, ok)
	_, ok = s.Peek("fresh")
	assert.True(t, ok)
}

func TestSweep_DisabledWithoutTTL(t *testing.T) {
	clk := newFakeClock()
	s := NewSessionStore(testPrompt, WithClock(clk.Now))
	s.GetOrCreate("u")
	clk.Advance(1000 * time.Hour)
	assert.Equal(t, 0, s.Sweep())
	assert.Equal(t, 1, s.Len())
}

func TestMaxSessions_DropsLeastRecentlyActive(t *testing.T) {
	clk := newFakeClock()
	s := NewSessionStore(testPrompt, WithMaxSessions(2), WithClock(clk.Now))
	s.GetOrCreate("a")
	clk.Advance(time.Second)
	s.GetOrCreate("b")
	clk.Advance(time.Second)
	s.Append("a", model.RoleUser, "still here")
	clk.Advance(time.Second)
	s.GetOrCreate("c")

	assert.Equal(t, 2, s.Len())
	_, ok := s.Peek("b")
	assert.False(t, ok, "b was least recently active")
	_, ok = s.Peek("a")
	assert.True(t, ok)
}

func TestRun_StopsOnCancel(t *testing.T) {
	s := NewSessionStore(testPrompt, WithIdleTTL(time.Millisecond))
	s.GetOrCreate("u")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx, time.Millisecond)
		close(done)
	}()
	require.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, time.Millisecond)
	cancel()
	<-done
}

func TestConcurrentAppendAndReset(t *testing.T) {
	s := NewSessionStore(testPrompt)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			user := fmt.Sprintf("u%d", w%2)
			for i := 0; i < 200; i++ {
				switch i % 50 {
				case 0:
					s.Reset(user)
				default:
					s.Append(user, model.RoleUser, "x")
				}
			}
		}(w)
	}
	wg.Wait()

	for _, u := range []string{"u0", "u1"} {
		turns := s.GetOrCreate(u)
		assert.LessOrEqual(t, len(turns), model.MaxTurns)
		assert.Equal(t, model.RoleSystem, turns[0].Role)
	}
}

func TestDeliveryGuard(t *testing.T) {
	g := NewDeliveryGuard()
	ctx := context.Background()

	first, err := g.FirstSeen(ctx, "SM1", time.Minute)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := g.FirstSeen(ctx, "SM1", time.Minute)
	require.NoError(t, err)
	assert.False(t, again)

	blank, err := g.FirstSeen(ctx, "", time.Minute)
	require.NoError(t, err)
	assert.True(t, blank, "messages without an id are never treated as duplicates")
}
