package ai

import (
	"context"
	"errors"
	"time"

	"ai-chat-bridge/internal/domain"
	"ai-chat-bridge/internal/domain/ports/adapter"
	"ai-chat-bridge/internal/infra/metrics"
)

// Compile-time check
var _ adapter.Provider = (*guardedAI)(nil)

// retryClassifier is implemented by adapters whose SDK does not retry on its own.
type retryClassifier interface {
	Retryable(err error) bool
}

// guardedAI bounds concurrent provider calls, records their latency and
// outcome, and reports failures as *domain.CollaboratorError.
type guardedAI struct {
	inner   adapter.Provider
	sem     chan struct{}
	retries int
	backoff time.Duration
}

// NewGuardedAI wraps inner. maxConcurrent <= 0 disables the limit; retries
// apply only to adapters that classify their own transient errors.
func NewGuardedAI(inner adapter.Provider, maxConcurrent, retries int) adapter.Provider {
	g := &guardedAI{inner: inner, backoff: 250 * time.Millisecond}
	if maxConcurrent > 0 {
		g.sem = make(chan struct{}, maxConcurrent)
	}
	if _, ok := inner.(retryClassifier); ok && retries > 0 {
		g.retries = retries
	}
	return g
}

func (g *guardedAI) Name() string  { return g.inner.Name() }
func (g *guardedAI) Model() string { return g.inner.Model() }

func (g *guardedAI) Complete(ctx context.Context, messages []adapter.Message) (string, error) {
	out, err := g.call(ctx, domain.ServiceCompletion, func(ctx context.Context) (string, error) {
		return g.inner.Complete(ctx, messages)
	})
	if err != nil {
		return "", domain.NewCompletionError(err)
	}
	return out, nil
}

func (g *guardedAI) Describe(ctx context.Context, mediaURL string) (string, error) {
	out, err := g.call(ctx, domain.ServiceVision, func(ctx context.Context) (string, error) {
		return g.inner.Describe(ctx, mediaURL)
	})
	if err != nil {
		return "", domain.NewVisionError(err)
	}
	return out, nil
}

func (g *guardedAI) call(ctx context.Context, service string, fn func(context.Context) (string, error)) (string, error) {
	if err := g.acquire(ctx); err != nil {
		return "", err
	}
	defer g.release()

	var (
		out string
		err error
	)
	for attempt := 0; ; attempt++ {
		start := time.Now()
		out, err = fn(ctx)
		metrics.ObserveCall(g.inner.Name(), service, time.Since(start).Milliseconds(), err == nil)
		if err == nil || attempt >= g.retries || !g.retryable(err) {
			return out, err
		}
		metrics.IncRetry(g.inner.Name(), service)
		select {
		case <-time.After(g.backoff << attempt):
		case <-ctx.Done():
			return "", errors.Join(err, ctx.Err())
		}
	}
}

func (g *guardedAI) retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	rc, ok := g.inner.(retryClassifier)
	return ok && rc.Retryable(err)
}

func (g *guardedAI) acquire(ctx context.Context) error {
	if g.sem == nil {
		return nil
	}
	select {
	case g.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *guardedAI) release() {
	if g.sem != nil {
		<-g.sem
	}
}
