package application

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"ai-chat-bridge/internal/domain"
	"ai-chat-bridge/internal/domain/model"
	"ai-chat-bridge/internal/domain/ports/repository"
	"ai-chat-bridge/internal/infra/logging"
	"ai-chat-bridge/internal/infra/metrics"
)

const usageSaveTimeout = 2 * time.Second

// Bridge is what every channel adapter talks to. It drops provider retries,
// routes the message and records what happened. Channel adapters only
// forward Reply.Text.
type Bridge struct {
	Router   RouterIface
	Sessions SessionAdmin
	Guard    repository.DeliveryGuard   // optional
	Usage    repository.UsageRepository // optional
	DedupTTL time.Duration

	log     *zerolog.Logger
	devMode bool
	now     func() time.Time
}

func NewBridge(
	router RouterIface,
	sessions SessionAdmin,
	guard repository.DeliveryGuard,
	usage repository.UsageRepository,
	dedupTTL time.Duration,
	logger *zerolog.Logger,
	devMode bool,
) *Bridge {
	return &Bridge{
		Router:   router,
		Sessions: sessions,
		Guard:    guard,
		Usage:    usage,
		DedupTTL: dedupTTL,
		log:      logger,
		devMode:  devMode,
		now:      time.Now,
	}
}

// Deliver answers msg once. A redelivered MessageID returns
// domain.ErrDuplicateMessage and no reply should be sent.
func (b *Bridge) Deliver(ctx context.Context, msg model.Inbound) (model.Reply, error) {
	ctx = logging.WithChannel(ctx, string(msg.Channel))
	log := logging.With(ctx, b.log)

	if b.Guard != nil && msg.MessageID != "" {
		first, err := b.Guard.FirstSeen(ctx, string(msg.Channel)+":"+msg.MessageID, b.DedupTTL)
		switch {
		case err != nil:
			// fail open
			log.Warn().Err(err).Msg("dedup check failed")
		case !first:
			metrics.IncDuplicate(string(msg.Channel))
			log.Info().Str("message_id", msg.MessageID).Msg("duplicate delivery ignored")
			return model.Reply{}, domain.ErrDuplicateMessage
		}
	}

	reply := b.Router.Handle(ctx, msg)

	metrics.IncMessage(string(msg.Channel), string(reply.Route), reply.Failed)
	metrics.ObserveReply(string(reply.Route), reply.Elapsed.Milliseconds())
	b.record(ctx, log, msg, reply)
	return reply, nil
}

func (b *Bridge) record(ctx context.Context, log *zerolog.Logger, msg model.Inbound, reply model.Reply) {
	if b.Usage == nil {
		return
	}
	ev := &model.UsageEvent{
		ID:         ulid.Make().String(),
		Channel:    msg.Channel,
		Sender:     logging.Redact(msg.SenderID, false),
		Route:      reply.Route,
		Style:      reply.Style.String(),
		HasMedia:   msg.HasMedia(),
		Failed:     reply.Failed,
		LatencyMs:  reply.Elapsed.Milliseconds(),
		OccurredAt: b.now().UTC(),
	}
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), usageSaveTimeout)
	defer cancel()
	if err := b.Usage.Save(saveCtx, ev); err != nil {
		log.Warn().Err(err).Msg("usage event not recorded")
	}
}

// History returns the stored turns of a user for the admin API.
func (b *Bridge) History(userID string) ([]model.Turn, error) {
	turns, ok := b.Sessions.Peek(userID)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return turns, nil
}

// ResetSession drops a user's history on operator request.
func (b *Bridge) ResetSession(userID string) {
	b.Sessions.Reset(userID)
	b.log.Info().Str("user_id", logging.Redact(userID, b.devMode)).Msg("session reset by admin")
}

// ActiveSessions reports how many conversations are held in memory.
func (b *Bridge) ActiveSessions() int { return b.Sessions.Len() }

// UsageByRoute aggregates the usage ledger. Without a ledger it reports nothing.
func (b *Bridge) UsageByRoute(ctx context.Context) (map[model.Route]int64, error) {
	if b.Usage == nil {
		return map[model.Route]int64{}, nil
	}
	return b.Usage.CountByRoute(ctx)
}
