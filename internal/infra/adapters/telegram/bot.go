package telegram

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"ai-chat-bridge/internal/domain"
	"ai-chat-bridge/internal/domain/model"
	"ai-chat-bridge/internal/infra/logging"
	"ai-chat-bridge/internal/infra/worker"
)

// Telegram rejects longer messages.
const maxMessageRunes = 4096

// Deliverer is the application entry point for one inbound message.
type Deliverer interface {
	Deliver(ctx context.Context, msg model.Inbound) (model.Reply, error)
}

// botAPI is the part of *tgbotapi.BotAPI the adapter uses.
type botAPI interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Bot long-polls Telegram and hands every message to the bridge on a
// worker pool. Replies go back to the originating chat.
type Bot struct {
	api    botAPI
	bridge Deliverer
	pool   *worker.Pool
	log    *zerolog.Logger
}

func NewBot(token string, bridge Deliverer, pool *worker.Pool, logger *zerolog.Logger) (*Bot, error) {
	if bridge == nil {
		return nil, errors.New("bridge is nil")
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("username", api.Self.UserName).Msg("telegram bot authorized")
	return newBot(api, bridge, pool, logger), nil
}

func newBot(api botAPI, bridge Deliverer, pool *worker.Pool, logger *zerolog.Logger) *Bot {
	return &Bot{api: api, bridge: bridge, pool: pool, log: logger}
}

// Run polls until ctx is cancelled. The pool must already be started.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case up, ok := <-updates:
			if !ok {
				return nil
			}
			if up.Message == nil {
				continue
			}
			err := b.pool.SubmitWait(ctx, func(ctx context.Context) error {
				return b.handleUpdate(ctx, up)
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				b.log.Warn().Err(err).Int("update_id", up.UpdateID).Msg("telegram update dropped")
			}
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, up tgbotapi.Update) error {
	m := up.Message
	chatID := m.Chat.ID
	ctx = logging.WithChannel(ctx, string(model.ChannelTelegram))

	body := m.Text
	if body == "" {
		body = m.Caption
	}
	if m.IsCommand() && m.Command() == "start" {
		body = "hi"
	}

	msg := model.Inbound{
		MessageID:  strconv.Itoa(up.UpdateID),
		Channel:    model.ChannelTelegram,
		SenderID:   "telegram:" + strconv.FormatInt(chatID, 10),
		Body:       body,
		ReceivedAt: time.Unix(int64(m.Date), 0).UTC(),
	}
	if len(m.Photo) > 0 {
		// sizes are ascending; the last is the largest
		url, err := b.api.GetFileDirectURL(m.Photo[len(m.Photo)-1].FileID)
		if err != nil {
			l := logging.With(ctx, b.log)
			l.Warn().Err(err).Msg("telegram photo url lookup failed")
		} else {
			msg.MediaURL = url
		}
	}
	if strings.TrimSpace(msg.Body) == "" && msg.MediaURL == "" {
		return nil
	}

	reply, err := b.bridge.Deliver(ctx, msg)
	if errors.Is(err, domain.ErrDuplicateMessage) {
		return nil
	}
	if err != nil {
		return err
	}
	return b.send(chatID, reply.Text)
}

func (b *Bot) send(chatID int64, text string) error {
	for _, part := range chunk(text, maxMessageRunes) {
		if _, err := b.api.Send(tgbotapi.NewMessage(chatID, part)); err != nil {
			return &domain.CollaboratorError{Service: domain.ServiceDelivery, Err: err}
		}
	}
	return nil
}

// chunk splits s into pieces of at most n runes, preferring line breaks.
func chunk(s string, n int) []string {
	if s == "" {
		return nil
	}
	var out []string
	for utf8.RuneCountInString(s) > n {
		cut := runeOffset(s, n)
		if i := strings.LastIndexByte(s[:cut], '\n'); i > 0 {
			cut = i + 1
		}
		out = append(out, s[:cut])
		s = s[cut:]
	}
	return append(out, s)
}

func runeOffset(s string, n int) int {
	i := 0
	for off := range s {
		if i == n {
			return off
		}
		i++
	}
	return len(s)
}
