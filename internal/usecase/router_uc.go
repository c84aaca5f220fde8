// File: internal/usecase/router_uc.go
package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"ai-chat-bridge/internal/domain/model"
	"ai-chat-bridge/internal/domain/ports/repository"
	"ai-chat-bridge/internal/infra/logging"
)

// Compile-time check
var _ RouterUseCase = (*routerUC)(nil)

const styleDelimiter = "style:"

// maxStyleCodeLen bounds what counts as a "short digit string".
const maxStyleCodeLen = 2

var greetings = map[string]struct{}{"hi": {}, "hello": {}, "hey": {}}

type RouterUseCase interface {
	// Handle classifies one inbound message and produces its reply text.
	// It never fails: collaborator errors become an apology.
	Handle(ctx context.Context, msg model.Inbound) model.Reply
}

type routerUC struct {
	sessions repository.SessionStore
	composer ComposerUseCase
	texts    Texts
	log      *zerolog.Logger
	devMode  bool
}

func NewRouterUseCase(sessions repository.SessionStore, composer ComposerUseCase, texts Texts, logger *zerolog.Logger, devMode bool) *routerUC {
	return &routerUC{sessions: sessions, composer: composer, texts: texts, log: logger, devMode: devMode}
}

// Classify maps inbound text to a route. The checks run in a fixed order
// and the first match wins: exact commands, then the "style:" delimiter,
// then a style digit (only meaningful while a question is pending), then
// freeform. For RouteStyleSelect the chosen style is returned too.
func Classify(text string, hasPending bool) (model.Route, model.Style) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if _, ok := greetings[lower]; ok {
		return model.RouteGreeting, model.StyleNone
	}
	switch lower {
	case "about":
		return model.RouteAbout, model.StyleNone
	case "reset":
		return model.RouteReset, model.StyleNone
	}
	if strings.Contains(lower, styleDelimiter) {
		return model.RouteStyleMenu, model.StyleNone
	}
	if hasPending && len(lower) <= maxStyleCodeLen && isDigits(lower) {
		if s, ok := model.ParseStyle(lower); ok {
			return model.RouteStyleSelect, s
		}
	}
	return model.RouteFreeform, model.StyleNone
}

// ExtractQuestion returns the text after the first "style:" (any case), trimmed.
func ExtractQuestion(text string) string {
	i := strings.Index(strings.ToLower(text), styleDelimiter)
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(text[i+len(styleDelimiter):])
}

func (r *routerUC) Handle(ctx context.Context, msg model.Inbound) model.Reply {
	start := time.Now()
	ctx = logging.WithUserID(ctx, logging.Redact(msg.SenderID, r.devMode))
	log := logging.With(ctx, r.log)

	body := strings.TrimSpace(msg.Body)
	log.Info().
		Str("text", logging.Truncate(body, 100)).
		Bool("media", msg.HasMedia()).
		Msg("inbound message")

	route, style := Classify(body, r.sessions.HasPending(msg.SenderID))
	reply := model.Reply{Route: route, Style: style}

	switch route {
	case model.RouteGreeting:
		reply.Text = r.texts.Welcome()

	case model.RouteAbout:
		reply.Text = r.texts.About()

	case model.RouteReset:
		r.sessions.Reset(msg.SenderID)
		reply.Text = r.texts.ResetDone()

	case model.RouteStyleMenu:
		q := ExtractQuestion(body)
		if q == "" {
			reply.Text = r.texts.StyleUsage()
			break
		}
		r.sessions.AwaitStyle(msg.SenderID, q)
		reply.Text = r.texts.StyleMenu(q)

	case model.RouteStyleSelect:
		q, ok := r.sessions.TakePending(msg.SenderID)
		if !ok {
			// the question was consumed by a concurrent message
			reply.Route, reply.Style = model.RouteFreeform, model.StyleNone
			r.freeform(ctx, msg, body, &reply)
			break
		}
		answer, err := r.composer.Compose(ctx, ComposeRequest{
			UserID:   msg.SenderID,
			Text:     q,
			Style:    style,
			MediaURL: msg.MediaURL,
		})
		if err != nil {
			reply.Text, reply.Failed = r.texts.Failure(isTimeout(err)), true
			break
		}
		reply.Text = r.texts.StyledAnswer(style, answer)

	default:
		r.freeform(ctx, msg, body, &reply)
	}

	reply.Elapsed = time.Since(start)
	log.Debug().
		Str("route", string(reply.Route)).
		Str("style", reply.Style.String()).
		Bool("failed", reply.Failed).
		Dur("elapsed", reply.Elapsed).
		Msg("reply ready")
	return reply
}

func (r *routerUC) freeform(ctx context.Context, msg model.Inbound, body string, reply *model.Reply) {
	// a new question supersedes one still waiting for a style
	r.sessions.ClearPending(msg.SenderID)
	answer, err := r.composer.Compose(ctx, ComposeRequest{
		UserID:   msg.SenderID,
		Text:     body,
		MediaURL: msg.MediaURL,
	})
	if err != nil {
		reply.Text, reply.Failed = r.texts.Failure(isTimeout(err)), true
		return
	}
	reply.Text = r.texts.Answer(answer)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}
