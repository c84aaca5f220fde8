package usecase

import (
	"fmt"
	"strings"

	"ai-chat-bridge/internal/domain/model"
)

// Identity is what the bot says about itself.
type Identity struct {
	Name      string
	Creator   string
	Version   string
	PoweredBy string
}

// Texts renders every fixed reply of the router.
type Texts struct {
	id Identity
}

func NewTexts(id Identity) Texts { return Texts{id: id} }

func (t Texts) Welcome() string {
	return fmt.Sprintf(`%s 🤖
_Advanced AI Assistant %s_

I can:
• Answer questions in 5 different styles
• Analyze images you send
• Explain complex topics simply
• Remember conversation context

How may I help you today?
`, t.id.Name, t.id.Creator)
}

func (t Texts) About() string {
	return fmt.Sprintf("%s v%s\n%s\nPowered by %s", t.id.Name, t.id.Version, t.id.Creator, t.id.PoweredBy)
}

func (t Texts) ResetDone() string { return "🔄 Conversation history cleared!" }

func (t Texts) StyleUsage() string {
	return "📚 Send your question after the keyword, e.g. *style: what is TCP*"
}

func (t Texts) StyleMenu(question string) string {
	styles := model.AllStyles()
	lines := make([]string, 0, len(styles))
	for _, s := range styles {
		lines = append(lines, fmt.Sprintf("*%s*: %s", s.Code(), s.Label()))
	}
	return fmt.Sprintf("📚 Choose a response style:\n_%s_\n\n%s\n\nReply with a number (%s-%s)",
		question, strings.Join(lines, "\n"), styles[0].Code(), styles[len(styles)-1].Code())
}

func (t Texts) StyledAnswer(s model.Style, answer string) string {
	return fmt.Sprintf("%s's response (%s):\n\n%s", t.id.Name, s.Label(), answer)
}

func (t Texts) Answer(answer string) string {
	return fmt.Sprintf("%s\n\n- %s %s -", answer, t.id.Name, t.id.Creator)
}

func (t Texts) Failure(timedOut bool) string {
	if timedOut {
		return fmt.Sprintf("⏳ %s took too long to answer. Please try again.", t.id.Name)
	}
	return fmt.Sprintf("🚫 %s encountered an error reaching the AI service. Please try again.", t.id.Name)
}
