package model

import (
	"time"

	"github.com/oklog/ulid/v2"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// MaxTurns bounds a conversation: one system turn plus five history turns.
const MaxTurns = 6

// Turn is one role-tagged message of a conversation.
type Turn struct {
	ID      string
	Role    Role
	Content string
	Seq     uint64 // logical order within the conversation
	At      time.Time
}

func NewTurn(role Role, content string, seq uint64, at time.Time) Turn {
	return Turn{
		ID:      ulid.Make().String(),
		Role:    role,
		Content: content,
		Seq:     seq,
		At:      at,
	}
}

type PendingState int

const (
	PendingIdle PendingState = iota
	PendingAwaitingStyle
)

// Conversation is the bounded history of one user. Turns[0] is always the
// system turn; appending past MaxTurns evicts Turns[1].
type Conversation struct {
	UserID   string
	Turns    []Turn
	Pending  PendingState
	Question string // set while Pending == PendingAwaitingStyle

	nextSeq    uint64
	CreatedAt  time.Time
	LastActive time.Time
}

func NewConversation(userID, systemPrompt string, now time.Time) *Conversation {
	c := &Conversation{
		UserID:     userID,
		Turns:      make([]Turn, 0, MaxTurns+1),
		CreatedAt:  now,
		LastActive: now,
	}
	c.Turns = append(c.Turns, NewTurn(RoleSystem, systemPrompt, c.seq(), now))
	return c
}

func (c *Conversation) seq() uint64 {
	s := c.nextSeq
	c.nextSeq++
	return s
}

// Append adds a turn and returns how many turns were evicted.
func (c *Conversation) Append(role Role, content string, now time.Time) int {
	c.Turns = append(c.Turns, NewTurn(role, content, c.seq(), now))
	c.LastActive = now
	evicted := 0
	for len(c.Turns) > MaxTurns {
		c.Turns = append(c.Turns[:1], c.Turns[2:]...)
		evicted++
	}
	return evicted
}

// AwaitStyle records question as a user turn and parks it for a style choice.
func (c *Conversation) AwaitStyle(question string, now time.Time) int {
	evicted := c.Append(RoleUser, question, now)
	c.Pending = PendingAwaitingStyle
	c.Question = question
	return evicted
}

// TakePending returns the parked question and returns the conversation to idle.
func (c *Conversation) TakePending() (string, bool) {
	if c.Pending != PendingAwaitingStyle {
		return "", false
	}
	q := c.Question
	c.ClearPending()
	return q, true
}

func (c *Conversation) ClearPending() {
	c.Pending = PendingIdle
	c.Question = ""
}

// Snapshot copies the turns so callers can read them without holding a lock.
func (c *Conversation) Snapshot() []Turn {
	out := make([]Turn, len(c.Turns))
	copy(out, c.Turns)
	return out
}

func (c *Conversation) Last() Turn { return c.Turns[len(c.Turns)-1] }
