package model

import "time"

// Channel identifies the messaging provider a message arrived on.
type Channel string

const (
	ChannelWhatsApp Channel = "whatsapp"
	ChannelTelegram Channel = "telegram"
)

// Inbound is a chat message as the bridge consumes it. Only the first
// attachment of a provider message is ever carried in MediaURL.
type Inbound struct {
	MessageID  string
	Channel    Channel
	SenderID   string
	Body       string
	MediaURL   string
	ReceivedAt time.Time
}

func (m Inbound) HasMedia() bool { return m.MediaURL != "" }

// Route names the path the reply router took for a message.
type Route string

const (
	RouteGreeting    Route = "greeting"
	RouteAbout       Route = "about"
	RouteReset       Route = "reset"
	RouteStyleMenu   Route = "style_menu"
	RouteStyleSelect Route = "style_select"
	RouteFreeform    Route = "freeform"
)

// Reply is the formatted outbound text plus what produced it.
type Reply struct {
	Text    string
	Route   Route
	Style   Style
	Failed  bool // a collaborator failed and Text is an apology
	Elapsed time.Duration
}

// UsageEvent is one handled message, recorded without its body.
type UsageEvent struct {
	ID         string
	Channel    Channel
	Sender     string // redacted
	Route      Route
	Style      string
	HasMedia   bool
	Failed     bool
	LatencyMs  int64
	OccurredAt time.Time
}
