package web

import (
	"encoding/xml"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ai-chat-bridge/internal/domain"
	"ai-chat-bridge/internal/domain/model"
	"ai-chat-bridge/internal/infra/logging"
)

// TwiML reply document.
type twimlResponse struct {
	XMLName xml.Name      `xml:"Response"`
	Message *twimlMessage `xml:"Message,omitempty"`
}

type twimlMessage struct {
	Body string `xml:",chardata"`
}

// handleTwilioWebhook answers one WhatsApp message delivered by Twilio as a
// form post. The reply goes back inline as TwiML.
func (s *Server) handleTwilioWebhook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	from := strings.TrimSpace(r.PostForm.Get("From"))
	if from == "" {
		http.Error(w, "missing From", http.StatusBadRequest)
		return
	}

	msg := model.Inbound{
		MessageID:  r.PostForm.Get("MessageSid"),
		Channel:    model.ChannelWhatsApp,
		SenderID:   from,
		Body:       r.PostForm.Get("Body"),
		ReceivedAt: time.Now().UTC(),
	}
	if n, _ := strconv.Atoi(r.PostForm.Get("NumMedia")); n > 0 || r.PostForm.Get("MediaUrl0") != "" {
		msg.MediaURL = r.PostForm.Get("MediaUrl0")
	}

	reply, err := s.bridge.Deliver(r.Context(), msg)
	switch {
	case errors.Is(err, domain.ErrDuplicateMessage):
		writeTwiML(w, "")
		return
	case err != nil:
		l := logging.With(r.Context(), s.log)
		l.Error().Err(err).Msg("deliver failed")
		writeTwiML(w, "")
		return
	}
	writeTwiML(w, reply.Text)
}

// writeTwiML always answers 200; Twilio retries anything else.
func writeTwiML(w http.ResponseWriter, text string) {
	doc := twimlResponse{}
	if text != "" {
		doc.Message = &twimlMessage{Body: text}
	}
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(xml.Header))
	_ = xml.NewEncoder(w).Encode(doc)
}
