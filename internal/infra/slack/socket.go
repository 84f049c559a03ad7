package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gorilla/websocket"
)

// Envelope types sent over Socket Mode
const (
	EnvelopeHello      = "hello"
	EnvelopeDisconnect = "disconnect"
	EnvelopeEventsAPI  = "events_api"
)

// Event types the bot handles
const (
	EventMessage       = "message"
	EventAppMention    = "app_mention"
	EventAppHomeOpened = "app_home_opened"
)

// Envelope is one Socket Mode frame
type Envelope struct {
	EnvelopeID string          `json:"envelope_id,omitempty"`
	Type       string          `json:"type,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Reason     string          `json:"reason,omitempty"`
}

type eventsAPIPayload struct {
	TeamID    string          `json:"team_id,omitempty"`
	EventID   string          `json:"event_id,omitempty"`
	EventTime int64           `json:"event_time,omitempty"`
	Event     json.RawMessage `json:"event,omitempty"`
}

type event struct {
	Type     string `json:"type,omitempty"`
	Subtype  string `json:"subtype,omitempty"`
	User     string `json:"user,omitempty"`
	Text     string `json:"text,omitempty"`
	Channel  string `json:"channel,omitempty"`
	TS       string `json:"ts,omitempty"`
	ThreadTS string `json:"thread_ts,omitempty"`
	BotID    string `json:"bot_id,omitempty"`
	Tab      string `json:"tab,omitempty"`
}

// InboundEvent is a decoded event worth handling
type InboundEvent struct {
	Type      string
	EventID   string
	ChannelID string
	TS        string
	ThreadTS  string
	UserID    string
	Text      string
	Tab       string
}

// ConsumeSocket reads frames until the connection fails or ctx ends,
// acknowledging every envelope before handing it to onEnvelope
func ConsumeSocket(ctx context.Context, conn *websocket.Conn, onEnvelope func(Envelope) error) error {
	if conn == nil {
		return fmt.Errorf("slack websocket connection is nil")
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var envelope Envelope
		if err := json.Unmarshal(raw, &envelope); err != nil {
			continue
		}
		if strings.TrimSpace(envelope.EnvelopeID) != "" {
			if err := conn.WriteJSON(map[string]string{"envelope_id": envelope.EnvelopeID}); err != nil {
				return err
			}
		}
		if envelope.Type == EnvelopeDisconnect {
			return fmt.Errorf("slack requested disconnect: %s", envelope.Reason)
		}
		if onEnvelope == nil {
			continue
		}
		if err := onEnvelope(envelope); err != nil {
			return err
		}
	}
}

// ParseEvent decodes an events_api envelope. Messages with a subtype, from
// bots, from botUserID itself, or without channel, ts or text are dropped.
func ParseEvent(envelope Envelope, botUserID string) (*InboundEvent, bool, error) {
	if envelope.Type != EnvelopeEventsAPI || len(envelope.Payload) == 0 {
		return nil, false, nil
	}
	var payload eventsAPIPayload
	if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
		return nil, false, fmt.Errorf("decode events_api payload: %w", err)
	}
	var ev event
	if err := json.Unmarshal(payload.Event, &ev); err != nil {
		return nil, false, fmt.Errorf("decode event: %w", err)
	}

	userID := strings.TrimSpace(ev.User)
	switch ev.Type {
	case EventAppHomeOpened:
		if userID == "" || ev.Tab != "home" {
			return nil, false, nil
		}
		return &InboundEvent{Type: ev.Type, EventID: payload.EventID, UserID: userID, Tab: ev.Tab}, true, nil
	case EventMessage, EventAppMention:
	default:
		return nil, false, nil
	}

	if strings.TrimSpace(ev.Subtype) != "" || strings.TrimSpace(ev.BotID) != "" {
		return nil, false, nil
	}
	if userID == "" || userID == strings.TrimSpace(botUserID) {
		return nil, false, nil
	}
	channelID := strings.TrimSpace(ev.Channel)
	ts := strings.TrimSpace(ev.TS)
	text := strings.TrimSpace(ev.Text)
	if channelID == "" || ts == "" || text == "" {
		return nil, false, nil
	}

	return &InboundEvent{
		Type:      ev.Type,
		EventID:   payload.EventID,
		ChannelID: channelID,
		TS:        ts,
		ThreadTS:  strings.TrimSpace(ev.ThreadTS),
		UserID:    userID,
		Text:      text,
	}, true, nil
}
