package models

import "fmt"

// PushEventKind enumerates what the push channel can deliver. Events arrive
// with no ordering contract relative to REST calls or to each other.
type PushEventKind string

const (
	PushMessage    PushEventKind = "message"
	PushAck        PushEventKind = "ack"
	PushMediaReady PushEventKind = "media"
)

// PushEvent is the wire shape of one push-channel event. Exactly one of the
// payload groups below is meaningful depending on Kind.
type PushEvent struct {
	Kind   PushEventKind `json:"kind"`
	ChatID string        `json:"chat_id"`

	// Kind == message
	ID           string   `json:"id,omitempty"`
	FromMe       bool     `json:"from_me,omitempty"`
	Body         string   `json:"body,omitempty"`
	TS           FlexTime `json:"ts,omitempty"`
	QuotedID     string   `json:"quoted_id,omitempty"`
	SenderName   string   `json:"sender_name,omitempty"`
	SenderNumber string   `json:"sender_number,omitempty"`
	SenderAddr   string   `json:"sender_addr,omitempty"`

	// Kind == ack
	Ack string `json:"ack,omitempty"`

	// Kind == media (also used for messages that already carry media)
	Media *MediaRef `json:"media,omitempty"`
}

// Validate checks the minimal shape for the event kind.
func (e *PushEvent) Validate() error {
	if e.ChatID == "" {
		return fmt.Errorf("push event missing chat_id")
	}
	switch e.Kind {
	case PushMessage:
		if e.ID == "" {
			return fmt.Errorf("message event missing id")
		}
	case PushAck:
		if e.ID == "" {
			return fmt.Errorf("ack event missing id")
		}
		if _, err := ParseAckLevel(e.Ack); err != nil {
			return err
		}
	case PushMediaReady:
		if e.ID == "" {
			return fmt.Errorf("media event missing id")
		}
		if e.Media == nil {
			return fmt.Errorf("media event missing media ref")
		}
	default:
		return fmt.Errorf("unknown push event kind: %q", e.Kind)
	}
	return nil
}

// AsMessage converts a message-kind event into a Message record.
func (e *PushEvent) AsMessage() Message {
	dir := DirectionIn
	ack := AckPending
	if e.FromMe {
		dir = DirectionOut
		ack = AckSent
	}
	return Message{
		ID:           e.ID,
		ChatID:       e.ChatID,
		Dir:          dir,
		TS:           e.TS.Millis(),
		Body:         e.Body,
		Media:        e.Media,
		QuotedID:     e.QuotedID,
		Ack:          ack,
		SenderName:   e.SenderName,
		SenderNumber: e.SenderNumber,
		SenderAddr:   e.SenderAddr,
	}
}
