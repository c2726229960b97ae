package models

import (
	"fmt"
	"strings"
)

// ProvisionalPrefix marks locally generated message IDs that have not yet
// been confirmed by the backend.
const ProvisionalPrefix = "local-"

type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// AckLevel is the delivery-status rank of a message. Levels are ordered;
// a message's level may only move forward (see timeline.ApplyAck).
type AckLevel int8

const (
	AckPending AckLevel = iota
	AckSent
	AckDelivered
	AckRead
)

func (a AckLevel) String() string {
	switch a {
	case AckPending:
		return "pending"
	case AckSent:
		return "sent"
	case AckDelivered:
		return "delivered"
	case AckRead:
		return "read"
	}
	return "unknown"
}

// ParseAckLevel maps wire names onto levels. "played" (voice notes) ranks
// the same as read.
func ParseAckLevel(s string) (AckLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return AckPending, nil
	case "sent":
		return AckSent, nil
	case "delivered":
		return AckDelivered, nil
	case "read", "played":
		return AckRead, nil
	}
	return AckPending, fmt.Errorf("unknown ack level: %q", s)
}

func (a AckLevel) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

func (a *AckLevel) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	lvl, err := ParseAckLevel(s)
	if err != nil {
		return err
	}
	*a = lvl
	return nil
}

// MediaRef points at an attachment. It may be absent when the message first
// appears and be filled in later by a media-ready push event.
type MediaRef struct {
	Kind string `json:"kind"` // image|video|audio|document|sticker
	URL  string `json:"url"`
}

// Message is one line in a conversation timeline.
type Message struct {
	ID     string    `json:"id"`
	ChatID string    `json:"chat_id"`
	Dir    Direction `json:"dir"`
	// TS is the creation instant in epoch milliseconds. All sources are
	// normalized through NormalizeTimestamp before a message enters a store.
	TS   int64  `json:"ts"`
	Body string `json:"body,omitempty"`

	Media    *MediaRef `json:"media,omitempty"`
	QuotedID string    `json:"quoted_id,omitempty"`

	Ack         AckLevel `json:"ack"`
	Provisional bool     `json:"provisional,omitempty"`
	// Failed marks a send that was rejected by the transport. The entry
	// stays visible so the operator can retry.
	Failed bool `json:"failed,omitempty"`

	// Sender fields as delivered by the push channel; identity resolution
	// collapses them into one display identity (pkg/identity).
	SenderName   string `json:"sender_name,omitempty"`
	SenderNumber string `json:"sender_number,omitempty"`
	SenderAddr   string `json:"sender_addr,omitempty"`
}

// IsProvisionalID reports whether id was locally generated.
func IsProvisionalID(id string) bool {
	return strings.HasPrefix(id, ProvisionalPrefix)
}
