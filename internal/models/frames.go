package models

import (
	"errors"

	"github.com/goccy/go-json"
)

// Inbound frame bodies pushed by the broker. Each topic carries exactly one
// shape; decoding is strict so a malformed frame is rejected at the edge
// instead of surfacing as a half-filled struct deeper in.

// ReadEvent arrives on /topic/chat/{roomId}/read when another member reads
// a message.
type ReadEvent struct {
	MessageID int64 `json:"messageId"`
}

// UpdateEvent arrives on the shared /topic/update stream. Consumers apply
// it only when MemberID matches the current user.
type UpdateEvent struct {
	TotalUnreadCount int   `json:"totalUnreadCount"`
	MemberID         int64 `json:"memberId"`
}

// TotalUnreadEvent arrives on the per-user /user/queue/total-unread/{id}.
type TotalUnreadEvent struct {
	TotalUnreadCount int `json:"totalUnreadCount"`
}

var errEmptyFrame = errors.New("empty frame body")

// DecodeMessage parses and validates a room-topic frame.
func DecodeMessage(body []byte) (*Message, error) {
	if len(body) == 0 {
		return nil, errEmptyFrame
	}
	var m Message
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, err
	}
	if m.Type == "" {
		m.Type = MessageTypeText
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// DecodeReadEvent parses a read-topic frame.
func DecodeReadEvent(body []byte) (*ReadEvent, error) {
	if len(body) == 0 {
		return nil, errEmptyFrame
	}
	var ev ReadEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, err
	}
	if ev.MessageID == 0 {
		return nil, ErrMissingID
	}
	return &ev, nil
}

// DecodeUpdateEvent parses a /topic/update frame.
func DecodeUpdateEvent(body []byte) (*UpdateEvent, error) {
	if len(body) == 0 {
		return nil, errEmptyFrame
	}
	var ev UpdateEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// DecodeTotalUnread parses a per-user unread queue frame.
func DecodeTotalUnread(body []byte) (*TotalUnreadEvent, error) {
	if len(body) == 0 {
		return nil, errEmptyFrame
	}
	var ev TotalUnreadEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
