package models

import (
	"errors"
	"time"
)

// enum
type MessageType string

const (
	MessageTypeText    MessageType = "TEXT"
	MessageTypeDeleted MessageType = "DELETED"
	MessageTypeSystem  MessageType = "SYSTEM"
)

var (
	ErrMissingID       = errors.New("message id is required")
	ErrMissingRoomID   = errors.New("chatRoomId is required")
	ErrMissingSenderID = errors.New("senderId is required")
	ErrUnknownType     = errors.New("unknown message type")
)

// Message is one entry in a room's log. Inbound frames and history rows
// share this shape.
type Message struct {
	ID         int64       `json:"id"`
	ChatRoomID int64       `json:"chatRoomId"`
	SenderID   int64       `json:"senderId"`
	SenderName string      `json:"senderName"`
	Content    string      `json:"content"`
	Type       MessageType `json:"type"`
	CreatedAt  time.Time   `json:"createdAt"`
	// ReadCount is the number of room members who have not read the
	// message yet. Decremented by read events, floored at zero.
	ReadCount int `json:"readCount"`
}

// Validate checks the fields every inbound message frame must carry.
// Frames failing validation are dropped by the dispatcher.
func (m *Message) Validate() error {
	if m.ID == 0 {
		return ErrMissingID
	}
	if m.ChatRoomID == 0 {
		return ErrMissingRoomID
	}
	if m.SenderID == 0 && m.Type != MessageTypeSystem {
		return ErrMissingSenderID
	}
	switch m.Type {
	case MessageTypeText, MessageTypeDeleted, MessageTypeSystem:
		return nil
	}
	return ErrUnknownType
}

// -------------------- outbound envelopes --------------------

// SendPayload is the body published to /app/send. The server assigns the
// message id and echoes the full message back on the room topic.
type SendPayload struct {
	ChatRoomID int64       `json:"chatRoomId"`
	SenderID   int64       `json:"senderId"`
	SenderName string      `json:"senderName"`
	Content    string      `json:"content"`
	Type       MessageType `json:"type"`
}

// ReadReceipt is the body published to /app/message/read.
type ReadReceipt struct {
	MemberID   int64 `json:"memberId"`
	ChatRoomID int64 `json:"chatRoomId"`
	MessageID  int64 `json:"messageId"`
}
