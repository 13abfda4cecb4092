package models

import (
	"errors"
	"testing"
)

func TestDecodeMessage(t *testing.T) {
	body := []byte(`{"id":7,"chatRoomId":42,"senderId":2,"senderName":"peer","content":"hi","type":"TEXT","createdAt":"2026-08-30T10:00:00Z","readCount":3}`)

	m, err := DecodeMessage(body)
	if err != nil {
		t.Fatal(err)
	}
	if m.ID != 7 || m.ChatRoomID != 42 || m.SenderID != 2 {
		t.Errorf("ids = %d/%d/%d", m.ID, m.ChatRoomID, m.SenderID)
	}
	if m.ReadCount != 3 {
		t.Errorf("readCount = %d, want 3", m.ReadCount)
	}
}

func TestDecodeMessageDefaultsToText(t *testing.T) {
	m, err := DecodeMessage([]byte(`{"id":1,"chatRoomId":2,"senderId":3,"content":"no type field"}`))
	if err != nil {
		t.Fatal(err)
	}
	if m.Type != MessageTypeText {
		t.Errorf("type = %s, want TEXT", m.Type)
	}
}

func TestDecodeMessageRejections(t *testing.T) {
	cases := []struct {
		name string
		body []byte
		want error
	}{
		{"empty body", nil, errEmptyFrame},
		{"missing id", []byte(`{"chatRoomId":2,"senderId":3}`), ErrMissingID},
		{"missing room", []byte(`{"id":1,"senderId":3}`), ErrMissingRoomID},
		{"missing sender", []byte(`{"id":1,"chatRoomId":2}`), ErrMissingSenderID},
		{"unknown type", []byte(`{"id":1,"chatRoomId":2,"senderId":3,"type":"VOICE"}`), ErrUnknownType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodeMessage(tc.body); !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestDecodeMessageSystemWithoutSender(t *testing.T) {
	m, err := DecodeMessage([]byte(`{"id":1,"chatRoomId":2,"type":"SYSTEM","content":"alice joined"}`))
	if err != nil {
		t.Fatal(err)
	}
	if m.Type != MessageTypeSystem {
		t.Errorf("type = %s, want SYSTEM", m.Type)
	}
}

func TestDecodeReadEvent(t *testing.T) {
	ev, err := DecodeReadEvent([]byte(`{"messageId":99}`))
	if err != nil {
		t.Fatal(err)
	}
	if ev.MessageID != 99 {
		t.Errorf("messageId = %d, want 99", ev.MessageID)
	}

	if _, err := DecodeReadEvent([]byte(`{}`)); !errors.Is(err, ErrMissingID) {
		t.Errorf("err = %v, want ErrMissingID", err)
	}
}

func TestDecodeUpdateEvent(t *testing.T) {
	ev, err := DecodeUpdateEvent([]byte(`{"totalUnreadCount":4,"memberId":12}`))
	if err != nil {
		t.Fatal(err)
	}
	if ev.TotalUnreadCount != 4 || ev.MemberID != 12 {
		t.Errorf("unexpected event: %+v", ev)
	}

	if _, err := DecodeUpdateEvent([]byte("junk")); err == nil {
		t.Error("expected decode error")
	}
}
