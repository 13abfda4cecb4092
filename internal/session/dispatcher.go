package session

import (
	"github.com/goccy/go-json"

	"chat-client/internal/models"
	"chat-client/internal/transport"
	"chat-client/pkg/logger"
)

// sender is the dispatcher's outbound surface: a guarded send that fails
// with transport.ErrNotConnected instead of reaching a dead socket.
type sender interface {
	trySend(destination string, body []byte) error
}

// Dispatcher routes inbound frames into the room logs and pushes outbound
// send/read envelopes. It never lets a bad frame escape: malformed input is
// dropped and logged, per-room state stays isolated.
type Dispatcher struct {
	identity  Identity
	store     *RoomStore
	unread    *UnreadLedger
	out       sender
	autoRead  bool
	onMessage func(models.Message)
	log       *logger.Logger
}

func NewDispatcher(identity Identity, store *RoomStore, unread *UnreadLedger, out sender, autoRead bool, onMessage func(models.Message), log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		identity:  identity,
		store:     store,
		unread:    unread,
		out:       out,
		autoRead:  autoRead,
		onMessage: onMessage,
		log:       log.With("component", "dispatcher"),
	}
}

// SendMessage publishes a text message envelope. The server assigns the id
// and echoes the message back on the room topic, which repopulates the log,
// so no optimistic local entry is written here.
func (d *Dispatcher) SendMessage(roomID int64, content string) error {
	if d.identity.UserID == 0 {
		d.log.Warn("send dropped, no current user", "roomId", roomID)
		return ErrNoIdentity
	}
	payload := models.SendPayload{
		ChatRoomID: roomID,
		SenderID:   d.identity.UserID,
		SenderName: d.identity.Name,
		Content:    content,
		Type:       models.MessageTypeText,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if err := d.out.trySend(transport.SendDestination, body); err != nil {
		d.log.Warn("send dropped", "roomId", roomID, "error", err)
		return err
	}
	return nil
}

// MarkAsRead emits the read receipt and immediately applies the local
// optimistic unread decrement without waiting for the server. The next
// authoritative push reconciles any divergence.
func (d *Dispatcher) MarkAsRead(roomID, messageID int64) error {
	if d.identity.UserID == 0 {
		d.log.Warn("read receipt dropped, no current user", "roomId", roomID)
		return ErrNoIdentity
	}
	receipt := models.ReadReceipt{
		MemberID:   d.identity.UserID,
		ChatRoomID: roomID,
		MessageID:  messageID,
	}
	body, err := json.Marshal(receipt)
	if err != nil {
		return err
	}
	if err := d.out.trySend(transport.ReadDestination, body); err != nil {
		d.log.Warn("read receipt dropped", "roomId", roomID, "error", err)
		return err
	}
	d.unread.OnRoomOpened(roomID)
	return nil
}

// HandleMessageFrame consumes a /topic/chatroom/{id} frame: validate,
// append (or mutate on a known id), and auto-acknowledge messages authored
// by someone else — a subscribed room is treated as actively viewed.
func (d *Dispatcher) HandleMessageFrame(f transport.Frame) {
	msg, err := models.DecodeMessage(f.Body)
	if err != nil {
		d.log.Warn("malformed message frame dropped", "destination", f.Destination, "error", err)
		return
	}

	appended := d.store.Apply(msg)
	if !appended {
		return
	}

	if d.onMessage != nil {
		d.onMessage(*msg)
	}

	if d.autoRead && msg.SenderID != d.identity.UserID && msg.Type == models.MessageTypeText {
		if err := d.MarkAsRead(msg.ChatRoomID, msg.ID); err != nil {
			d.log.Debug("auto read receipt skipped", "roomId", msg.ChatRoomID, "error", err)
		}
	}
}

// HandleReadFrame consumes a /topic/chat/{id}/read frame and decrements the
// target message's outstanding-reader count.
func (d *Dispatcher) HandleReadFrame(roomID int64, f transport.Frame) {
	ev, err := models.DecodeReadEvent(f.Body)
	if err != nil {
		d.log.Warn("malformed read frame dropped", "destination", f.Destination, "error", err)
		return
	}
	if !d.store.DecrementReadCount(roomID, ev.MessageID) {
		d.log.Debug("read event for unknown message", "roomId", roomID, "messageId", ev.MessageID)
	}
}

// HandleUpdateFrame consumes the shared /topic/update stream; only totals
// addressed to the current user are applied.
func (d *Dispatcher) HandleUpdateFrame(f transport.Frame) {
	ev, err := models.DecodeUpdateEvent(f.Body)
	if err != nil {
		d.log.Warn("malformed update frame dropped", "destination", f.Destination, "error", err)
		return
	}
	if ev.MemberID != d.identity.UserID {
		return
	}
	d.unread.ApplyServerTotal(ev.TotalUnreadCount)
}

// HandleTotalUnreadFrame consumes the per-user unread queue.
func (d *Dispatcher) HandleTotalUnreadFrame(f transport.Frame) {
	ev, err := models.DecodeTotalUnread(f.Body)
	if err != nil {
		d.log.Warn("malformed unread frame dropped", "destination", f.Destination, "error", err)
		return
	}
	d.unread.ApplyServerTotal(ev.TotalUnreadCount)
}
