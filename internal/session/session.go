package session

import (
	"context"
	"sync"
	"time"

	"chat-client/internal/models"
	"chat-client/internal/transport"
	"chat-client/pkg/logger"
)

// State is the connection lifecycle state.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Option configures a Session.
type Option func(*Session)

// WithAutoRead controls whether inbound messages from other members are
// acknowledged the moment they land in a subscribed room's log. On by
// default, matching the product's "a subscribed room is an open room"
// assumption.
func WithAutoRead(enabled bool) Option {
	return func(s *Session) { s.autoRead = enabled }
}

// WithReconnectDelay overrides the fixed backoff between reconnect
// attempts.
func WithReconnectDelay(d time.Duration) Option {
	return func(s *Session) { s.reconnectDelay = d }
}

// WithOnMessage registers a callback fired for every message newly
// appended to a room log. This is the engine's re-render signal; the
// callback runs on the frame-delivery goroutine and should hand off
// anything slow.
func WithOnMessage(fn func(models.Message)) Option {
	return func(s *Session) { s.onMessage = fn }
}

// WithOnStateChange registers the connected/disconnected signal. The
// callback runs on its own goroutine and must not assume ordering against
// in-flight frames.
func WithOnStateChange(fn func(State)) Option {
	return func(s *Session) { s.onStateChange = fn }
}

// Session is the realtime engine: one transport connection, the
// subscription registry, the per-room message logs and the unread ledger.
// Construct one per signed-in user and tear it down on logout; there is no
// package-level state.
type Session struct {
	identity Identity
	tr       transport.Transport
	log      *logger.Logger

	reconnectDelay time.Duration
	autoRead       bool
	onMessage      func(models.Message)
	onStateChange  func(State)

	registry *Registry
	store    *RoomStore
	unread   *UnreadLedger
	dispatch *Dispatcher

	mu         sync.Mutex
	state      State
	running    bool
	waiters    []func()
	loopCancel context.CancelFunc
}

// New builds a session around the given transport and identity.
func New(tr transport.Transport, identity Identity, log *logger.Logger, opts ...Option) *Session {
	s := &Session{
		identity:       identity,
		tr:             tr,
		log:            log.With("component", "session", "userId", identity.UserID),
		reconnectDelay: 5 * time.Second,
		autoRead:       true,
		registry:       NewRegistry(log),
		store:          NewRoomStore(),
		unread:         NewUnreadLedger(log),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.dispatch = NewDispatcher(identity, s.store, s.unread, s, s.autoRead, s.onMessage, log)
	return s
}

// Connect brings the session up. Idempotent: when already connected the
// callback fires synchronously and nothing else happens. Otherwise the
// connect loop starts (or keeps running) with fixed-delay reconnects, and
// the callback fires once on the next successful handshake. Transport
// failures never surface here; they are only visible through the state
// signal.
func (s *Session) Connect(onConnected func()) {
	s.mu.Lock()
	if s.state == StateConnected {
		s.mu.Unlock()
		if onConnected != nil {
			onConnected()
		}
		return
	}
	if onConnected != nil {
		s.waiters = append(s.waiters, onConnected)
	}
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.setStateLocked(StateConnecting)
	ctx, cancel := context.WithCancel(context.Background())
	s.loopCancel = cancel
	s.mu.Unlock()

	go s.run(ctx)
}

// Disconnect tears the session down: live subscriptions are cleared,
// queued subscribe requests are rejected, the transport is closed and the
// reconnect loop stops. Safe to call repeatedly.
func (s *Session) Disconnect() {
	s.mu.Lock()
	cancel := s.loopCancel
	s.loopCancel = nil
	s.waiters = nil
	s.registry.Clear()
	s.setStateLocked(StateDisconnected)
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if err := s.tr.Disconnect(); err != nil {
		s.log.Debug("transport disconnect", "error", err)
	}
}

func (s *Session) run(ctx context.Context) {
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	for {
		done, err := s.tr.Connect(ctx)
		if err != nil {
			s.log.Warn("broker connect failed", "error", err)
			s.mu.Lock()
			s.setStateLocked(StateDisconnected)
			s.mu.Unlock()
			if !s.backoff(ctx) {
				return
			}
			continue
		}

		s.mu.Lock()
		if ctx.Err() != nil {
			// Disconnect landed while the dial was in flight; the freshly
			// established connection must not outlive it.
			s.mu.Unlock()
			if err := s.tr.Disconnect(); err != nil {
				s.log.Debug("transport cleanup", "error", err)
			}
			return
		}
		s.setStateLocked(StateConnected)
		waiters := s.waiters
		s.waiters = nil
		// Exactly one flush per successful connect.
		s.registry.Flush(s.tr)
		s.mu.Unlock()

		for _, w := range waiters {
			w()
		}

		select {
		case <-ctx.Done():
			return
		case err := <-done:
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				s.log.Warn("connection lost", "error", err)
			} else {
				s.log.Info("connection closed by broker")
			}
			s.mu.Lock()
			// The handles died with the socket; restoring them is the
			// caller's move via a fresh subscribe, not ours.
			s.registry.DropLive()
			s.setStateLocked(StateDisconnected)
			s.mu.Unlock()
			if err := s.tr.Disconnect(); err != nil {
				s.log.Debug("transport cleanup", "error", err)
			}
			if !s.backoff(ctx) {
				return
			}
		}
	}
}

// backoff waits the fixed reconnect delay. Returns false when the session
// was torn down while waiting.
func (s *Session) backoff(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(s.reconnectDelay):
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if ctx.Err() != nil {
		return false
	}
	s.setStateLocked(StateConnecting)
	return true
}

func (s *Session) setStateLocked(st State) {
	if s.state == st {
		return
	}
	s.state = st
	if s.onStateChange != nil {
		go s.onStateChange(st)
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Identity returns who this session acts as.
func (s *Session) Identity() Identity { return s.identity }

// Subscribe binds a handler to a destination. Connected sessions subscribe
// immediately with replace semantics; otherwise the request queues and
// resolves when the connection comes up.
func (s *Session) Subscribe(destination string, h transport.Handler) *SubscribeFuture {
	s.mu.Lock()
	defer s.mu.Unlock()
	var tr transport.Transport
	if s.state == StateConnected {
		tr = s.tr
	}
	return s.registry.Subscribe(tr, destination, h)
}

// Unsubscribe tears down the destination's subscription if present.
func (s *Session) Unsubscribe(destination string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry.Unsubscribe(destination)
}

// JoinRoom subscribes the room's message and read-event topics, routed
// through the dispatcher. The returned future tracks the message topic.
func (s *Session) JoinRoom(roomID int64) *SubscribeFuture {
	s.Subscribe(transport.RoomReadTopic(roomID), func(f transport.Frame) {
		s.dispatch.HandleReadFrame(roomID, f)
	})
	return s.Subscribe(transport.RoomTopic(roomID), s.dispatch.HandleMessageFrame)
}

// LeaveRoom drops the room's subscriptions and forgets its local state.
func (s *Session) LeaveRoom(roomID int64) {
	s.Unsubscribe(transport.RoomTopic(roomID))
	s.Unsubscribe(transport.RoomReadTopic(roomID))
	s.store.RemoveRoom(roomID)
}

// SubscribeUpdates binds the global update topic and the per-user unread
// queue, keeping the unread ledger in sync with server pushes.
func (s *Session) SubscribeUpdates() *SubscribeFuture {
	s.Subscribe(transport.TotalUnreadQueue(s.identity.UserID), s.dispatch.HandleTotalUnreadFrame)
	return s.Subscribe(transport.UpdateTopic, s.dispatch.HandleUpdateFrame)
}

// SendMessage publishes a text message to the room.
func (s *Session) SendMessage(roomID int64, content string) error {
	return s.dispatch.SendMessage(roomID, content)
}

// MarkAsRead emits a read receipt and optimistically clears the room's
// unread counter.
func (s *Session) MarkAsRead(roomID, messageID int64) error {
	return s.dispatch.MarkAsRead(roomID, messageID)
}

// OpenRoom applies the local accounting for entering a room: its unread
// count drains into the global total immediately, ahead of any server
// confirmation.
func (s *Session) OpenRoom(roomID int64) {
	s.unread.OnRoomOpened(roomID)
}

// SetRooms replaces the known room set (from a REST refresh) and seeds the
// unread ledger from the rooms' counters.
func (s *Session) SetRooms(rooms []models.ChatRoom) {
	s.store.SetRooms(rooms)
	counts := make(map[int64]int, len(rooms))
	for _, room := range rooms {
		counts[room.ID] = room.UnreadCount
	}
	s.unread.Seed(counts)
}

// SeedHistory loads fetched history rows into a room's log.
func (s *Session) SeedHistory(roomID int64, history []models.Message) {
	s.store.Seed(roomID, history)
}

// Rooms returns the known rooms with unread counters taken from the
// ledger, which is the authority once accounting has run.
func (s *Session) Rooms() []models.ChatRoom {
	rooms := s.store.Rooms()
	for i := range rooms {
		rooms[i].UnreadCount = s.unread.RoomCount(rooms[i].ID)
	}
	return rooms
}

// Messages returns the room's log sorted for display.
func (s *Session) Messages(roomID int64) []models.Message {
	return s.store.Messages(roomID)
}

// TotalUnread returns the global unread counter.
func (s *Session) TotalUnread() int { return s.unread.Total() }

// RoomUnread returns one room's unread counter.
func (s *Session) RoomUnread(roomID int64) int { return s.unread.RoomCount(roomID) }

// trySend implements the dispatcher's guarded outbound path.
func (s *Session) trySend(destination string, body []byte) error {
	s.mu.Lock()
	connected := s.state == StateConnected
	s.mu.Unlock()
	if !connected {
		return transport.ErrNotConnected
	}
	return s.tr.Send(destination, body)
}
