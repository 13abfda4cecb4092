package session

import (
	"sort"
	"sync"

	"chat-client/internal/models"
)

// RoomStore holds the known rooms and the per-room message logs. Logs are
// insertion-ordered (the order frames arrived) and mutable only by
// identity-matched updates; display reads get a copy sorted by CreatedAt.
type RoomStore struct {
	mu    sync.RWMutex
	rooms map[int64]*models.ChatRoom
	logs  map[int64][]*models.Message
	index map[int64]map[int64]*models.Message
}

func NewRoomStore() *RoomStore {
	return &RoomStore{
		rooms: make(map[int64]*models.ChatRoom),
		logs:  make(map[int64][]*models.Message),
		index: make(map[int64]map[int64]*models.Message),
	}
}

// SetRooms replaces the known room set, typically after a REST refresh.
// Message logs for rooms that disappeared are dropped.
func (s *RoomStore) SetRooms(rooms []models.ChatRoom) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[int64]*models.ChatRoom, len(rooms))
	for i := range rooms {
		room := rooms[i]
		next[room.ID] = &room
	}
	for id := range s.logs {
		if _, ok := next[id]; !ok {
			delete(s.logs, id)
			delete(s.index, id)
		}
	}
	s.rooms = next
}

// Room returns a copy of the room, if known.
func (s *RoomStore) Room(id int64) (models.ChatRoom, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return models.ChatRoom{}, false
	}
	return *room, true
}

// Rooms returns copies of all known rooms.
func (s *RoomStore) Rooms() []models.ChatRoom {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ChatRoom, 0, len(s.rooms))
	for _, room := range s.rooms {
		out = append(out, *room)
	}
	return out
}

// RemoveRoom drops a room and its log, e.g. after the user leaves it.
func (s *RoomStore) RemoveRoom(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
	delete(s.logs, id)
	delete(s.index, id)
}

// Apply folds an inbound message into the room's log. A new id is
// appended; a known id is mutated in place: DELETED frames flip the type,
// anything else is a duplicate echo and is dropped. Returns whether the
// message was appended.
func (s *RoomStore) Apply(msg *models.Message) (appended bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	roomIdx := s.index[msg.ChatRoomID]
	if roomIdx == nil {
		roomIdx = make(map[int64]*models.Message)
		s.index[msg.ChatRoomID] = roomIdx
	}

	if existing, ok := roomIdx[msg.ID]; ok {
		if msg.Type == models.MessageTypeDeleted {
			existing.Type = models.MessageTypeDeleted
		}
		return false
	}

	entry := *msg
	s.logs[msg.ChatRoomID] = append(s.logs[msg.ChatRoomID], &entry)
	roomIdx[msg.ID] = &entry

	if room, ok := s.rooms[msg.ChatRoomID]; ok && msg.Type == models.MessageTypeText {
		room.RecentMessage = msg.Content
		room.RecentMessageAt = msg.CreatedAt
	}
	return true
}

// Seed loads history rows into the log without touching room metadata.
// Duplicates of already-known ids are skipped.
func (s *RoomStore) Seed(roomID int64, history []models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	roomIdx := s.index[roomID]
	if roomIdx == nil {
		roomIdx = make(map[int64]*models.Message)
		s.index[roomID] = roomIdx
	}
	for i := range history {
		msg := history[i]
		if _, ok := roomIdx[msg.ID]; ok {
			continue
		}
		entry := msg
		s.logs[roomID] = append(s.logs[roomID], &entry)
		roomIdx[msg.ID] = &entry
	}
}

// DecrementReadCount applies a read event to the identified message,
// floored at zero. Returns false when the message is unknown.
func (s *RoomStore) DecrementReadCount(roomID, messageID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.index[roomID][messageID]
	if !ok {
		return false
	}
	if msg.ReadCount > 0 {
		msg.ReadCount--
	}
	return true
}

// Messages returns the room's log sorted by CreatedAt for display. The
// underlying log keeps arrival order; sorting happens at read time.
func (s *RoomStore) Messages(roomID int64) []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.logs[roomID]
	out := make([]models.Message, 0, len(entries))
	for _, m := range entries {
		out = append(out, *m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// LogLen reports the raw log length for a room.
func (s *RoomStore) LogLen(roomID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.logs[roomID])
}
