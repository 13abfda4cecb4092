package session

import (
	"sync"

	"chat-client/pkg/logger"
)

// UnreadLedger keeps the global unread counter and the per-room counters.
// Server pushes overwrite the total (authoritative); opening a room is a
// local optimistic decrement reconciled by the next push. The ledger keeps
// total == sum(rooms) by construction rather than by recomputation.
type UnreadLedger struct {
	mu      sync.Mutex
	total   int
	perRoom map[int64]int
	log     *logger.Logger
}

func NewUnreadLedger(log *logger.Logger) *UnreadLedger {
	return &UnreadLedger{
		perRoom: make(map[int64]int),
		log:     log.With("component", "unread"),
	}
}

// Seed installs per-room counts from a room list refresh and derives the
// total from their sum. A later authoritative push may overwrite the total.
func (u *UnreadLedger) Seed(counts map[int64]int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.perRoom = make(map[int64]int, len(counts))
	u.total = 0
	for roomID, n := range counts {
		if n < 0 {
			n = 0
		}
		u.perRoom[roomID] = n
		u.total += n
	}
}

// ApplyServerTotal is the authoritative overwrite from the broker. It
// always wins over local optimistic state.
func (u *UnreadLedger) ApplyServerTotal(total int) {
	if total < 0 {
		total = 0
	}
	u.mu.Lock()
	u.total = total
	u.mu.Unlock()
	u.log.Debug("server unread total applied", "total", total)
}

// OnRoomOpened zeroes the room counter and subtracts the prior value from
// the total, atomically. Floored at zero on both sides.
func (u *UnreadLedger) OnRoomOpened(roomID int64) {
	u.mu.Lock()
	defer u.mu.Unlock()
	n := u.perRoom[roomID]
	if n == 0 {
		return
	}
	u.perRoom[roomID] = 0
	u.total -= n
	if u.total < 0 {
		u.total = 0
	}
}

// Total returns the global unread counter.
func (u *UnreadLedger) Total() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.total
}

// RoomCount returns one room's unread counter.
func (u *UnreadLedger) RoomCount(roomID int64) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.perRoom[roomID]
}
