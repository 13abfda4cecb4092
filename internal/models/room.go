package models

import "time"

// enum
type RoomType string

const (
	RoomTypeOneOnOne RoomType = "ONE_ON_ONE"
	RoomTypeGroup    RoomType = "GROUP"
)

// Member is a directory entry, also embedded in room membership.
type Member struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// ChatRoom mirrors the server's room representation. UnreadCount is the
// only field the session mutates locally; everything else is refreshed
// from the room list endpoint.
type ChatRoom struct {
	ID      int64    `json:"id"`
	Name    string   `json:"name"`
	Type    RoomType `json:"type"`
	Members []Member `json:"members"`

	RecentMessage   string    `json:"recentMessage"`
	RecentMessageAt time.Time `json:"recentMessageAt"`
	UnreadCount     int       `json:"unreadCount"`
}

// DisplayName returns the label the sidebar shows for the room: for a room
// with exactly two members it is the other participant's name, otherwise
// the stored group name.
func (r *ChatRoom) DisplayName(selfID int64) string {
	if len(r.Members) == 2 {
		for _, m := range r.Members {
			if m.ID != selfID {
				return m.Name
			}
		}
	}
	return r.Name
}

// MemberIDs returns the ids of all room members.
func (r *ChatRoom) MemberIDs() []int64 {
	ids := make([]int64, 0, len(r.Members))
	for _, m := range r.Members {
		ids = append(ids, m.ID)
	}
	return ids
}
