package models

import "testing"

func TestDisplayNameOneOnOne(t *testing.T) {
	room := ChatRoom{
		ID:   1,
		Name: "alice, bob",
		Type: RoomTypeOneOnOne,
		Members: []Member{
			{ID: 1, Name: "alice"},
			{ID: 2, Name: "bob"},
		},
	}

	if got := room.DisplayName(1); got != "bob" {
		t.Errorf("DisplayName(1) = %q, want bob", got)
	}
	if got := room.DisplayName(2); got != "alice" {
		t.Errorf("DisplayName(2) = %q, want alice", got)
	}
}

func TestDisplayNameGroup(t *testing.T) {
	room := ChatRoom{
		ID:   2,
		Name: "release crew",
		Type: RoomTypeGroup,
		Members: []Member{
			{ID: 1, Name: "alice"},
			{ID: 2, Name: "bob"},
			{ID: 3, Name: "carol"},
		},
	}

	if got := room.DisplayName(1); got != "release crew" {
		t.Errorf("DisplayName = %q, want the group name", got)
	}
}

func TestMemberIDs(t *testing.T) {
	room := ChatRoom{Members: []Member{{ID: 4}, {ID: 9}}}
	ids := room.MemberIDs()
	if len(ids) != 2 || ids[0] != 4 || ids[1] != 9 {
		t.Errorf("MemberIDs = %v", ids)
	}
}
