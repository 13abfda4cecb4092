package transport

import "fmt"

// Broker destination layout. Kept in one place so the session and the
// tests never drift on paths.
const (
	SendDestination = "/app/send"
	ReadDestination = "/app/message/read"
	UpdateTopic     = "/topic/update"
)

// RoomTopic is the per-room message stream.
func RoomTopic(roomID int64) string {
	return fmt.Sprintf("/topic/chatroom/%d", roomID)
}

// RoomReadTopic is the per-room read-event stream.
func RoomReadTopic(roomID int64) string {
	return fmt.Sprintf("/topic/chat/%d/read", roomID)
}

// TotalUnreadQueue is the per-user unread counter queue.
func TotalUnreadQueue(userID int64) string {
	return fmt.Sprintf("/user/queue/total-unread/%d", userID)
}
