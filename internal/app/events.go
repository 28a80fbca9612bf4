package app

import (
	"time"

	"github.com/terminalboard/server/internal/domain"
)

// Server→client event kinds. The wire envelope is JSON with a "type"
// discriminator; clients route on it.
const (
	EventChatMessage = "chatMessage"
	EventRoomUsers   = "roomUsers"
	EventTyping      = "typing"
	EventStopTyping  = "stopTyping"
)

// RoomUsersEvent is the full membership snapshot sent on every membership
// change. Snapshots, not diffs: a client can always rebuild its sidebar
// from the latest one.
type RoomUsersEvent struct {
	Type  string          `json:"type"`
	Room  domain.RoomName `json:"room"`
	Users []string        `json:"users"`
}

func NewRoomUsersEvent(room domain.RoomName, users []string) RoomUsersEvent {
	if users == nil {
		users = []string{}
	}
	return RoomUsersEvent{Type: EventRoomUsers, Room: room, Users: users}
}

// TypingEvent signals that a user started or stopped typing. Room scoping
// is implied by delivery; recipients only need the name.
type TypingEvent struct {
	Type     string `json:"type"`
	Username string `json:"username"`
}

func NewTypingEvent(username string) TypingEvent {
	return TypingEvent{Type: EventTyping, Username: username}
}

func NewStopTypingEvent(username string) TypingEvent {
	return TypingEvent{Type: EventStopTyping, Username: username}
}

// ChatMessageEvent is the persisted, truncated, echo-safe representation
// of a message, fanned out to the whole room including the sender.
type ChatMessageEvent struct {
	Type      string          `json:"type"`
	ID        string          `json:"id"`
	Author    string          `json:"author"`
	Kind      domain.Kind     `json:"kind"`
	Text      string          `json:"text"`
	MediaRef  string          `json:"mediaRef"`
	Room      domain.RoomName `json:"room"`
	CreatedAt time.Time       `json:"createdAt"`
}

func NewChatMessageEvent(m domain.Message) ChatMessageEvent {
	return ChatMessageEvent{
		Type:      EventChatMessage,
		ID:        m.ID,
		Author:    m.Author,
		Kind:      m.Kind,
		Text:      m.Text,
		MediaRef:  m.MediaRef,
		Room:      m.Room,
		CreatedAt: m.CreatedAt,
	}
}
