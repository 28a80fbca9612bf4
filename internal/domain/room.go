package domain

import "strings"

type RoomName string

// DefaultRoom is where connections land when they join with a blank name.
const DefaultRoom RoomName = "lobby"

const MaxRoomNameLen = 64

// NormalizeRoom trims a user-supplied room name and falls back to the
// default room. Rooms have no stored identity; a room exists exactly while
// it has members.
func NormalizeRoom(raw string) RoomName {
	name := ClampRoom(raw)
	if name == "" {
		return DefaultRoom
	}
	return name
}

// ClampRoom trims and caps a room name without the lobby default. Every
// operation that looks a room up must clamp the same way join does, or a
// long name registers under one key and is addressed under another.
func ClampRoom(raw string) RoomName {
	return RoomName(Truncate(strings.TrimSpace(raw), MaxRoomNameLen))
}
