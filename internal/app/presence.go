package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/terminalboard/server/internal/core"
	"github.com/terminalboard/server/internal/domain"
)

// Presence maps rooms to their current members. It is the only broadly
// shared mutable state of the coordinator, so every operation is total:
// unknown rooms and connections are no-ops, never errors. A connection is
// a member of at most one room; joining a new room leaves the old one.
type Presence struct {
	mu     sync.RWMutex
	rooms  map[domain.RoomName]map[core.SessionID]string
	roomOf map[core.SessionID]domain.RoomName
}

func NewPresence() *Presence {
	return &Presence{
		rooms:  make(map[domain.RoomName]map[core.SessionID]string),
		roomOf: make(map[core.SessionID]domain.RoomName),
	}
}

// Join moves sid into room under the given display name and returns the
// updated member list plus the room the connection previously occupied.
// Repeated joins into the same room are idempotent.
func (p *Presence) Join(room domain.RoomName, sid core.SessionID, name string) (users []string, prev domain.RoomName, moved bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if prev, moved = p.roomOf[sid]; moved && prev != room {
		p.evictLocked(prev, sid)
	}

	members, ok := p.rooms[room]
	if !ok {
		members = make(map[core.SessionID]string)
		p.rooms[room] = members
	}
	members[sid] = name
	p.roomOf[sid] = room

	log.Info().Str("module", "app.presence").Str("sid", string(sid)).Str("room", string(room)).Str("name", name).Msg("joined room")
	return p.namesLocked(room), prev, moved
}

// Leave removes sid from room. Empty rooms are purged, not merely
// emptied, so idle rooms do not accumulate. No-op if sid was not a
// member of that room.
func (p *Presence) Leave(room domain.RoomName, sid core.SessionID) (users []string, removed bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	members, ok := p.rooms[room]
	if !ok {
		return nil, false
	}
	if _, ok = members[sid]; !ok {
		return nil, false
	}
	p.evictLocked(room, sid)
	delete(p.roomOf, sid)

	log.Info().Str("module", "app.presence").Str("sid", string(sid)).Str("room", string(room)).Msg("left room")
	return p.namesLocked(room), true
}

// RemoveEverywhere deregisters sid on disconnect and reports the room it
// was in so the caller can emit a final presence snapshot. Safe to call
// for connections that never joined or were already cleaned up.
func (p *Presence) RemoveEverywhere(sid core.SessionID) (room domain.RoomName, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	room, ok = p.roomOf[sid]
	if !ok {
		return "", false
	}
	p.evictLocked(room, sid)
	delete(p.roomOf, sid)

	log.Info().Str("module", "app.presence").Str("sid", string(sid)).Str("room", string(room)).Msg("removed on disconnect")
	return room, true
}

// MembersOf returns the display names currently in room. Order carries no
// meaning.
func (p *Presence) MembersOf(room domain.RoomName) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.namesLocked(room)
}

// ConnectionsIn snapshots the member connection ids of room for fan-out.
func (p *Presence) ConnectionsIn(room domain.RoomName) []core.SessionID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	members := p.rooms[room]
	out := make([]core.SessionID, 0, len(members))
	for sid := range members {
		out = append(out, sid)
	}
	return out
}

// RoomOf reports the room sid currently occupies, if any.
func (p *Presence) RoomOf(sid core.SessionID) (domain.RoomName, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	room, ok := p.roomOf[sid]
	return room, ok
}

// RoomCount reports how many rooms currently hold at least one member.
func (p *Presence) RoomCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.rooms)
}

func (p *Presence) namesLocked(room domain.RoomName) []string {
	members := p.rooms[room]
	out := make([]string, 0, len(members))
	for _, name := range members {
		out = append(out, name)
	}
	return out
}

func (p *Presence) evictLocked(room domain.RoomName, sid core.SessionID) {
	members, ok := p.rooms[room]
	if !ok {
		return
	}
	delete(members, sid)
	if len(members) == 0 {
		delete(p.rooms, room)
	}
}
