package app

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/terminalboard/server/internal/core"
	"github.com/terminalboard/server/internal/domain"
)

// Coordinator is the single entry point for per-connection events. It
// drives the session lifecycle (connected → joined → disconnected) and
// owns the side effects: presence bookkeeping and the snapshot
// broadcasts that follow every membership change. A failure in one
// connection's handling never touches another connection's state.
type Coordinator struct {
	Sessions  *Registry
	Presence  *Presence
	Broadcast *Broadcaster
	Typing    *TypingCoalescer
	Ingest    *Ingest

	debounce *Debounce
}

func NewCoordinator(sessions *Registry, presence *Presence, broadcast *Broadcaster, typing *TypingCoalescer, ingest *Ingest, debounce *Debounce) *Coordinator {
	return &Coordinator{
		Sessions:  sessions,
		Presence:  presence,
		Broadcast: broadcast,
		Typing:    typing,
		Ingest:    ingest,
		debounce:  debounce,
	}
}

// Connect binds a freshly opened transport session. The connection starts
// with no room; membership only exists after an explicit join.
func (c *Coordinator) Connect(sid core.SessionID, sess core.MemberSession, cancel context.CancelFunc) {
	c.Sessions.Bind(sid, sess, cancel)
}

// Join registers sid in a room and emits presence snapshots: one for the
// room it left (if it was elsewhere and members remain) and one for the
// room it entered. A join without a username falls back to the name the
// session connected with.
func (c *Coordinator) Join(sid core.SessionID, room, name string) {
	sess, ok := c.Sessions.Get(sid)
	if !ok {
		return
	}
	target := domain.NormalizeRoom(room)
	if strings.TrimSpace(name) == "" {
		name = sess.Meta().Name
	}
	display := domain.DisplayName(name)

	users, prev, moved := c.Presence.Join(target, sid, display)

	if moved && prev != target {
		if remaining := c.Presence.MembersOf(prev); len(remaining) > 0 {
			c.Broadcast.Publish(prev, NewRoomUsersEvent(prev, remaining))
		}
	}
	c.Broadcast.Publish(target, NewRoomUsersEvent(target, users))
}

// Leave removes sid from room and, if members remain, emits the updated
// snapshot. Leaving a room it is not in is a no-op.
func (c *Coordinator) Leave(sid core.SessionID, room string) {
	target := domain.ClampRoom(room)
	if target == "" {
		return
	}

	users, removed := c.Presence.Leave(target, sid)
	if !removed {
		return
	}
	if len(users) > 0 {
		c.Broadcast.Publish(target, NewRoomUsersEvent(target, users))
	}
}

// TypingSignal routes a typing event through the source-side debounce
// gate and on into the coalescer. The sender never receives its own
// indicator.
func (c *Coordinator) TypingSignal(sid core.SessionID, room, username string) {
	target := domain.ClampRoom(room)
	username = strings.TrimSpace(username)
	if target == "" || username == "" {
		return
	}
	if !c.debounce.Allow(sid) {
		return
	}
	c.Typing.Signal(target, username, sid)
}

// ChatMessage hands an inbound message to the ingest pipeline.
func (c *Coordinator) ChatMessage(ctx context.Context, author, room, kind, text, mediaRef string) {
	c.Ingest.HandleMessage(ctx, author, room, kind, text, mediaRef)
}

// Disconnect is terminal: the identity is gone and a reconnecting client
// must join again as a new connection. It may race an in-flight join or
// ingest for the same sid; presence removal is idempotent, so the later
// of the two simply finds nothing to do.
func (c *Coordinator) Disconnect(sid core.SessionID) {
	room, ok := c.Presence.RemoveEverywhere(sid)
	c.Sessions.Cancel(sid)
	c.Sessions.Unbind(sid)
	c.debounce.Forget(sid)

	if !ok {
		return
	}
	if remaining := c.Presence.MembersOf(room); len(remaining) > 0 {
		c.Broadcast.Publish(room, NewRoomUsersEvent(room, remaining))
	}
	log.Info().Str("module", "app.coordinator").Str("sid", string(sid)).Str("room", string(room)).Msg("session disconnected")
}
