package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/terminalboard/server/internal/core"
	"github.com/terminalboard/server/internal/domain"
)

// Broadcaster fans an event out to every connection currently in a room.
// Delivery is fire-and-forget and at-most-once per member: a slow or
// vanished recipient simply misses the event. Within one room, events
// published by the same caller reach every member in publish order.
type Broadcaster struct {
	Presence *Presence
	Sessions *Registry
}

func NewBroadcaster(presence *Presence, sessions *Registry) *Broadcaster {
	return &Broadcaster{Presence: presence, Sessions: sessions}
}

// Publish delivers v to all current members of room.
func (b *Broadcaster) Publish(room domain.RoomName, v any) {
	b.publish(room, "", v)
}

// PublishExcept delivers v to all current members of room except one
// connection (used for typing, which never echoes to its sender).
func (b *Broadcaster) PublishExcept(room domain.RoomName, except core.SessionID, v any) {
	b.publish(room, except, v)
}

func (b *Broadcaster) publish(room domain.RoomName, except core.SessionID, v any) {
	frame, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.broadcast").Msg("marshal event")
		return
	}

	sent, dropped := 0, 0
	for _, sid := range b.Presence.ConnectionsIn(room) {
		if sid == except {
			continue
		}
		sess, ok := b.Sessions.Get(sid)
		if !ok {
			// Disconnected mid-publish; it just misses the event.
			continue
		}
		if err := sess.Signal().TrySend(core.Frame(frame)); err != nil {
			dropped++
			continue
		}
		sent++
	}
	log.Debug().Str("module", "app.broadcast").Str("room", string(room)).Int("sent_to", sent).Int("dropped", dropped).Msg("broadcast result")
}
