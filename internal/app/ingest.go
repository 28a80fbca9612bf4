package app

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/terminalboard/server/internal/core"
	"github.com/terminalboard/server/internal/domain"
)

// Ingest validates, persists, and republishes chat messages. Malformed
// input is dropped silently to match the fire-and-forget transport; a
// persistence failure aborts before any broadcast so clients never see a
// message the store does not have.
type Ingest struct {
	Store     core.MessageStore
	Broadcast *Broadcaster
}

func NewIngest(store core.MessageStore, broadcast *Broadcaster) *Ingest {
	return &Ingest{Store: store, Broadcast: broadcast}
}

func (p *Ingest) HandleMessage(ctx context.Context, author, room, kind, text, mediaRef string) {
	author = strings.TrimSpace(author)
	if author == "" {
		log.Debug().Str("module", "app.ingest").Msg("dropped message without author")
		return
	}

	msg := domain.Message{
		Author:   domain.Truncate(author, domain.MaxAuthorLen),
		Room:     domain.NormalizeRoom(room),
		Text:     domain.Truncate(text, domain.MaxTextLen),
		MediaRef: domain.Truncate(mediaRef, domain.MaxMediaRefLen),
	}
	msg.Kind = domain.ResolveKind(kind, msg.MediaRef)

	if !msg.HasBody() {
		log.Debug().Str("module", "app.ingest").Str("author", msg.Author).Msg("dropped message without body")
		return
	}

	saved, err := p.Store.Create(ctx, msg)
	if err != nil {
		log.Error().Err(err).Str("module", "app.ingest").Str("room", string(msg.Room)).Msg("persist message")
		return
	}

	p.Broadcast.Publish(saved.Room, NewChatMessageEvent(saved))
}
