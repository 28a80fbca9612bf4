package core

import (
	"context"
	"time"

	"github.com/terminalboard/server/internal/domain"
)

// Frame is a marshaled event ready for the wire.
type Frame []byte

// SessionID identifies one live transport session. A reconnecting client
// gets a fresh SessionID; identity never survives the transport.
type SessionID string

// SignalConnection abstracts a system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// MemberSession binds a domain.Member and its transport endpoint.
// This is what the broadcaster fans out to.
type MemberSession interface {
	Meta() *domain.Member
	Signal() SignalConnection
}

// MessageStore is the external persistence collaborator. Create assigns
// the id and timestamp server-side; ListRecent returns newest-first.
type MessageStore interface {
	Create(ctx context.Context, m domain.Message) (domain.Message, error)
	ListRecent(ctx context.Context, room domain.RoomName, limit int64, before time.Time) ([]domain.Message, error)
}

// MediaResult is one candidate media URL for a search query.
type MediaResult struct {
	URL string `json:"url"`
}

// MediaSearcher supplies candidate media URLs for a user query. The core
// only carries the chosen URL through chat messages.
type MediaSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]MediaResult, error)
	Trending(ctx context.Context, limit int) ([]MediaResult, error)
}
