package app

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/terminalboard/server/internal/core"
	"github.com/terminalboard/server/internal/domain"
)

// DefaultTypingQuiet is how long a user stays "typing" after their last
// signal before the stopped transition fires.
const DefaultTypingQuiet = 1500 * time.Millisecond

type typingKey struct {
	room domain.RoomName
	user string
}

type typingState struct {
	gen   uint64
	timer *time.Timer
}

// TypingCoalescer merges high-frequency typing signals into a bounded
// event stream. Each (room, user) holds one cancellable expiry timer; a
// repeat signal restarts it instead of stacking. State is purely
// in-memory and self-destructs on expiry.
type TypingCoalescer struct {
	broadcast *Broadcaster
	quiet     time.Duration

	mu      sync.Mutex
	pending map[typingKey]*typingState
}

func NewTypingCoalescer(broadcast *Broadcaster, quiet time.Duration) *TypingCoalescer {
	if quiet <= 0 {
		quiet = DefaultTypingQuiet
	}
	return &TypingCoalescer{
		broadcast: broadcast,
		quiet:     quiet,
		pending:   make(map[typingKey]*typingState),
	}
}

// Signal marks username as typing in room and (re)starts its quiet-period
// timer. The caller is responsible for source-side debouncing; the
// coalescer broadcasts one typing event per accepted signal, excluding
// the originating connection.
func (t *TypingCoalescer) Signal(room domain.RoomName, username string, from core.SessionID) {
	t.broadcast.PublishExcept(room, from, NewTypingEvent(username))

	key := typingKey{room: room, user: username}
	t.mu.Lock()
	st, ok := t.pending[key]
	if ok {
		st.timer.Stop()
		st.gen++
	} else {
		st = &typingState{}
		t.pending[key] = st
	}
	gen := st.gen
	st.timer = time.AfterFunc(t.quiet, func() { t.expire(key, gen) })
	t.mu.Unlock()
}

// expire fires after the quiet period. The generation check makes it
// race-free against a concurrent refresh: a timer that lost the race to
// Stop finds a newer generation and gives up.
func (t *TypingCoalescer) expire(key typingKey, gen uint64) {
	t.mu.Lock()
	st, ok := t.pending[key]
	if !ok || st.gen != gen {
		t.mu.Unlock()
		return
	}
	delete(t.pending, key)
	t.mu.Unlock()

	log.Debug().Str("module", "app.typing").Str("room", string(key.room)).Str("user", key.user).Msg("typing expired")
	t.broadcast.Publish(key.room, NewStopTypingEvent(key.user))
}

// ActiveCount reports how many (room, user) pairs are currently marked
// typing.
func (t *TypingCoalescer) ActiveCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}
