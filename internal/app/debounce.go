package app

import (
	"sync"
	"time"

	"github.com/terminalboard/server/internal/core"
)

// DefaultTypingDebounce bounds how often one connection may emit a typing
// signal, however many raw keystrokes occur.
const DefaultTypingDebounce = 400 * time.Millisecond

// Debounce is a per-connection pass-one-per-window gate. It is the
// source-side half of typing coalescing: the session consults it before
// anything reaches the coalescer.
type Debounce struct {
	mu     sync.Mutex
	last   map[core.SessionID]time.Time
	window time.Duration
	now    func() time.Time
}

func NewDebounce(window time.Duration) *Debounce {
	if window <= 0 {
		window = DefaultTypingDebounce
	}
	return &Debounce{
		last:   make(map[core.SessionID]time.Time),
		window: window,
		now:    time.Now,
	}
}

// Allow reports whether sid may emit now, and if so starts a new window.
func (d *Debounce) Allow(sid core.SessionID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if last, ok := d.last[sid]; ok && now.Sub(last) < d.window {
		return false
	}
	d.last[sid] = now
	return true
}

// Forget drops sid's window state on disconnect.
func (d *Debounce) Forget(sid core.SessionID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.last, sid)
}
