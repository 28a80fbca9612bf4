package app

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/terminalboard/server/internal/core"
	"github.com/terminalboard/server/internal/domain"
)

// fakeConn records every frame a broadcaster delivers to it.
type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	broken bool
}

func (f *fakeConn) TrySend(frame core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.broken {
		return errors.New("backpressure")
	}
	f.frames = append(f.frames, frame)
	return nil
}

func (f *fakeConn) Close() {}

func (f *fakeConn) events(t *testing.T) []map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]map[string]any, 0, len(f.frames))
	for _, frame := range f.frames {
		var ev map[string]any
		if err := json.Unmarshal(frame, &ev); err != nil {
			t.Fatalf("decode frame: %v", err)
		}
		out = append(out, ev)
	}
	return out
}

func (f *fakeConn) eventsOfType(t *testing.T, kind string) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, ev := range f.events(t) {
		if ev["type"] == kind {
			out = append(out, ev)
		}
	}
	return out
}

// fakeStore implements core.MessageStore in memory with an injected clock.
type fakeStore struct {
	mu      sync.Mutex
	saved   []domain.Message
	nextID  int
	failing bool
	now     func() time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{now: func() time.Time { return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC) }}
}

func (s *fakeStore) Create(_ context.Context, m domain.Message) (domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return domain.Message{}, errors.New("store down")
	}
	s.nextID++
	m.ID = "msg-" + strconv.Itoa(s.nextID)
	m.CreatedAt = s.now()
	s.saved = append(s.saved, m)
	return m, nil
}

func (s *fakeStore) ListRecent(_ context.Context, room domain.RoomName, limit int64, _ time.Time) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Message
	for i := len(s.saved) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		if s.saved[i].Room == room {
			out = append(out, s.saved[i])
		}
	}
	return out, nil
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

func bindConn(t *testing.T, reg *Registry, sid core.SessionID, name string) *fakeConn {
	t.Helper()
	conn := &fakeConn{}
	reg.Bind(sid, core.NewMemberSession(domain.NewMember(name), conn), nil)
	return conn
}

func testMessage(room, text string) domain.Message {
	return domain.Message{
		ID:     "msg-1",
		Author: "bob",
		Kind:   domain.KindText,
		Text:   text,
		Room:   domain.RoomName(room),
	}
}

func hasUser(users []any, name string) bool {
	for _, u := range users {
		if u == name {
			return true
		}
	}
	return false
}
