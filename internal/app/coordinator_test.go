package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/terminalboard/server/internal/core"
)

func newCoordinatorFixture(t *testing.T) (*Coordinator, *fakeStore) {
	t.Helper()
	sessions := NewRegistry()
	presence := NewPresence()
	broadcast := NewBroadcaster(presence, sessions)
	typing := NewTypingCoalescer(broadcast, time.Minute)
	store := newFakeStore()
	ingest := NewIngest(store, broadcast)
	debounce := NewDebounce(400 * time.Millisecond)
	return NewCoordinator(sessions, presence, broadcast, typing, ingest, debounce), store
}

func connect(t *testing.T, c *Coordinator, sid, name string) *fakeConn {
	t.Helper()
	return bindConn(t, c.Sessions, core.SessionID(sid), name)
}

func TestJoinBroadcastsSnapshot(t *testing.T) {
	coord, _ := newCoordinatorFixture(t)
	c1 := connect(t, coord, "c1", "alice")

	coord.Join("c1", "lobby", "alice")

	events := c1.eventsOfType(t, EventRoomUsers)
	if len(events) != 1 {
		t.Fatalf("expected 1 roomUsers snapshot, got %d", len(events))
	}
	if events[0]["room"] != "lobby" {
		t.Fatalf("expected room lobby, got %v", events[0]["room"])
	}
	users := events[0]["users"].([]any)
	if !hasUser(users, "alice") {
		t.Fatalf("snapshot should contain alice, got %v", users)
	}
}

func TestJoinWithoutConnectIsIgnored(t *testing.T) {
	coord, _ := newCoordinatorFixture(t)

	coord.Join("ghost", "lobby", "alice")

	if coord.Presence.RoomCount() != 0 {
		t.Fatal("a never-connected session must not register presence")
	}
}

func TestSwitchingRoomsEmitsBothSnapshots(t *testing.T) {
	coord, _ := newCoordinatorFixture(t)
	c1 := connect(t, coord, "c1", "alice")
	c2 := connect(t, coord, "c2", "bob")

	coord.Join("c1", "general", "alice")
	coord.Join("c2", "general", "bob")
	c1.frames, c2.frames = nil, nil

	coord.Join("c2", "tech", "bob")

	// The room bob left sees a shrunken snapshot.
	left := c1.eventsOfType(t, EventRoomUsers)
	if len(left) != 1 {
		t.Fatalf("expected 1 snapshot in the departed room, got %d", len(left))
	}
	if hasUser(left[0]["users"].([]any), "bob") {
		t.Fatalf("bob must be gone from general, got %v", left[0]["users"])
	}

	// The room bob entered sees the grown one.
	entered := c2.eventsOfType(t, EventRoomUsers)
	if len(entered) != 1 {
		t.Fatalf("expected 1 snapshot in the entered room, got %d", len(entered))
	}
	if entered[0]["room"] != "tech" || !hasUser(entered[0]["users"].([]any), "bob") {
		t.Fatalf("unexpected snapshot for tech: %v", entered[0])
	}
}

func TestLeaveAcceptsTheRoomStringTheClientJoinedWith(t *testing.T) {
	coord, _ := newCoordinatorFixture(t)
	connect(t, coord, "c1", "alice")

	long := strings.Repeat("r", 70)
	coord.Join("c1", long, "alice")
	coord.Leave("c1", long)

	if coord.Presence.RoomCount() != 0 {
		t.Fatal("leaving with the exact string used to join must deregister the member")
	}
}

func TestTypingReachesOvercappedRoomName(t *testing.T) {
	coord, _ := newCoordinatorFixture(t)
	connect(t, coord, "c1", "alice")
	other := connect(t, coord, "c2", "bob")

	long := strings.Repeat("r", 70)
	coord.Join("c1", long, "alice")
	coord.Join("c2", long, "bob")
	other.frames = nil

	coord.TypingSignal("c1", long, "alice")

	if got := len(other.eventsOfType(t, EventTyping)); got != 1 {
		t.Fatalf("typing addressed by the joined string must reach the room, got %d events", got)
	}
}

func TestJoinFallsBackToConnectionUsername(t *testing.T) {
	coord, _ := newCoordinatorFixture(t)
	c1 := connect(t, coord, "c1", "handshake-alice")

	coord.Join("c1", "lobby", "   ")

	events := c1.eventsOfType(t, EventRoomUsers)
	if len(events) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(events))
	}
	if !hasUser(events[0]["users"].([]any), "handshake-alice") {
		t.Fatalf("blank join username must fall back to the connection's name, got %v", events[0]["users"])
	}
}

func TestJoinUsernameOverridesConnectionUsername(t *testing.T) {
	coord, _ := newCoordinatorFixture(t)
	c1 := connect(t, coord, "c1", "handshake-alice")

	coord.Join("c1", "lobby", "payload-alice")

	events := c1.eventsOfType(t, EventRoomUsers)
	if len(events) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(events))
	}
	users := events[0]["users"].([]any)
	if !hasUser(users, "payload-alice") || hasUser(users, "handshake-alice") {
		t.Fatalf("an explicit join username must win, got %v", users)
	}
}

func TestLeaveReturnsToConnectedState(t *testing.T) {
	coord, _ := newCoordinatorFixture(t)
	c1 := connect(t, coord, "c1", "alice")
	connect(t, coord, "c2", "bob")

	coord.Join("c1", "lobby", "alice")
	coord.Join("c2", "lobby", "bob")
	c1.frames = nil

	coord.Leave("c2", "lobby")

	events := c1.eventsOfType(t, EventRoomUsers)
	if len(events) != 1 {
		t.Fatalf("expected 1 snapshot after leave, got %d", len(events))
	}
	if hasUser(events[0]["users"].([]any), "bob") {
		t.Fatalf("bob should be out of the snapshot, got %v", events[0]["users"])
	}
	if _, ok := coord.Presence.RoomOf("c2"); ok {
		t.Fatal("after leave the connection holds no room")
	}

	// Still connected: it can join again.
	coord.Join("c2", "lobby", "bob")
	if room, ok := coord.Presence.RoomOf("c2"); !ok || room != "lobby" {
		t.Fatalf("re-join after leave failed, room=%q ok=%v", room, ok)
	}
}

func TestTypingDebouncedAtSource(t *testing.T) {
	coord, _ := newCoordinatorFixture(t)
	sender := connect(t, coord, "c1", "alice")
	other := connect(t, coord, "c2", "bob")

	coord.Join("c1", "lobby", "alice")
	coord.Join("c2", "lobby", "bob")
	sender.frames, other.frames = nil, nil

	for i := 0; i < 10; i++ {
		coord.TypingSignal("c1", "lobby", "alice")
	}

	if got := len(other.eventsOfType(t, EventTyping)); got != 1 {
		t.Fatalf("10 raw signals inside one window must yield 1 broadcast, got %d", got)
	}
	if got := len(sender.eventsOfType(t, EventTyping)); got != 0 {
		t.Fatalf("sender never receives its own typing event, got %d", got)
	}
}

func TestTypingIgnoresBlankFields(t *testing.T) {
	coord, _ := newCoordinatorFixture(t)
	connect(t, coord, "c1", "alice")
	other := connect(t, coord, "c2", "bob")

	coord.Join("c1", "lobby", "alice")
	coord.Join("c2", "lobby", "bob")
	other.frames = nil

	coord.TypingSignal("c1", "", "alice")
	coord.TypingSignal("c1", "lobby", "   ")

	if got := len(other.eventsOfType(t, EventTyping)); got != 0 {
		t.Fatalf("blank room or username must be dropped, got %d", got)
	}
}

func TestDisconnectIsIdempotentAndTerminal(t *testing.T) {
	coord, _ := newCoordinatorFixture(t)
	connect(t, coord, "c1", "alice")

	coord.Join("c1", "lobby", "alice")
	coord.Disconnect("c1")
	coord.Disconnect("c1") // late transport callback, must be harmless

	if coord.Presence.RoomCount() != 0 {
		t.Fatal("disconnect must clean up presence")
	}
	if coord.Sessions.Count() != 0 {
		t.Fatal("disconnect must unbind the session")
	}

	// A disconnected identity cannot act.
	coord.Join("c1", "lobby", "alice")
	if coord.Presence.RoomCount() != 0 {
		t.Fatal("a disconnected identity must not rejoin")
	}
}

func TestLobbyScenario(t *testing.T) {
	coord, _ := newCoordinatorFixture(t)
	c1 := connect(t, coord, "c1", "alice")
	c2 := connect(t, coord, "c2", "bob")

	coord.Join("c1", "lobby", "alice")
	coord.Join("c2", "lobby", "bob")

	coord.ChatMessage(context.Background(), "bob", "lobby", "text", "hi", "")

	for _, conn := range []*fakeConn{c1, c2} {
		events := conn.eventsOfType(t, EventChatMessage)
		if len(events) != 1 {
			t.Fatalf("both members must receive the message, got %d", len(events))
		}
		ev := events[0]
		if ev["author"] != "bob" || ev["text"] != "hi" || ev["room"] != "lobby" {
			t.Fatalf("unexpected chatMessage payload: %v", ev)
		}
	}

	c2.frames = nil
	coord.Disconnect("c1")

	events := c2.eventsOfType(t, EventRoomUsers)
	if len(events) != 1 {
		t.Fatalf("expected a final presence snapshot, got %d", len(events))
	}
	users := events[0]["users"].([]any)
	if hasUser(users, "alice") {
		t.Fatalf("alice must be gone from the snapshot, got %v", users)
	}
	if !hasUser(users, "bob") {
		t.Fatalf("bob must remain in the snapshot, got %v", users)
	}
}
