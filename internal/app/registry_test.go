package app

import (
	"testing"

	"github.com/dkeye/Pairs/internal/core"
	"github.com/dkeye/Pairs/internal/domain"
	"github.com/dkeye/Pairs/internal/protocol"
)

func bind(t *testing.T, reg *Registry, sid core.SessionID, name string) {
	t.Helper()
	user, err := domain.NewUser(name)
	if err != nil {
		t.Fatal(err)
	}
	reg.BindSignal(sid, core.NewMemberSession(user, &fakeConn{}), nil)
}

func TestRegistryRoomHandle(t *testing.T) {
	reg := NewRegistry()
	bind(t, reg, "a", "Ana")
	bind(t, reg, "b", "Beto")

	if _, ok := reg.RoomOf("a"); ok {
		t.Fatal("fresh session holds a room")
	}
	reg.UpdateRoom("a", "room_1")
	reg.UpdateRoom("b", "room_1")
	if got := len(reg.MembersOfRoom("room_1")); got != 2 {
		t.Fatalf("members = %d", got)
	}

	// a stale teardown must not clear a newer handle
	reg.UpdateRoom("b", "room_2")
	if reg.RemoveRoom("b", "room_1") {
		t.Fatal("removed a handle for another room")
	}
	if id, _ := reg.RoomOf("b"); id != "room_2" {
		t.Fatalf("room = %q", id)
	}
	if !reg.RemoveRoom("a", "room_1") {
		t.Fatal("handle not removed")
	}
	if len(reg.MembersOfRoom("room_1")) != 0 {
		t.Fatal("room still has members")
	}
}

func TestRegistryRename(t *testing.T) {
	reg := NewRegistry()
	bind(t, reg, "a", "Ana")

	if err := reg.Rename("a", "  Maria  "); err != nil {
		t.Fatal(err)
	}
	sess, _ := reg.GetSession("a")
	if sess.User().Username != "Maria" {
		t.Fatalf("username = %q", sess.User().Username)
	}
	if err := reg.Rename("a", "   "); err == nil {
		t.Fatal("blank name accepted")
	}
	if err := reg.Rename("ghost", "x"); err != ErrUnknownSession {
		t.Fatalf("err = %v", err)
	}
}

func TestRegistryCancel(t *testing.T) {
	reg := NewRegistry()
	user, _ := domain.NewUser("Ana")
	called := 0
	reg.BindSignal("a", core.NewMemberSession(user, &fakeConn{}), func() { called++ })

	if !reg.Cancel("a") || called != 1 {
		t.Fatalf("cancel called %d times", called)
	}
	reg.Unbind("a")
	if reg.Cancel("a") || reg.Count() != 0 {
		t.Fatal("unbound session still present")
	}
}

func TestMatchmakingPairsInArrivalOrder(t *testing.T) {
	h := newHarness(t, Options{})
	a := h.connect("a", "Ana")
	b := h.connect("b", "Beto")
	c := h.connect("c", "Caro")

	first := h.enqueue("a")
	a.last(t, protocol.WaitingForMatch, nil)
	if first.Phase() != domain.PhaseWaiting || !h.rooms.Stats().Waiting {
		t.Fatalf("phase = %v", first.Phase())
	}

	if got := h.enqueue("b"); got != first {
		t.Fatal("second player opened a new room")
	}
	for slot, conn := range []*fakeConn{a, b} {
		var got protocol.MatchFoundPayload
		conn.last(t, protocol.MatchFound, &got)
		want := protocol.MatchFoundPayload{Player1Name: "Ana", Player2Name: "Beto", You: slot}
		if got != want {
			t.Fatalf("match-found = %+v, want %+v", got, want)
		}
	}
	if b.count(protocol.WaitingForMatch) != 0 {
		t.Fatal("paired player was told to wait")
	}

	third := h.enqueue("c")
	if third == first {
		t.Fatal("third player joined a full room")
	}
	c.last(t, protocol.WaitingForMatch, nil)

	st := h.rooms.Stats()
	if st.Rooms != 2 || !st.Waiting || st.Phases["matched"] != 1 || st.Phases["waiting"] != 1 {
		t.Fatalf("stats = %+v", st)
	}
	if !h.events.seen(core.EventRoomWaiting) || !h.events.seen(core.EventRoomMatched) {
		t.Fatal("lifecycle events not published")
	}
}

func TestEnqueueRejections(t *testing.T) {
	h := newHarness(t, Options{})
	h.connect("a", "Ana")

	h.enqueue("a")
	if _, err := h.rooms.Enqueue("a"); err != ErrAlreadyInRoom {
		t.Fatalf("err = %v", err)
	}
	if _, err := h.rooms.Enqueue("ghost"); err != ErrUnknownSession {
		t.Fatalf("err = %v", err)
	}
}

func TestLoneWaiterLeaves(t *testing.T) {
	h := newHarness(t, Options{})
	h.connect("a", "Ana")
	b := h.connect("b", "Beto")

	room := h.enqueue("a")
	h.rooms.Leave("a")
	<-room.Done()

	if h.rooms.Stats().Waiting {
		t.Fatal("queue still holds the leaver")
	}
	next := h.enqueue("b")
	if next == room {
		t.Fatal("paired with a player who left")
	}
	b.last(t, protocol.WaitingForMatch, nil)
	if b.count(protocol.OpponentDisconnected) != 0 {
		t.Fatal("new waiter told about a stranger leaving")
	}
}
