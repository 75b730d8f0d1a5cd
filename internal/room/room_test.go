package room

import (
	"context"
	"testing"
	"time"

	"github.com/Madhu0614/Ai-task-hub-madhu/pkg/types"
)

// helper: receive one message with a timeout so tests never hang
func recvMsg(t *testing.T, ch <-chan types.ServerMessage, within time.Duration) types.ServerMessage {
	t.Helper()
	select {
	case msg, ok := <-ch:
		if !ok {
			t.Fatalf("member outbox closed unexpectedly")
		}
		return msg
	case <-time.After(within):
		t.Fatalf("timed out waiting for message")
		return types.ServerMessage{} // unreachable
	}
}

func recvNoMsg(t *testing.T, ch <-chan types.ServerMessage, within time.Duration) {
	t.Helper()
	select {
	case m, ok := <-ch:
		if !ok {
			// channel closed → no further messages possible
			return
		}
		t.Fatalf("expected no message within %v, but got: %+v", within, m)
	case <-time.After(within):
		// good: no message
	}
}

func recvView(t *testing.T, ch <-chan View, within time.Duration) View {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(within):
		t.Fatalf("timed out waiting for view")
		return View{} // unreachable
	}
}

func drain(ch <-chan types.ServerMessage) {
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

func cursorFor(msg types.ServerMessage, userID string) (types.CursorSample, bool) {
	for _, c := range msg.Cursors {
		if c.User.ID == userID {
			return c, true
		}
	}
	return types.CursorSample{}, false
}

func TestRoom_Join_SendsFullPresenceToJoiner(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := New(ctx, "board-x", Options{})

	outA := make(chan types.ServerMessage, 8)
	r.Inbox() <- Join{SocketID: "sA", User: types.User{ID: "alice", Name: "Alice"}, Outbox: outA}

	first := recvMsg(t, outA, 100*time.Millisecond)
	if first.Type != types.MsgCursorsUpdate {
		t.Fatalf("after join: want cursors-update, got %q", first.Type)
	}
	if len(first.Cursors) != 1 || first.Cursors[0].User.ID != "alice" {
		t.Fatalf("after join: want presence set [alice], got %+v", first.Cursors)
	}

	r.Inbox() <- Shutdown{}
}

func TestRoom_Join_NotifiesExistingMembers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := New(ctx, "board-x", Options{})

	outA := make(chan types.ServerMessage, 8)
	r.Inbox() <- Join{SocketID: "sA", User: types.User{ID: "alice"}, Outbox: outA}
	recvMsg(t, outA, 100*time.Millisecond)

	outB := make(chan types.ServerMessage, 8)
	r.Inbox() <- Join{SocketID: "sB", User: types.User{ID: "bob"}, Outbox: outB}

	// A sees the updated set containing both users.
	update := recvMsg(t, outA, 100*time.Millisecond)
	if len(update.Cursors) != 2 {
		t.Fatalf("after bob joins: want 2 presence entries on alice's socket, got %+v", update.Cursors)
	}

	r.Inbox() <- Shutdown{}
}

func TestRoom_CursorMove_OverwritesAndBroadcastsFullSet(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := New(ctx, "board-x", Options{})

	outA := make(chan types.ServerMessage, 8)
	outB := make(chan types.ServerMessage, 8)
	r.Inbox() <- Join{SocketID: "sA", User: types.User{ID: "alice"}, Outbox: outA}
	r.Inbox() <- Join{SocketID: "sB", User: types.User{ID: "bob"}, Outbox: outB}
	recvMsg(t, outA, 100*time.Millisecond) // alice joined
	recvMsg(t, outA, 100*time.Millisecond) // bob joined
	recvMsg(t, outB, 100*time.Millisecond) // bob's initial set

	r.Inbox() <- CursorMove{User: types.User{ID: "alice"}, X: 10, Y: 20}
	got := recvMsg(t, outB, 100*time.Millisecond)
	if got.Type != types.MsgCursorsUpdate {
		t.Fatalf("want cursors-update, got %q", got.Type)
	}
	sample, ok := cursorFor(got, "alice")
	if !ok || sample.X != 10 || sample.Y != 20 {
		t.Fatalf("want alice at (10,20), got %+v", got.Cursors)
	}

	// A second move overwrites in place: still one entry per user.
	r.Inbox() <- CursorMove{User: types.User{ID: "alice"}, X: 15, Y: 25}
	got = recvMsg(t, outB, 100*time.Millisecond)
	if len(got.Cursors) != 2 {
		t.Fatalf("presence must hold one entry per user, got %+v", got.Cursors)
	}
	sample, _ = cursorFor(got, "alice")
	if sample.X != 15 || sample.Y != 25 {
		t.Fatalf("want alice overwritten to (15,25), got %+v", sample)
	}

	r.Inbox() <- Shutdown{}
}

func TestRoom_Mutation_ExcludesSender(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := New(ctx, "board-x", Options{})

	outA := make(chan types.ServerMessage, 8)
	outB := make(chan types.ServerMessage, 8)
	r.Inbox() <- Join{SocketID: "sA", User: types.User{ID: "alice"}, Outbox: outA}
	r.Inbox() <- Join{SocketID: "sB", User: types.User{ID: "bob"}, Outbox: outB}
	recvMsg(t, outA, 100*time.Millisecond)
	recvMsg(t, outA, 100*time.Millisecond)
	recvMsg(t, outB, 100*time.Millisecond)

	r.Inbox() <- Mutation{
		SocketID: "sA",
		Event: types.MutationEvent{
			UserID:  "alice",
			BoardID: "board-x",
			Action:  types.ActionCreate,
			Element: types.ElementSnapshot{ID: "el1", BoardID: "board-x", Kind: "note"},
		},
	}

	got := recvMsg(t, outB, 100*time.Millisecond)
	if got.Type != types.MsgElementUpdate || got.Action != types.ActionCreate || got.Element == nil || got.Element.ID != "el1" {
		t.Fatalf("bob should receive the create for el1, got %+v", got)
	}
	// The relay never delivers a message back to its sender socket.
	recvNoMsg(t, outA, 100*time.Millisecond)

	r.Inbox() <- Shutdown{}
}

func TestRoom_Leave_RemovesPresenceAndRebroadcasts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := New(ctx, "board-x", Options{})

	outA := make(chan types.ServerMessage, 8)
	outB := make(chan types.ServerMessage, 8)
	r.Inbox() <- Join{SocketID: "sA", User: types.User{ID: "alice"}, Outbox: outA}
	r.Inbox() <- Join{SocketID: "sB", User: types.User{ID: "bob"}, Outbox: outB}
	recvMsg(t, outB, 100*time.Millisecond)

	r.Inbox() <- Leave{SocketID: "sA"}
	got := recvMsg(t, outB, 100*time.Millisecond)
	if _, ok := cursorFor(got, "alice"); ok {
		t.Fatalf("alice left, presence should not contain her: %+v", got.Cursors)
	}

	r.Inbox() <- Shutdown{}
}

func TestRoom_InactivityEvictsStalePresence(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Short TTL; no disconnect ever happens in this test.
	r := New(ctx, "board-x", Options{PresenceTTL: 50 * time.Millisecond})

	outA := make(chan types.ServerMessage, 64)
	outB := make(chan types.ServerMessage, 64)
	r.Inbox() <- Join{SocketID: "sA", User: types.User{ID: "alice"}, Outbox: outA}
	r.Inbox() <- Join{SocketID: "sB", User: types.User{ID: "bob"}, Outbox: outB}

	// Keep bob alive; let alice go silent.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		drain(outA)
		drain(outB)
		r.Inbox() <- CursorMove{User: types.User{ID: "bob"}, X: 1, Y: 1}
		reply := make(chan View, 1)
		r.Inbox() <- GetState{Reply: reply}
		v := recvView(t, reply, 100*time.Millisecond)
		if len(v.Cursors) == 1 && v.Cursors[0].User.ID == "bob" {
			r.Inbox() <- Shutdown{}
			return // alice evicted without an explicit leave
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("stale presence entry was never evicted")
}

func TestRoom_DropSlowMember(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := New(ctx, "board-x", Options{})

	// Buffer of one: the initial presence set fills it and nothing drains.
	outA := make(chan types.ServerMessage, 1)
	r.Inbox() <- Join{SocketID: "sA", User: types.User{ID: "alice"}, Outbox: outA}

	outB := make(chan types.ServerMessage, 8)
	r.Inbox() <- Join{SocketID: "sB", User: types.User{ID: "bob"}, Outbox: outB}

	reply := make(chan View, 1)
	r.Inbox() <- GetState{Reply: reply}
	v := recvView(t, reply, 100*time.Millisecond)
	if v.NumMembers != 1 {
		t.Fatalf("expected slow member to be dropped; NumMembers=%d", v.NumMembers)
	}

	r.Inbox() <- Shutdown{}
}
