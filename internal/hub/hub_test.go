package hub

import (
	"context"
	"testing"

	"github.com/Madhu0614/Ai-task-hub-madhu/internal/room"
	"github.com/Madhu0614/Ai-task-hub-madhu/pkg/types"
)

func TestHub_Join_Get_SamePointer(t *testing.T) {
	ctx := context.Background()
	h := NewHub(ctx, room.Options{})

	out := make(chan types.ServerMessage, 8)
	r1 := h.Join("board-x", "s1", types.User{ID: "alice"}, out)
	r2 := h.Get("board-x")

	if r1 == nil || r2 == nil || r1 != r2 {
		t.Fatalf("expected same room pointer")
	}
	h.Inbox() <- ShutdownHub{}
}

func TestHub_LastLeaveRemovesRoom(t *testing.T) {
	ctx := context.Background()
	h := NewHub(ctx, room.Options{})

	outA := make(chan types.ServerMessage, 8)
	outB := make(chan types.ServerMessage, 8)
	h.Join("board-x", "sA", types.User{ID: "alice"}, outA)
	h.Join("board-x", "sB", types.User{ID: "bob"}, outB)

	h.Leave("board-x", "sA")
	if h.Get("board-x") == nil {
		t.Fatalf("room must survive while a member remains")
	}

	h.Leave("board-x", "sB")
	if h.Get("board-x") != nil {
		t.Fatalf("room must be removed when its last member leaves")
	}

	h.Inbox() <- ShutdownHub{}
}

func TestHub_SeparateBoardsSeparateRooms(t *testing.T) {
	ctx := context.Background()
	h := NewHub(ctx, room.Options{})

	outA := make(chan types.ServerMessage, 8)
	outB := make(chan types.ServerMessage, 8)
	r1 := h.Join("board-x", "sA", types.User{ID: "alice"}, outA)
	r2 := h.Join("board-y", "sB", types.User{ID: "bob"}, outB)

	if r1 == r2 {
		t.Fatalf("different boards must not share a room")
	}
	if r1.BoardID() != "board-x" || r2.BoardID() != "board-y" {
		t.Fatalf("room board ids wrong: %q %q", r1.BoardID(), r2.BoardID())
	}
	h.Inbox() <- ShutdownHub{}
}
